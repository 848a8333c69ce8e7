package market

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/shillien-project/portal/cache"
	"github.com/shillien-project/portal/config"
	"github.com/shillien-project/portal/game/item"
	"github.com/shillien-project/portal/resource"
)

const metricsKey = "market:metrics"

// Entry is one catalog row offered to a session.
type Entry struct {
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Stackable bool   `json:"stackable"`
	Quantity  int64  `json:"quantity"` // bundle size granted per purchase, min 1
}

// Listing converts the entry into what the inventory ledger expects.
func (e Entry) Listing() item.Listing {
	return item.Listing{Name: e.Name, Price: e.Price, Stackable: e.Stackable, Bundle: e.Quantity}
}

// Service generates and caches per-session market catalogs. Each session
// sees its own randomized prices; the catalog is never persisted and is
// not tied to any character.
type Service struct {
	cache  cache.Cache
	res    *resource.Loader
	cfg    config.MarketConfig
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService creates a new market Service.
func NewService(c cache.Cache, res *resource.Loader, cfg config.MarketConfig, rng *rand.Rand, logger *zap.Logger) *Service {
	return &Service{cache: c, res: res, cfg: cfg, rng: rng, logger: logger}
}

func catalogKey(sessionToken string) string {
	return "market:catalog:" + sessionToken
}

// Catalog returns the session's catalog, generating and caching it on
// first access. Prices are drawn uniformly within the configured bounds
// for the item's class.
func (svc *Service) Catalog(ctx context.Context, sessionToken string) ([]Entry, error) {
	key := catalogKey(sessionToken)
	raw, err := svc.cache.Get(ctx, key)
	if err != nil && !cache.IsNotFound(err) {
		return nil, fmt.Errorf("market: load catalog: %w", err)
	}
	if err == nil {
		var entries []Entry
		if err := json.Unmarshal([]byte(raw), &entries); err == nil {
			return entries, nil
		}
		// Corrupt cache entry: drop it and regenerate.
		_ = svc.cache.Del(ctx, key)
	}

	entries := svc.generate()
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("market: encode catalog: %w", err)
	}
	if err := svc.cache.Set(ctx, key, string(data), svc.cfg.CatalogTTL); err != nil {
		return nil, fmt.Errorf("market: store catalog: %w", err)
	}
	svc.logger.Debug("market catalog generated", zap.Int("entries", len(entries)))
	return entries, nil
}

// Lookup finds a catalog entry by name for the session. A stale name
// (catalog expired or item delisted) reports item.ErrNotFound so the
// caller can surface the same error taxonomy as the ledger.
func (svc *Service) Lookup(ctx context.Context, sessionToken, name string) (Entry, error) {
	entries, err := svc.Catalog(ctx, sessionToken)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, item.ErrNotFound
}

// RecordPurchase and RecordSale feed the admin metrics hash. Metric
// failures are logged, never surfaced to the buyer.
func (svc *Service) RecordPurchase(ctx context.Context, units, adena int64) {
	svc.bump(ctx, "buys", 1)
	svc.bump(ctx, "units_bought", units)
	svc.bump(ctx, "adena_spent", adena)
}

func (svc *Service) RecordSale(ctx context.Context, units, adena int64) {
	svc.bump(ctx, "sells", 1)
	svc.bump(ctx, "units_sold", units)
	svc.bump(ctx, "adena_earned", adena)
}

func (svc *Service) bump(ctx context.Context, field string, delta int64) {
	if _, err := svc.cache.HIncrBy(ctx, metricsKey, field, delta); err != nil {
		svc.logger.Warn("market metrics", zap.String("field", field), zap.Error(err))
	}
}

// Metrics returns the accumulated market counters.
func (svc *Service) Metrics(ctx context.Context) (map[string]string, error) {
	return svc.cache.HGetAll(ctx, metricsKey)
}

func (svc *Service) generate() []Entry {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	entries := make([]Entry, 0, len(svc.res.ItemDefs.Items))
	for _, name := range svc.res.ItemDefs.Items {
		stackable := svc.res.Stackable(name)
		lo, hi := svc.cfg.UniqueMinPrice, svc.cfg.UniqueMaxPrice
		if stackable {
			lo, hi = svc.cfg.StackableMinPrice, svc.cfg.StackableMaxPrice
		}
		entries = append(entries, Entry{
			Name:      name,
			Price:     svc.draw(lo, hi),
			Stackable: stackable,
			Quantity:  svc.res.BundleFor(name),
		})
	}
	return entries
}

// draw picks a uniform price in [lo, hi]. Misconfigured bounds collapse
// to the lower bound rather than panicking.
func (svc *Service) draw(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + svc.rng.Int63n(hi-lo+1)
}
