package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shillien-project/portal/audit"
	"github.com/shillien-project/portal/game/item"
	"github.com/shillien-project/portal/game/market"
	mw "github.com/shillien-project/portal/middleware"
)

// MarketHandler handles market REST endpoints. Every completed
// transaction is written to the audit log.
type MarketHandler struct {
	db     *gorm.DB
	items  *item.Service
	market *market.Service
	audit  *audit.Service
	logger *zap.Logger
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(db *gorm.DB, items *item.Service, m *market.Service, a *audit.Service, logger *zap.Logger) *MarketHandler {
	return &MarketHandler{db: db, items: items, market: m, audit: a, logger: logger}
}

// Catalog handles GET /api/market/catalog. Prices are rolled once per
// login session and stay fixed until the session expires.
func (h *MarketHandler) Catalog(c *gin.Context) {
	entries, err := h.market.Catalog(c.Request.Context(), mw.SessionToken(c))
	if err != nil {
		h.logger.Error("market catalog", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"catalog": entries})
}

type buyRequest struct {
	CharID   int64  `json:"char_id"  binding:"required"`
	Name     string `json:"name"     binding:"required"`
	Quantity int64  `json:"quantity" binding:"required,min=1"`
}

// Buy handles POST /api/market/buy. Quantity counts purchase units: two
// purchases of a 50-arrow bundle grant 100 arrows.
func (h *MarketHandler) Buy(c *gin.Context) {
	accountID := mw.GetAccountID(c)

	var req buyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := ownedCharacter(h.db, accountID, req.CharID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "character not found"})
		return
	}

	ctx := c.Request.Context()
	entry, err := h.market.Lookup(ctx, mw.SessionToken(c), req.Name)
	if err != nil {
		status, msg := ledgerStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	started := time.Now()
	stacks, err := h.items.Buy(ctx, req.CharID, entry.Listing(), req.Quantity)
	h.logTransaction(c, "market_buy", accountID, req.CharID, req, stacks, err, started)
	if err != nil {
		status, msg := ledgerStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	bundle := entry.Quantity
	if bundle < 1 {
		bundle = 1
	}
	h.market.RecordPurchase(ctx, bundle*req.Quantity, entry.Price*req.Quantity)

	c.JSON(http.StatusOK, gin.H{
		"inventory": stacks,
		"adena":     item.CurrencyBalance(stacks),
	})
}

type sellRequest struct {
	CharID   int64  `json:"char_id"  binding:"required"`
	StackID  string `json:"stack_id" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required,min=1"`
}

// Sell handles POST /api/market/sell.
func (h *MarketHandler) Sell(c *gin.Context) {
	accountID := mw.GetAccountID(c)

	var req sellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := ownedCharacter(h.db, accountID, req.CharID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "character not found"})
		return
	}

	ctx := c.Request.Context()
	before, err := h.items.Inventory(ctx, req.CharID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	started := time.Now()
	stacks, err := h.items.Sell(ctx, req.CharID, req.StackID, req.Quantity)
	h.logTransaction(c, "market_sell", accountID, req.CharID, req, stacks, err, started)
	if err != nil {
		status, msg := ledgerStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	earned := item.CurrencyBalance(stacks) - item.CurrencyBalance(before)
	h.market.RecordSale(ctx, req.Quantity, earned)

	c.JSON(http.StatusOK, gin.H{
		"inventory": stacks,
		"adena":     item.CurrencyBalance(stacks),
	})
}

func (h *MarketHandler) logTransaction(c *gin.Context, action string, accountID, charID int64, req, resp interface{}, opErr error, started time.Time) {
	if h.audit == nil {
		return
	}
	entry := audit.Entry{
		TraceID:    mw.GetTraceID(c),
		AccountID:  &accountID,
		CharID:     &charID,
		Action:     action,
		Request:    req,
		Response:   resp,
		IP:         c.ClientIP(),
		DurationMs: int(time.Since(started) / time.Millisecond),
	}
	if opErr != nil {
		entry.Error = opErr.Error()
	}
	h.audit.Log(entry)
}
