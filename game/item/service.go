package item

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shillien-project/portal/config"
	"github.com/shillien-project/portal/model"
	"github.com/shillien-project/portal/resource"
)

// Service persists inventories and applies ledger operations to them.
// Every mutation loads the character's stacks, applies a pure operation
// and writes the whole inventory back in one transaction, so callers
// never observe a partially applied operation.
type Service struct {
	db     *gorm.DB
	res    *resource.Loader
	cfg    config.GameConfig
	logger *zap.Logger
}

// NewService creates a new inventory Service.
func NewService(db *gorm.DB, res *resource.Loader, cfg config.GameConfig, logger *zap.Logger) *Service {
	return &Service{db: db, res: res, cfg: cfg, logger: logger}
}

// Inventory returns all stacks owned by charID in stable order.
func (svc *Service) Inventory(ctx context.Context, charID int64) ([]model.ItemStack, error) {
	var stacks []model.ItemStack
	err := svc.db.WithContext(ctx).
		Where("char_id = ?", charID).
		Order("created_at, id").
		Find(&stacks).Error
	return stacks, err
}

// GrantStarter creates the starter set plus the starting Adena balance for
// a freshly created character. It runs inside the caller's transaction so
// character creation and the grant commit together.
func (svc *Service) GrantStarter(tx *gorm.DB, charID int64) error {
	stacks := StarterStacks(charID, svc.res.Starter, svc.cfg.StarterAdena)
	if len(stacks) == 0 {
		return nil
	}
	return tx.Create(&stacks).Error
}

// Buy purchases qty units of a market listing for charID.
func (svc *Service) Buy(ctx context.Context, charID int64, l Listing, qty int64) ([]model.ItemStack, error) {
	return svc.apply(ctx, charID, func(inv []model.ItemStack) ([]model.ItemStack, error) {
		return Buy(inv, charID, l, qty)
	})
}

// Sell sells qty units of the referenced stack for charID.
func (svc *Service) Sell(ctx context.Context, charID int64, stackID string, qty int64) ([]model.ItemStack, error) {
	return svc.apply(ctx, charID, func(inv []model.ItemStack) ([]model.ItemStack, error) {
		return Sell(inv, charID, stackID, qty)
	})
}

// Split splits qty units off the referenced stack into a new stack.
func (svc *Service) Split(ctx context.Context, charID int64, stackID string, qty int64) ([]model.ItemStack, error) {
	return svc.apply(ctx, charID, func(inv []model.ItemStack) ([]model.ItemStack, error) {
		return Split(inv, stackID, qty)
	})
}

// Combine merges all mergeable stacks for charID.
func (svc *Service) Combine(ctx context.Context, charID int64) ([]model.ItemStack, error) {
	return svc.apply(ctx, charID, func(inv []model.ItemStack) ([]model.ItemStack, error) {
		return Combine(inv), nil
	})
}

// apply loads charID's inventory, runs op on it and replaces the stored
// inventory with the result. Operation errors roll the transaction back
// with the stored rows untouched.
func (svc *Service) apply(ctx context.Context, charID int64, op func([]model.ItemStack) ([]model.ItemStack, error)) ([]model.ItemStack, error) {
	var result []model.ItemStack
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stacks []model.ItemStack
		if err := tx.Where("char_id = ?", charID).
			Order("created_at, id").
			Find(&stacks).Error; err != nil {
			return err
		}
		next, err := op(stacks)
		if err != nil {
			return err
		}
		if err := tx.Where("char_id = ?", charID).Delete(&model.ItemStack{}).Error; err != nil {
			return err
		}
		if len(next) > 0 {
			if err := tx.Create(&next).Error; err != nil {
				return err
			}
		}
		result = next
		return nil
	})
	if err != nil {
		// Ledger rejections are the caller's problem; anything else is a
		// persistence failure worth an operator's attention.
		if !isLedgerError(err) {
			svc.logger.Error("inventory write failed",
				zap.Int64("char_id", charID), zap.Error(err))
		}
		return nil, err
	}
	return result, nil
}

func isLedgerError(err error) bool {
	for _, target := range []error{
		ErrInsufficientFunds, ErrNotSellable, ErrInvalidSplit,
		ErrInvalidQuantity, ErrNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// StarterStacks builds the stacks a new character starts with.
func StarterStacks(charID int64, items []resource.StarterItem, adena int64) []model.ItemStack {
	stacks := make([]model.ItemStack, 0, len(items)+1)
	if adena > 0 {
		stacks = append(stacks, model.ItemStack{
			ID:         uuid.NewString(),
			CharID:     charID,
			Name:       model.CurrencyName,
			Quantity:   adena,
			Stackable:  true,
			Price:      1,
			Droppable:  true,
			Splittable: true,
		})
	}
	for _, it := range items {
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		s := model.ItemStack{
			ID:         uuid.NewString(),
			CharID:     charID,
			Name:       it.Name,
			Quantity:   qty,
			Stackable:  it.Stackable,
			Price:      it.Price,
			Droppable:  true,
			Splittable: true,
		}
		if it.Droppable != nil {
			s.Droppable = *it.Droppable
		}
		if it.Splittable != nil {
			s.Splittable = *it.Splittable
		}
		stacks = append(stacks, s)
	}
	return stacks
}
