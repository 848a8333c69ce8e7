package item

import (
	"errors"

	"github.com/google/uuid"

	"github.com/shillien-project/portal/model"
)

var (
	// ErrInsufficientFunds is returned by Buy when the Adena balance
	// cannot cover the total cost.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNotSellable is returned by Sell for stacks flagged non-droppable.
	ErrNotSellable = errors.New("item cannot be sold")
	// ErrInvalidSplit is returned by Split when the stack is not splittable
	// or the requested amount would not leave two non-empty stacks.
	ErrInvalidSplit = errors.New("invalid split")
	// ErrNotFound is returned when the referenced stack no longer exists.
	ErrNotFound = errors.New("stack not found")
	// ErrInvalidQuantity is returned when a requested quantity is out of range.
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// Listing is a market offer as seen by the ledger: what the stack will be
// called, its unit price, and how many units one purchase grants.
type Listing struct {
	Name      string
	Price     int64
	Stackable bool
	Bundle    int64 // units granted per purchase unit, min 1
}

// mergeKey identifies stacks that may be combined. Stacks with different
// enchant levels never merge even when stackable.
type mergeKey struct {
	Name    string
	Enchant int
}

// CurrencyBalance returns the quantity of the Adena stack, or 0 if absent.
func CurrencyBalance(inv []model.ItemStack) int64 {
	for i := range inv {
		if inv[i].IsCurrency() {
			return inv[i].Quantity
		}
	}
	return 0
}

// Buy deducts price*qty Adena and grants bundle*qty units of the listed item,
// merging into an existing stackable stack of the same name when one exists.
// The input slice is never modified; the returned slice is a fresh value.
func Buy(inv []model.ItemStack, charID int64, l Listing, qty int64) ([]model.ItemStack, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	cost := l.Price * qty
	if CurrencyBalance(inv) < cost {
		return nil, ErrInsufficientFunds
	}

	out := clone(inv)
	out = addCurrency(out, charID, -cost)

	bundle := l.Bundle
	if bundle < 1 {
		bundle = 1
	}
	units := bundle * qty

	if l.Stackable {
		for i := range out {
			if out[i].Stackable && out[i].Name == l.Name && out[i].Enchant == 0 {
				out[i].Quantity += units
				return out, nil
			}
		}
	}
	out = append(out, model.ItemStack{
		ID:         uuid.NewString(),
		CharID:     charID,
		Name:       l.Name,
		Quantity:   units,
		Stackable:  l.Stackable,
		Price:      l.Price,
		Droppable:  true,
		Splittable: true,
	})
	return out, nil
}

// Sell removes qty units from the referenced stack and credits
// price*qty Adena, creating the Adena stack if none exists. Selling the
// full quantity removes the stack entirely.
func Sell(inv []model.ItemStack, charID int64, stackID string, qty int64) ([]model.ItemStack, error) {
	idx := indexOf(inv, stackID)
	if idx < 0 {
		return nil, ErrNotFound
	}
	src := inv[idx]
	if !src.Droppable || src.IsCurrency() {
		return nil, ErrNotSellable
	}
	if qty < 1 || qty > src.Quantity {
		return nil, ErrInvalidQuantity
	}

	out := clone(inv)
	if qty == src.Quantity {
		out = append(out[:idx], out[idx+1:]...)
	} else {
		out[idx].Quantity -= qty
	}
	return addCurrency(out, charID, src.Price*qty), nil
}

// Split moves qty units off the referenced stack into a new stack with a
// fresh identifier. The source must keep at least one unit, so splitting
// the whole stack is rejected.
func Split(inv []model.ItemStack, stackID string, qty int64) ([]model.ItemStack, error) {
	idx := indexOf(inv, stackID)
	if idx < 0 {
		return nil, ErrNotFound
	}
	src := inv[idx]
	if !src.Splittable || qty <= 0 || qty >= src.Quantity {
		return nil, ErrInvalidSplit
	}

	out := clone(inv)
	out[idx].Quantity -= qty

	part := src
	part.ID = uuid.NewString()
	part.Quantity = qty
	return append(out, part), nil
}

// Combine merges every group of two or more stackable stacks sharing
// (name, enchant) into a single stack with a fresh identifier, keeping the
// first-seen stack's other fields and position. Non-stackable stacks and
// groups of one are left untouched, which makes Combine idempotent.
func Combine(inv []model.ItemStack) []model.ItemStack {
	counts := make(map[mergeKey]int)
	for i := range inv {
		if inv[i].Stackable {
			counts[mergeKey{inv[i].Name, inv[i].Enchant}]++
		}
	}

	merged := make(map[mergeKey]int) // key → index in out
	out := make([]model.ItemStack, 0, len(inv))
	for i := range inv {
		s := inv[i]
		key := mergeKey{s.Name, s.Enchant}
		if !s.Stackable || counts[key] < 2 {
			out = append(out, s)
			continue
		}
		if j, ok := merged[key]; ok {
			out[j].Quantity += s.Quantity
			continue
		}
		s.ID = uuid.NewString()
		merged[key] = len(out)
		out = append(out, s)
	}
	return out
}

func indexOf(inv []model.ItemStack, stackID string) int {
	for i := range inv {
		if inv[i].ID == stackID {
			return i
		}
	}
	return -1
}

func clone(inv []model.ItemStack) []model.ItemStack {
	out := make([]model.ItemStack, len(inv))
	copy(out, inv)
	return out
}

// addCurrency applies a positive or negative delta to the Adena stack.
// A stack reaching zero is removed; a missing stack is created on credit.
// Callers must check the balance before passing a negative delta.
func addCurrency(inv []model.ItemStack, charID, delta int64) []model.ItemStack {
	if delta == 0 {
		return inv
	}
	for i := range inv {
		if !inv[i].IsCurrency() {
			continue
		}
		inv[i].Quantity += delta
		if inv[i].Quantity <= 0 {
			return append(inv[:i], inv[i+1:]...)
		}
		return inv
	}
	if delta > 0 {
		inv = append(inv, model.ItemStack{
			ID:         uuid.NewString(),
			CharID:     charID,
			Name:       model.CurrencyName,
			Quantity:   delta,
			Stackable:  true,
			Price:      1,
			Droppable:  true,
			Splittable: true,
		})
	}
	return inv
}
