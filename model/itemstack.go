package model

import "time"

// CurrencyName is the distinguished currency stack. It is always
// stackable and droppable and carries a unit price of 1.
const CurrencyName = "Adena"

// ItemStack is one entry in a character's inventory: a quantity of a
// single item type, plus an optional enchant level. Stack IDs are opaque
// UUIDs minted whenever a stack is created (including by a split).
//
// Invariant: Quantity >= 1. A stack whose quantity reaches zero is
// deleted, never kept as a zero-quantity row.
type ItemStack struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	CharID     int64     `gorm:"index:idx_char_stack;not null" json:"char_id"`
	Name       string    `gorm:"size:64;not null" json:"name"`
	Quantity   int64     `gorm:"not null" json:"quantity"`
	Stackable  bool      `gorm:"not null" json:"stackable"`
	Price      int64     `gorm:"not null" json:"price"`
	Enchant    int       `gorm:"not null" json:"enchant"`
	// No default tags on the bool columns: gorm omits zero values for
	// columns that carry a default, which would turn a stored false back
	// into true on every insert. Creators set both flags explicitly.
	Droppable  bool      `gorm:"not null" json:"droppable"`
	Splittable bool      `gorm:"not null" json:"splittable"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsCurrency reports whether the stack is the Adena stack.
func (s *ItemStack) IsCurrency() bool {
	return s.Name == CurrencyName
}
