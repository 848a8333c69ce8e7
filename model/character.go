package model

import "time"

// Character represents one of an account's character slots, as shown on
// the dashboard. Stats are cosmetic for the promo site; the inventory
// hanging off a character is the part the market operates on.
type Character struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID int64     `gorm:"index:idx_account;not null" json:"account_id"`
	Name      string    `gorm:"uniqueIndex;size:32;not null" json:"name"`
	Class     string    `gorm:"size:32;not null" json:"class"`
	Race      string    `gorm:"size:16" json:"race"`
	Level     int       `gorm:"default:1" json:"level"`
	Exp       int64     `gorm:"default:0" json:"exp"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
