package models

import (
	"time"
)

// Wallet holds the stored balance for a single user. One wallet per user,
// enforced by the unique index on UserID; creation is an upsert so two
// concurrent first-time paid actions cannot race to create duplicates.
type Wallet struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance   float64   `gorm:"not null;default:0;check:balance >= 0" json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
