package models

import (
	"time"
)

// Scheme is a catalog entry for a government service offered through the
// portal. Price is what the submitting retailer's wallet is charged;
// CommissionRate is the percentage of that price paid back on approval.
type Scheme struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	Description    string    `json:"description"`
	Category       string    `gorm:"index" json:"category"`
	Price          float64   `gorm:"not null;default:0" json:"price"`
	CommissionRate float64   `gorm:"not null;default:0" json:"commission_rate"`
	IsFree         bool      `gorm:"default:false" json:"is_free"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// EffectivePrice is zero for free schemes regardless of the stored price.
func (s *Scheme) EffectivePrice() float64 {
	if s.IsFree {
		return 0
	}
	return s.Price
}
