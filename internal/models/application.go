package models

import (
	"time"

	"gorm.io/datatypes"
)

// Application statuses. Transitions are one-way: PENDING may move to APPROVED
// or REJECTED, APPROVED may move to COMPLETED. Everything else is invalid.
const (
	ApplicationStatusPending   = "PENDING"
	ApplicationStatusApproved  = "APPROVED"
	ApplicationStatusRejected  = "REJECTED"
	ApplicationStatusCompleted = "COMPLETED"
)

// Application is a service request submitted by a retailer on behalf of a
// customer. Amount is the price charged at submission (0 for free schemes);
// CommissionPaid flips true at most once, when the approval payout lands.
type Application struct {
	ID               uint    `gorm:"primarykey" json:"id"`
	UserID           uint    `gorm:"index;not null" json:"user_id"`
	SchemeID         uint    `gorm:"index;not null" json:"scheme_id"`
	Status           string  `gorm:"index;not null;default:'PENDING'" json:"status"`
	Amount           float64 `gorm:"not null;default:0" json:"amount"`
	CommissionRate   float64 `gorm:"not null;default:0" json:"commission_rate"`
	CommissionAmount float64 `gorm:"not null;default:0" json:"commission_amount"`
	CommissionPaid   bool    `gorm:"not null;default:false" json:"commission_paid"`
	Notes            string  `json:"notes"`
	ApprovedBy       *uint   `json:"approved_by,omitempty"`
	RejectedBy       *uint   `json:"rejected_by,omitempty"`

	CustomerName    string `gorm:"not null" json:"customer_name"`
	CustomerPhone   string `gorm:"not null" json:"customer_phone"`
	CustomerEmail   string `json:"customer_email,omitempty"`
	CustomerAddress string `gorm:"not null" json:"customer_address"`

	// Service-specific form schemas vary per scheme, so both payloads stay
	// opaque at this layer.
	FormData  JSON           `gorm:"type:jsonb" json:"form_data,omitempty"`
	Documents datatypes.JSON `gorm:"type:jsonb" json:"documents,omitempty"`

	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Scheme *Scheme `gorm:"foreignKey:SchemeID" json:"scheme,omitempty"`
	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// IsTerminal reports whether the application can no longer change status.
func (a *Application) IsTerminal() bool {
	return a.Status == ApplicationStatusRejected || a.Status == ApplicationStatusCompleted
}
