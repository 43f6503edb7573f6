package models

import (
	"time"
)

// Transaction types
const (
	TransactionTypeDeposit       = "DEPOSIT"
	TransactionTypeWithdrawal    = "WITHDRAWAL"
	TransactionTypeSchemePayment = "SCHEME_PAYMENT"
	TransactionTypeRefund        = "REFUND"
	TransactionTypeCommission    = "COMMISSION"
)

// Transaction statuses
const (
	TransactionStatusPending   = "PENDING"
	TransactionStatusCompleted = "COMPLETED"
	TransactionStatusFailed    = "FAILED"
	TransactionStatusCancelled = "CANCELLED"
)

// Transaction is an immutable ledger entry recording a single balance-affecting
// event. Every committed balance mutation is paired with exactly one COMPLETED
// transaction; amounts never change after creation, only Status may move
// (PENDING refunds settling to COMPLETED/FAILED/CANCELLED).
//
// Deposits, refunds and commission are recorded positive; scheme payments are
// recorded negative.
type Transaction struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	UserID      uint    `gorm:"index;not null" json:"user_id"`
	WalletID    uint    `gorm:"index;not null" json:"wallet_id"`
	Type        string  `gorm:"not null" json:"type"`
	Amount      float64 `gorm:"not null" json:"amount"`
	Status      string  `gorm:"not null;default:'PENDING'" json:"status"`
	Description string  `json:"description"`
	// Reference is the external correlation id (gateway payment id, or a
	// deterministic internal id like REFUND-<txid>). Nullable so ledger rows
	// without one don't collide; the unique index is the idempotence guard
	// for at-least-once webhook delivery and payout retries.
	Reference *string   `gorm:"uniqueIndex" json:"reference,omitempty"`
	Metadata  JSON      `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ref wraps a non-empty reference string for the nullable Reference column.
func Ref(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
