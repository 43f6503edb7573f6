package wallet

import (
	"context"

	"sevapoint/internal/models"
)

// Service is the sole mutator of wallet balances. Every operation executes as
// one atomic unit: the balance update, its ledger transaction, and any linked
// flag commit or roll back together.
type Service interface {
	// GetWallet returns the user's wallet, creating an empty one if absent.
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)

	// Deposit credits the wallet and appends a COMPLETED DEPOSIT. Idempotent
	// on reference: redelivery of the same gateway payment returns the
	// existing transaction without re-crediting. The bool reports whether
	// this call created the ledger row.
	Deposit(ctx context.Context, userID uint, amount float64, reference string, metadata models.JSON) (*models.Transaction, bool, error)

	// Deduct debits the wallet and appends a COMPLETED SCHEME_PAYMENT with a
	// negative amount. Fails with ErrInsufficientBalance before any mutation.
	Deduct(ctx context.Context, userID uint, amount float64, description, reference string) (*models.Transaction, error)

	// Refund opens a PENDING REFUND against a completed scheme payment. No
	// balance effect until settled.
	Refund(ctx context.Context, originalTxID uint, amount float64, reason string) (*models.Transaction, error)

	// SettleRefund moves a PENDING refund to COMPLETED (crediting the wallet,
	// exactly once), FAILED, or CANCELLED.
	SettleRefund(ctx context.Context, refundID uint, status string) (*models.Transaction, error)

	// CreditRefund credits a completed refund directly, for admin-initiated
	// corrections that skip the pending stage. Idempotent on reference.
	CreditRefund(ctx context.Context, userID uint, amount float64, reference, reason string) (*models.Transaction, error)

	// RefundRejection rejects a pending application and credits its charge
	// back in one atomic unit: the credit rolls back when a concurrent
	// decision wins the status flip, surfaced as ErrInvalidState. The credit
	// can never land on an application that did not end REJECTED.
	RefundRejection(ctx context.Context, userID uint, amount float64, applicationID, rejectedBy uint, notes string) (*models.Transaction, error)

	// CreditCommission pays approval commission. A no-op when the
	// application's commission was already paid; the flag flips in the same
	// database transaction as the credit.
	CreditCommission(ctx context.Context, userID uint, amount float64, applicationID uint) (*models.Transaction, error)

	// RecordFailedDeposit appends a FAILED DEPOSIT for audit. No balance
	// effect.
	RecordFailedDeposit(ctx context.Context, userID uint, amount float64, reference string, metadata models.JSON) (*models.Transaction, error)

	GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID uint, limit, offset int) ([]models.Transaction, int64, error)
}

// Cache is the wallet read cache. Implementations must tolerate concurrent
// invalidation; the service never trusts a cached balance for a mutation.
type Cache interface {
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	SetWallet(ctx context.Context, wallet *models.Wallet) error
	InvalidateWallet(ctx context.Context, userID uint) error
}

// NoopCache disables caching.
type NoopCache struct{}

func (NoopCache) GetWallet(context.Context, uint) (*models.Wallet, error) { return nil, nil }
func (NoopCache) SetWallet(context.Context, *models.Wallet) error         { return nil }
func (NoopCache) InvalidateWallet(context.Context, uint) error            { return nil }
