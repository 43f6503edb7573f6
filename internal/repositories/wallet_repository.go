package repositories

import (
	"context"
	"time"

	"sevapoint/internal/models"
)

// WalletRepository is the storage surface for the ledger: wallets, their
// transactions, and the commission flag on the application row a commission
// payout is linked to. Balance mutations are conditional single-statement
// updates so concurrent operations on one wallet serialize at the database
// and can never lose an update or drive a balance negative.
type WalletRepository interface {
	GetByID(id uint) (*models.Wallet, error)
	GetByUserID(userID uint) (*models.Wallet, error)
	// GetOrCreateByUserID upserts on the user_id unique index; safe under
	// concurrent first-time paid actions.
	GetOrCreateByUserID(userID uint) (*models.Wallet, error)

	// Credit adds amount to the wallet balance atomically.
	Credit(walletID uint, amount float64) error
	// Debit subtracts amount only when balance >= amount, in one statement.
	// Returns ErrInsufficientFunds when the predicate fails.
	Debit(walletID uint, amount float64) error

	CreateTransaction(txn *models.Transaction) error
	GetTransactionByID(id uint) (*models.Transaction, error)
	GetTransactionByReference(reference string) (*models.Transaction, error)
	// UpdateTransactionStatusFrom flips status only if the current status
	// matches from; reports whether a row was updated.
	UpdateTransactionStatusFrom(id uint, from, to string) (bool, error)
	ListTransactionsByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Transaction, int64, error)
	// ArchiveTransactionsBefore tags old ledger rows as archived in metadata.
	// Financial records are never hard-deleted.
	ArchiveTransactionsBefore(cutoff time.Time) (int64, error)

	// MarkApplicationRejected flips the application PENDING to REJECTED,
	// recording the reviewer and notes; reports whether this call won the
	// flip. Lives here because a refunded rejection must commit the credit
	// and the flip in one transaction.
	MarkApplicationRejected(applicationID, rejectedBy uint, notes string) (bool, error)

	// MarkApplicationCommissionPaid flips commission_paid only if it is still
	// false; reports whether this call won the flip. Lives here because the
	// flag must commit in the same transaction as the commission credit.
	MarkApplicationCommissionPaid(applicationID uint) (bool, error)

	// ExecuteInTransaction runs fn against a repository bound to one database
	// transaction; any error rolls back everything.
	ExecuteInTransaction(fn func(WalletRepository) error) error
}
