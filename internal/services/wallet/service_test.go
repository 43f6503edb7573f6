package wallet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sevapoint/internal/apperrors"
	"sevapoint/internal/models"
	"sevapoint/internal/repositories"
)

// fakeWalletRepo is an in-memory WalletRepository. It enforces the same
// invariants the real implementation delegates to Postgres: the non-negative
// balance predicate on Debit, the unique reference index, the one-shot
// commission flag, and the PENDING guard on the rejection flip.
type fakeWalletRepo struct {
	wallets        map[uint]*models.Wallet
	transactions   map[uint]*models.Transaction
	commissionPaid map[uint]bool
	appStatus      map[uint]string
	nextWalletID   uint
	nextTxnID      uint
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{
		wallets:        make(map[uint]*models.Wallet),
		transactions:   make(map[uint]*models.Transaction),
		commissionPaid: make(map[uint]bool),
		appStatus:      make(map[uint]string),
	}
}

func (f *fakeWalletRepo) GetByID(id uint) (*models.Wallet, error) {
	if w, ok := f.wallets[id]; ok {
		return w, nil
	}
	return nil, repositories.ErrWalletNotFound
}

func (f *fakeWalletRepo) GetByUserID(userID uint) (*models.Wallet, error) {
	for _, w := range f.wallets {
		if w.UserID == userID {
			return w, nil
		}
	}
	return nil, repositories.ErrWalletNotFound
}

func (f *fakeWalletRepo) GetOrCreateByUserID(userID uint) (*models.Wallet, error) {
	if w, err := f.GetByUserID(userID); err == nil {
		return w, nil
	}
	f.nextWalletID++
	w := &models.Wallet{ID: f.nextWalletID, UserID: userID}
	f.wallets[w.ID] = w
	return w, nil
}

func (f *fakeWalletRepo) Credit(walletID uint, amount float64) error {
	w, ok := f.wallets[walletID]
	if !ok {
		return repositories.ErrWalletNotFound
	}
	w.Balance += amount
	return nil
}

func (f *fakeWalletRepo) Debit(walletID uint, amount float64) error {
	w, ok := f.wallets[walletID]
	if !ok {
		return repositories.ErrWalletNotFound
	}
	if w.Balance < amount {
		return repositories.ErrInsufficientFunds
	}
	w.Balance -= amount
	return nil
}

func (f *fakeWalletRepo) CreateTransaction(txn *models.Transaction) error {
	if txn.Reference != nil {
		for _, existing := range f.transactions {
			if existing.Reference != nil && *existing.Reference == *txn.Reference {
				return repositories.ErrDuplicateReference
			}
		}
	}
	f.nextTxnID++
	txn.ID = f.nextTxnID
	txn.CreatedAt = time.Now()
	f.transactions[txn.ID] = txn
	return nil
}

func (f *fakeWalletRepo) GetTransactionByID(id uint) (*models.Transaction, error) {
	if t, ok := f.transactions[id]; ok {
		return t, nil
	}
	return nil, repositories.ErrTransactionNotFound
}

func (f *fakeWalletRepo) GetTransactionByReference(reference string) (*models.Transaction, error) {
	for _, t := range f.transactions {
		if t.Reference != nil && *t.Reference == reference {
			return t, nil
		}
	}
	return nil, repositories.ErrTransactionNotFound
}

func (f *fakeWalletRepo) UpdateTransactionStatusFrom(id uint, from, to string) (bool, error) {
	t, ok := f.transactions[id]
	if !ok {
		return false, repositories.ErrTransactionNotFound
	}
	if t.Status != from {
		return false, nil
	}
	t.Status = to
	return true, nil
}

func (f *fakeWalletRepo) ListTransactionsByUser(_ context.Context, userID uint, limit, offset int) ([]models.Transaction, int64, error) {
	var out []models.Transaction
	for _, t := range f.transactions {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeWalletRepo) ArchiveTransactionsBefore(cutoff time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeWalletRepo) MarkApplicationRejected(applicationID, rejectedBy uint, notes string) (bool, error) {
	if f.appStatus[applicationID] != models.ApplicationStatusPending {
		return false, nil
	}
	f.appStatus[applicationID] = models.ApplicationStatusRejected
	return true, nil
}

func (f *fakeWalletRepo) MarkApplicationCommissionPaid(applicationID uint) (bool, error) {
	if f.commissionPaid[applicationID] {
		return false, nil
	}
	f.commissionPaid[applicationID] = true
	return true, nil
}

func (f *fakeWalletRepo) ExecuteInTransaction(fn func(repositories.WalletRepository) error) error {
	return fn(f)
}

func (f *fakeWalletRepo) balanceOf(userID uint) float64 {
	w, err := f.GetByUserID(userID)
	if err != nil {
		return 0
	}
	return w.Balance
}

// completedSum adds every COMPLETED transaction amount for the user, which
// must always equal the stored balance.
func (f *fakeWalletRepo) completedSum(userID uint) float64 {
	var sum float64
	for _, t := range f.transactions {
		if t.UserID == userID && t.Status == models.TransactionStatusCompleted {
			sum += t.Amount
		}
	}
	return sum
}

func TestDeposit(t *testing.T) {
	ctx := context.Background()

	t.Run("credits and records", func(t *testing.T) {
		repo := newFakeWalletRepo()
		svc := NewService(repo, nil)

		txn, created, err := svc.Deposit(ctx, 1, 500, "pay_abc", models.JSON{"method": "upi"})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, models.TransactionTypeDeposit, txn.Type)
		assert.Equal(t, models.TransactionStatusCompleted, txn.Status)
		assert.Equal(t, 500.0, txn.Amount)
		assert.Equal(t, 500.0, repo.balanceOf(1))
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		repo := newFakeWalletRepo()
		svc := NewService(repo, nil)

		_, _, err := svc.Deposit(ctx, 1, 0, "pay_zero", nil)
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
		_, _, err = svc.Deposit(ctx, 1, -10, "pay_neg", nil)
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
		assert.Empty(t, repo.transactions)
	})

	t.Run("same reference credits once", func(t *testing.T) {
		repo := newFakeWalletRepo()
		svc := NewService(repo, nil)

		first, created, err := svc.Deposit(ctx, 1, 500, "pay_dup", nil)
		require.NoError(t, err)
		assert.True(t, created)
		second, created, err := svc.Deposit(ctx, 1, 500, "pay_dup", nil)
		require.NoError(t, err)
		assert.False(t, created)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 500.0, repo.balanceOf(1))
		assert.Len(t, repo.transactions, 1)
	})
}

func TestDeduct(t *testing.T) {
	ctx := context.Background()

	t.Run("records negative amount", func(t *testing.T) {
		repo := newFakeWalletRepo()
		svc := NewService(repo, nil)
		_, _, err := svc.Deposit(ctx, 1, 300, "pay_1", nil)
		require.NoError(t, err)

		txn, err := svc.Deduct(ctx, 1, 100, "PAN card application", "APP-x1")
		require.NoError(t, err)
		assert.Equal(t, -100.0, txn.Amount)
		assert.Equal(t, models.TransactionTypeSchemePayment, txn.Type)
		assert.Equal(t, 200.0, repo.balanceOf(1))
	})

	t.Run("insufficient balance aborts whole operation", func(t *testing.T) {
		repo := newFakeWalletRepo()
		svc := NewService(repo, nil)
		_, _, err := svc.Deposit(ctx, 1, 50, "pay_2", nil)
		require.NoError(t, err)

		_, err = svc.Deduct(ctx, 1, 100, "too expensive", "")
		assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)
		assert.Equal(t, 50.0, repo.balanceOf(1))
		// Only the deposit exists; a failed deduction leaves no ledger row.
		assert.Len(t, repo.transactions, 1)
	})

	t.Run("balance never goes negative", func(t *testing.T) {
		repo := newFakeWalletRepo()
		svc := NewService(repo, nil)
		_, _, err := svc.Deposit(ctx, 1, 100, "pay_3", nil)
		require.NoError(t, err)

		_, err = svc.Deduct(ctx, 1, 60, "first", "")
		require.NoError(t, err)
		_, err = svc.Deduct(ctx, 1, 60, "second", "")
		assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)
		assert.GreaterOrEqual(t, repo.balanceOf(1), 0.0)
	})
}

func TestRefund(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fakeWalletRepo, Service, *models.Transaction) {
		repo := newFakeWalletRepo()
		svc := NewService(repo, nil)
		_, _, err := svc.Deposit(ctx, 1, 500, "pay_r", nil)
		require.NoError(t, err)
		payment, err := svc.Deduct(ctx, 1, 200, "scheme payment", "APP-r1")
		require.NoError(t, err)
		return repo, svc, payment
	}

	t.Run("opens pending refund without touching balance", func(t *testing.T) {
		repo, svc, payment := setup(t)

		refund, err := svc.Refund(ctx, payment.ID, 200, "service unavailable")
		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusPending, refund.Status)
		assert.Equal(t, models.TransactionTypeRefund, refund.Type)
		assert.Equal(t, 300.0, repo.balanceOf(1))
	})

	t.Run("rejects refund exceeding original", func(t *testing.T) {
		_, svc, payment := setup(t)

		_, err := svc.Refund(ctx, payment.ID, 250, "too much")
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
	})

	t.Run("only completed scheme payments are refundable", func(t *testing.T) {
		repo, svc, _ := setup(t)

		deposit, err := repo.GetTransactionByReference("pay_r")
		require.NoError(t, err)
		_, err = svc.Refund(ctx, deposit.ID, 100, "wrong type")
		assert.ErrorIs(t, err, apperrors.ErrNotRefundable)
	})

	t.Run("second refund for same payment conflicts", func(t *testing.T) {
		_, svc, payment := setup(t)

		_, err := svc.Refund(ctx, payment.ID, 100, "first")
		require.NoError(t, err)
		_, err = svc.Refund(ctx, payment.ID, 100, "second")
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestSettleRefund(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fakeWalletRepo, Service, *models.Transaction) {
		repo := newFakeWalletRepo()
		svc := NewService(repo, nil)
		_, _, err := svc.Deposit(ctx, 1, 500, "pay_s", nil)
		require.NoError(t, err)
		payment, err := svc.Deduct(ctx, 1, 200, "scheme payment", "APP-s1")
		require.NoError(t, err)
		refund, err := svc.Refund(ctx, payment.ID, 200, "unavailable")
		require.NoError(t, err)
		return repo, svc, refund
	}

	t.Run("completing credits exactly once", func(t *testing.T) {
		repo, svc, refund := setup(t)

		settled, err := svc.SettleRefund(ctx, refund.ID, models.TransactionStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusCompleted, settled.Status)
		assert.Equal(t, 500.0, repo.balanceOf(1))

		_, err = svc.SettleRefund(ctx, refund.ID, models.TransactionStatusCompleted)
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
		assert.Equal(t, 500.0, repo.balanceOf(1))
	})

	t.Run("failing never credits", func(t *testing.T) {
		repo, svc, refund := setup(t)

		settled, err := svc.SettleRefund(ctx, refund.ID, models.TransactionStatusFailed)
		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusFailed, settled.Status)
		assert.Equal(t, 300.0, repo.balanceOf(1))
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, svc, refund := setup(t)

		_, err := svc.SettleRefund(ctx, refund.ID, "SETTLED")
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	})
}

func TestCreditRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("credits and records completed refund", func(t *testing.T) {
		repo := newFakeWalletRepo()
		svc := NewService(repo, nil)

		txn, err := svc.CreditRefund(ctx, 1, 300, "REVERSAL-APP-x1", "Reversal for failed submission")
		require.NoError(t, err)
		assert.Equal(t, models.TransactionTypeRefund, txn.Type)
		assert.Equal(t, models.TransactionStatusCompleted, txn.Status)
		assert.Equal(t, 300.0, txn.Amount)
		assert.Equal(t, 300.0, repo.balanceOf(1))
		assert.Equal(t, repo.completedSum(1), repo.balanceOf(1))
	})

	t.Run("same reference credits once", func(t *testing.T) {
		repo := newFakeWalletRepo()
		svc := NewService(repo, nil)

		first, err := svc.CreditRefund(ctx, 1, 300, "REVERSAL-APP-x2", "Reversal")
		require.NoError(t, err)
		second, err := svc.CreditRefund(ctx, 1, 300, "REVERSAL-APP-x2", "Reversal")
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 300.0, repo.balanceOf(1))
		assert.Len(t, repo.transactions, 1)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		repo := newFakeWalletRepo()
		svc := NewService(repo, nil)

		_, err := svc.CreditRefund(ctx, 1, 0, "REVERSAL-APP-x3", "Reversal")
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
		assert.Empty(t, repo.transactions)
	})
}

func TestRefundRejection(t *testing.T) {
	ctx := context.Background()

	t.Run("flips status and credits once", func(t *testing.T) {
		repo := newFakeWalletRepo()
		repo.appStatus[42] = models.ApplicationStatusPending
		svc := NewService(repo, nil)

		txn, err := svc.RefundRejection(ctx, 1, 300, 42, 101, "documents unreadable")
		require.NoError(t, err)
		assert.Equal(t, models.TransactionTypeRefund, txn.Type)
		assert.Equal(t, models.TransactionStatusCompleted, txn.Status)
		assert.Equal(t, models.ApplicationStatusRejected, repo.appStatus[42])
		assert.Equal(t, 300.0, repo.balanceOf(1))

		_, err = svc.RefundRejection(ctx, 1, 300, 42, 101, "documents unreadable")
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
		assert.Equal(t, 300.0, repo.balanceOf(1))
	})

	t.Run("concurrent approval wins and no refund lands", func(t *testing.T) {
		repo := newFakeWalletRepo()
		repo.appStatus[42] = models.ApplicationStatusApproved
		svc := NewService(repo, nil)

		_, err := svc.RefundRejection(ctx, 1, 300, 42, 101, "too late")
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
		assert.Equal(t, models.ApplicationStatusApproved, repo.appStatus[42])
		assert.Equal(t, 0.0, repo.balanceOf(1))
		assert.Empty(t, repo.transactions)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		repo := newFakeWalletRepo()
		repo.appStatus[42] = models.ApplicationStatusPending
		svc := NewService(repo, nil)

		_, err := svc.RefundRejection(ctx, 1, 0, 42, 101, "")
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
		assert.Equal(t, models.ApplicationStatusPending, repo.appStatus[42])
	})
}

func TestCreditCommission(t *testing.T) {
	ctx := context.Background()

	t.Run("pays once per application", func(t *testing.T) {
		repo := newFakeWalletRepo()
		svc := NewService(repo, nil)

		first, err := svc.CreditCommission(ctx, 1, 30, 42)
		require.NoError(t, err)
		assert.Equal(t, models.TransactionTypeCommission, first.Type)
		assert.Equal(t, 30.0, repo.balanceOf(1))

		second, err := svc.CreditCommission(ctx, 1, 30, 42)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 30.0, repo.balanceOf(1))
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		repo := newFakeWalletRepo()
		svc := NewService(repo, nil)

		_, err := svc.CreditCommission(ctx, 1, 0, 42)
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
	})
}

func TestRecordFailedDeposit(t *testing.T) {
	ctx := context.Background()
	repo := newFakeWalletRepo()
	svc := NewService(repo, nil)

	txn, err := svc.RecordFailedDeposit(ctx, 1, 100, "pay_fail", models.JSON{"error_code": "BAD_CARD"})
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusFailed, txn.Status)
	assert.Equal(t, 0.0, repo.balanceOf(1))
}

// The stored balance must always equal the sum of COMPLETED transaction
// amounts, whatever mix of operations ran.
func TestBalanceMatchesLedger(t *testing.T) {
	ctx := context.Background()
	repo := newFakeWalletRepo()
	svc := NewService(repo, nil)

	_, _, err := svc.Deposit(ctx, 1, 1000, "pay_l1", nil)
	require.NoError(t, err)
	payment, err := svc.Deduct(ctx, 1, 400, "scheme", "APP-l1")
	require.NoError(t, err)
	_, err = svc.CreditCommission(ctx, 1, 40, 7)
	require.NoError(t, err)
	refund, err := svc.Refund(ctx, payment.ID, 400, "unavailable")
	require.NoError(t, err)
	_, err = svc.SettleRefund(ctx, refund.ID, models.TransactionStatusCompleted)
	require.NoError(t, err)
	_, err = svc.RecordFailedDeposit(ctx, 1, 999, "pay_l2", nil)
	require.NoError(t, err)
	_, err = svc.Deduct(ctx, 1, 5000, "too big", "")
	assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)

	assert.Equal(t, repo.completedSum(1), repo.balanceOf(1))
	assert.Equal(t, 1040.0, repo.balanceOf(1))
}
