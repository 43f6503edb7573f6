package wallet

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"sevapoint/internal/apperrors"
	"sevapoint/internal/models"
	"sevapoint/internal/repositories"
)

type service struct {
	repo  repositories.WalletRepository
	cache Cache
}

// NewService creates a new wallet service. Pass a nil cache to disable
// caching.
func NewService(repo repositories.WalletRepository, cache Cache) Service {
	if repo == nil {
		panic("repo is required")
	}
	if cache == nil {
		cache = NoopCache{}
	}
	return &service{repo: repo, cache: cache}
}

func (s *service) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	if cached, err := s.cache.GetWallet(ctx, userID); err == nil && cached != nil {
		return cached, nil
	}

	wallet, err := s.repo.GetOrCreateByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	if err := s.cache.SetWallet(ctx, wallet); err != nil {
		log.Printf("failed to cache wallet for user %d: %v", userID, err)
	}
	return wallet, nil
}

func (s *service) Deposit(ctx context.Context, userID uint, amount float64, reference string, metadata models.JSON) (*models.Transaction, bool, error) {
	if amount <= 0 {
		return nil, false, apperrors.ErrInvalidAmount
	}

	var result *models.Transaction
	created := false
	err := s.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		if reference != "" {
			existing, err := tx.GetTransactionByReference(reference)
			if err == nil {
				if existing.Status == models.TransactionStatusCompleted {
					result = existing
					return nil
				}
			} else if !errors.Is(err, repositories.ErrTransactionNotFound) {
				return err
			}
		}

		wallet, err := tx.GetOrCreateByUserID(userID)
		if err != nil {
			return err
		}
		if err := tx.Credit(wallet.ID, amount); err != nil {
			return err
		}

		txn := &models.Transaction{
			UserID:      userID,
			WalletID:    wallet.ID,
			Type:        models.TransactionTypeDeposit,
			Amount:      amount,
			Status:      models.TransactionStatusCompleted,
			Description: "Wallet top-up via payment gateway",
			Reference:   models.Ref(reference),
			Metadata:    metadata,
		}
		if err := tx.CreateTransaction(txn); err != nil {
			return err
		}
		result = txn
		created = true
		return nil
	})
	if errors.Is(err, repositories.ErrDuplicateReference) && reference != "" {
		// Lost a race with a concurrent delivery of the same payment; the
		// credit rolled back, so the winner's transaction is the answer.
		txn, err := s.GetTransactionByReference(ctx, reference)
		return txn, false, err
	}
	if err != nil {
		return nil, false, fmt.Errorf("deposit failed: %w", err)
	}

	s.invalidate(ctx, userID)
	return result, created, nil
}

func (s *service) Deduct(ctx context.Context, userID uint, amount float64, description, reference string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}

	var result *models.Transaction
	err := s.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		wallet, err := tx.GetOrCreateByUserID(userID)
		if err != nil {
			return err
		}
		if err := tx.Debit(wallet.ID, amount); err != nil {
			return err
		}

		txn := &models.Transaction{
			UserID:      userID,
			WalletID:    wallet.ID,
			Type:        models.TransactionTypeSchemePayment,
			Amount:      -amount,
			Status:      models.TransactionStatusCompleted,
			Description: description,
			Reference:   models.Ref(reference),
		}
		if err := tx.CreateTransaction(txn); err != nil {
			return err
		}
		result = txn
		return nil
	})
	if errors.Is(err, repositories.ErrInsufficientFunds) {
		return nil, apperrors.ErrInsufficientBalance
	}
	if err != nil {
		return nil, fmt.Errorf("deduction failed: %w", err)
	}

	s.invalidate(ctx, userID)
	return result, nil
}

func (s *service) Refund(ctx context.Context, originalTxID uint, amount float64, reason string) (*models.Transaction, error) {
	original, err := s.repo.GetTransactionByID(originalTxID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	if original.Type != models.TransactionTypeSchemePayment ||
		original.Status != models.TransactionStatusCompleted {
		return nil, apperrors.ErrNotRefundable
	}
	if amount <= 0 || amount > math.Abs(original.Amount) {
		return nil, apperrors.ErrInvalidAmount
	}

	refund := &models.Transaction{
		UserID:      original.UserID,
		WalletID:    original.WalletID,
		Type:        models.TransactionTypeRefund,
		Amount:      amount,
		Status:      models.TransactionStatusPending,
		Description: fmt.Sprintf("Refund for transaction %d: %s", originalTxID, reason),
		Reference:   models.Ref(fmt.Sprintf("REFUND-%d", originalTxID)),
	}
	if err := s.repo.CreateTransaction(refund); err != nil {
		if errors.Is(err, repositories.ErrDuplicateReference) {
			return nil, apperrors.ErrConflict
		}
		return nil, fmt.Errorf("failed to create refund: %w", err)
	}
	return refund, nil
}

func (s *service) SettleRefund(ctx context.Context, refundID uint, status string) (*models.Transaction, error) {
	switch status {
	case models.TransactionStatusPending,
		models.TransactionStatusCompleted,
		models.TransactionStatusFailed,
		models.TransactionStatusCancelled:
	default:
		return nil, apperrors.ErrInvalidState
	}

	var result *models.Transaction
	err := s.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		refund, err := tx.GetTransactionByID(refundID)
		if err != nil {
			if errors.Is(err, repositories.ErrTransactionNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}
		if refund.Type != models.TransactionTypeRefund {
			return apperrors.ErrNotRefundable
		}
		if status == models.TransactionStatusPending {
			result = refund
			return nil
		}

		ok, err := tx.UpdateTransactionStatusFrom(refundID, models.TransactionStatusPending, status)
		if err != nil {
			return err
		}
		if !ok {
			// Already settled; only PENDING refunds may move.
			return apperrors.ErrInvalidState
		}

		// Only the COMPLETED settlement touches the balance, and the CAS
		// above guarantees it happens at most once.
		if status == models.TransactionStatusCompleted {
			if err := tx.Credit(refund.WalletID, refund.Amount); err != nil {
				return err
			}
		}

		refund.Status = status
		result = refund
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, result.UserID)
	return result, nil
}

func (s *service) CreditRefund(ctx context.Context, userID uint, amount float64, reference, reason string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}

	var result *models.Transaction
	err := s.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		if reference != "" {
			existing, err := tx.GetTransactionByReference(reference)
			if err == nil && existing.Status == models.TransactionStatusCompleted {
				result = existing
				return nil
			}
			if err != nil && !errors.Is(err, repositories.ErrTransactionNotFound) {
				return err
			}
		}

		wallet, err := tx.GetOrCreateByUserID(userID)
		if err != nil {
			return err
		}
		if err := tx.Credit(wallet.ID, amount); err != nil {
			return err
		}

		txn := &models.Transaction{
			UserID:      userID,
			WalletID:    wallet.ID,
			Type:        models.TransactionTypeRefund,
			Amount:      amount,
			Status:      models.TransactionStatusCompleted,
			Description: reason,
			Reference:   models.Ref(reference),
		}
		if err := tx.CreateTransaction(txn); err != nil {
			return err
		}
		result = txn
		return nil
	})
	if errors.Is(err, repositories.ErrDuplicateReference) && reference != "" {
		return s.GetTransactionByReference(ctx, reference)
	}
	if err != nil {
		return nil, fmt.Errorf("refund credit failed: %w", err)
	}

	s.invalidate(ctx, userID)
	return result, nil
}

func (s *service) RefundRejection(ctx context.Context, userID uint, amount float64, applicationID, rejectedBy uint, notes string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}

	reference := fmt.Sprintf("APP-REFUND-%d", applicationID)

	var result *models.Transaction
	err := s.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		won, err := tx.MarkApplicationRejected(applicationID, rejectedBy, notes)
		if err != nil {
			return err
		}
		if !won {
			// Another decision already left PENDING; rolling back here
			// guarantees the credit never lands on a non-rejected
			// application.
			return apperrors.ErrInvalidState
		}

		wallet, err := tx.GetOrCreateByUserID(userID)
		if err != nil {
			return err
		}
		if err := tx.Credit(wallet.ID, amount); err != nil {
			return err
		}

		txn := &models.Transaction{
			UserID:      userID,
			WalletID:    wallet.ID,
			Type:        models.TransactionTypeRefund,
			Amount:      amount,
			Status:      models.TransactionStatusCompleted,
			Description: fmt.Sprintf("Refund for rejected application %d", applicationID),
			Reference:   models.Ref(reference),
		}
		if err := tx.CreateTransaction(txn); err != nil {
			return err
		}
		result = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	return result, nil
}

func (s *service) CreditCommission(ctx context.Context, userID uint, amount float64, applicationID uint) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}

	reference := fmt.Sprintf("COMMISSION-%d", applicationID)

	var result *models.Transaction
	err := s.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		won, err := tx.MarkApplicationCommissionPaid(applicationID)
		if err != nil {
			return err
		}
		if !won {
			// Commission already paid; return the prior payout if the ledger
			// has it.
			existing, err := tx.GetTransactionByReference(reference)
			if err == nil {
				result = existing
				return nil
			}
			if errors.Is(err, repositories.ErrTransactionNotFound) {
				return nil
			}
			return err
		}

		wallet, err := tx.GetOrCreateByUserID(userID)
		if err != nil {
			return err
		}
		if err := tx.Credit(wallet.ID, amount); err != nil {
			return err
		}

		txn := &models.Transaction{
			UserID:      userID,
			WalletID:    wallet.ID,
			Type:        models.TransactionTypeCommission,
			Amount:      amount,
			Status:      models.TransactionStatusCompleted,
			Description: fmt.Sprintf("Commission for application %d", applicationID),
			Reference:   models.Ref(reference),
			Metadata:    models.JSON{"application_id": applicationID},
		}
		if err := tx.CreateTransaction(txn); err != nil {
			return err
		}
		result = txn
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("commission credit failed: %w", err)
	}

	s.invalidate(ctx, userID)
	return result, nil
}

func (s *service) RecordFailedDeposit(ctx context.Context, userID uint, amount float64, reference string, metadata models.JSON) (*models.Transaction, error) {
	var result *models.Transaction
	err := s.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		wallet, err := tx.GetOrCreateByUserID(userID)
		if err != nil {
			return err
		}
		txn := &models.Transaction{
			UserID:      userID,
			WalletID:    wallet.ID,
			Type:        models.TransactionTypeDeposit,
			Amount:      amount,
			Status:      models.TransactionStatusFailed,
			Description: "Failed wallet top-up",
			Reference:   models.Ref(reference),
			Metadata:    metadata,
		}
		if err := tx.CreateTransaction(txn); err != nil {
			return err
		}
		result = txn
		return nil
	})
	if errors.Is(err, repositories.ErrDuplicateReference) && reference != "" {
		return s.GetTransactionByReference(ctx, reference)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record failed deposit: %w", err)
	}
	return result, nil
}

func (s *service) GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	txn, err := s.repo.GetTransactionByReference(reference)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return txn, nil
}

func (s *service) ListTransactions(ctx context.Context, userID uint, limit, offset int) ([]models.Transaction, int64, error) {
	return s.repo.ListTransactionsByUser(ctx, userID, limit, offset)
}

func (s *service) invalidate(ctx context.Context, userID uint) {
	if err := s.cache.InvalidateWallet(ctx, userID); err != nil {
		log.Printf("failed to invalidate wallet cache for user %d: %v", userID, err)
	}
}
