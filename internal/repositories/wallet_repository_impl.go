package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sevapoint/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) GetByID(id uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.First(&wallet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetOrCreateByUserID(userID uint) (*models.Wallet, error) {
	wallet := models.Wallet{UserID: userID}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&wallet).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert wallet: %w", err)
	}
	// Re-read: on conflict the insert is a no-op and leaves no ID behind.
	return r.GetByUserID(userID)
}

func (r *walletRepository) Credit(walletID uint, amount float64) error {
	result := r.db.Model(&models.Wallet{}).
		Where("id = ?", walletID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return fmt.Errorf("failed to credit wallet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrWalletNotFound
	}
	return nil
}

func (r *walletRepository) Debit(walletID uint, amount float64) error {
	result := r.db.Model(&models.Wallet{}).
		Where("id = ? AND balance >= ?", walletID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return fmt.Errorf("failed to debit wallet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(walletID); err != nil {
			return err
		}
		return ErrInsufficientFunds
	}
	return nil
}

func (r *walletRepository) CreateTransaction(txn *models.Transaction) error {
	if err := r.db.Create(txn).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateReference
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *walletRepository) GetTransactionByID(id uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &txn, nil
}

func (r *walletRepository) GetTransactionByReference(reference string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.Where("reference = ?", reference).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by reference: %w", err)
	}
	return &txn, nil
}

func (r *walletRepository) UpdateTransactionStatusFrom(id uint, from, to string) (bool, error) {
	result := r.db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update transaction status: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *walletRepository) ListTransactionsByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Transaction, int64, error) {
	var txns []models.Transaction
	var total int64

	base := r.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	err := base.Order("created_at DESC").Limit(limit).Offset(offset).Find(&txns).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, total, nil
}

func (r *walletRepository) ArchiveTransactionsBefore(cutoff time.Time) (int64, error) {
	result := r.db.Exec(
		`UPDATE transactions
		 SET metadata = COALESCE(metadata, '{}'::jsonb) || ?::jsonb
		 WHERE created_at < ? AND (metadata ->> 'archived') IS NULL`,
		fmt.Sprintf(`{"archived": true, "archived_at": %q}`, time.Now().UTC().Format(time.RFC3339)),
		cutoff,
	)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to archive transactions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *walletRepository) MarkApplicationRejected(applicationID, rejectedBy uint, notes string) (bool, error) {
	result := r.db.Model(&models.Application{}).
		Where("id = ? AND status = ?", applicationID, models.ApplicationStatusPending).
		Updates(map[string]interface{}{
			"status":       models.ApplicationStatusRejected,
			"rejected_by":  rejectedBy,
			"notes":        notes,
			"processed_at": time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark application rejected: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *walletRepository) MarkApplicationCommissionPaid(applicationID uint) (bool, error) {
	result := r.db.Model(&models.Application{}).
		Where("id = ? AND commission_paid = ?", applicationID, false).
		Update("commission_paid", true)
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark commission paid: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *walletRepository) ExecuteInTransaction(fn func(WalletRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&walletRepository{db: tx})
	})
}
