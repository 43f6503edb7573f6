// Package cleanup runs the admin data retention tasks. Each task is
// triggered explicitly by name; nothing here runs on a timer.
package cleanup

import (
	"context"
	"log"
	"time"

	"sevapoint/internal/apperrors"
	"sevapoint/internal/models"
	"sevapoint/internal/repositories"
)

// Retention windows. Ledger rows are never deleted, only tagged as archived;
// the wallet balance must stay reconstructible from the full transaction
// history.
const (
	applicationRetention  = 6 * 30 * 24 * time.Hour
	notificationRetention = 30 * 24 * time.Hour
	transactionRetention  = 365 * 24 * time.Hour
)

// Task names accepted by Run.
const (
	TaskOldApplications = "old-applications"
	TaskNotifications   = "notifications"
	TaskOldTransactions = "old-transactions"
)

// Result reports what a single task run touched.
type Result struct {
	Task     string    `json:"task"`
	Affected int64     `json:"affected"`
	Cutoff   time.Time `json:"cutoff"`
}

type Service interface {
	// Run executes one retention task. Admin only.
	Run(ctx context.Context, actor models.UserClaims, task string) (*Result, error)
	// RunAll executes every task, continuing past individual failures.
	RunAll(ctx context.Context, actor models.UserClaims) ([]Result, error)
}

type service struct {
	apps          repositories.ApplicationRepository
	wallets       repositories.WalletRepository
	notifications repositories.NotificationRepository
}

func NewService(
	apps repositories.ApplicationRepository,
	wallets repositories.WalletRepository,
	notifications repositories.NotificationRepository,
) Service {
	return &service{apps: apps, wallets: wallets, notifications: notifications}
}

func (s *service) Run(ctx context.Context, actor models.UserClaims, task string) (*Result, error) {
	if actor.Role != models.RoleAdmin {
		return nil, apperrors.ErrUnauthorized
	}

	var (
		cutoff   time.Time
		affected int64
		err      error
	)
	switch task {
	case TaskOldApplications:
		cutoff = time.Now().Add(-applicationRetention)
		affected, err = s.apps.DeleteTerminalBefore(cutoff)
	case TaskNotifications:
		cutoff = time.Now().Add(-notificationRetention)
		affected, err = s.notifications.DeleteOlderThan(cutoff)
	case TaskOldTransactions:
		cutoff = time.Now().Add(-transactionRetention)
		affected, err = s.wallets.ArchiveTransactionsBefore(cutoff)
	default:
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	log.Printf("cleanup: task %s affected %d rows (cutoff %s)", task, affected, cutoff.Format(time.RFC3339))
	return &Result{Task: task, Affected: affected, Cutoff: cutoff}, nil
}

func (s *service) RunAll(ctx context.Context, actor models.UserClaims) ([]Result, error) {
	if actor.Role != models.RoleAdmin {
		return nil, apperrors.ErrUnauthorized
	}

	results := make([]Result, 0, 3)
	for _, task := range []string{TaskOldApplications, TaskNotifications, TaskOldTransactions} {
		res, err := s.Run(ctx, actor, task)
		if err != nil {
			log.Printf("cleanup: task %s failed: %v", task, err)
			continue
		}
		results = append(results, *res)
	}
	return results, nil
}
