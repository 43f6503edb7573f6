// Package notification persists best-effort in-app notifications. Writes
// run on a background goroutine and only log on failure; no workflow ever
// blocks on or fails because of a notification.
package notification

import (
	"context"
	"fmt"
	"log"

	"sevapoint/internal/models"
	"sevapoint/internal/repositories"
)

type Service interface {
	// ApplicationSubmitted notifies the submitting retailer and fans out to
	// every active reviewer.
	ApplicationSubmitted(app *models.Application)
	// ApplicationDecided notifies the retailer of an approval or rejection.
	ApplicationDecided(app *models.Application)
	// DepositReceived notifies the wallet owner of a reconciled payment.
	DepositReceived(userID uint, amount float64)

	List(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error)
	MarkRead(id, userID uint) error
}

type service struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
}

func NewService(notifications repositories.NotificationRepository, users repositories.UserRepository) Service {
	if notifications == nil {
		panic("notification repository is required")
	}
	if users == nil {
		panic("user repository is required")
	}
	return &service{notifications: notifications, users: users}
}

func (s *service) ApplicationSubmitted(app *models.Application) {
	schemeName := s.schemeName(app)
	go func() {
		s.store(app.UserID, models.NotificationApplicationSubmitted,
			"Application submitted",
			fmt.Sprintf("Your application #%d for %s was submitted", app.ID, schemeName))

		reviewers, err := s.users.ListByRoles(models.RoleAdmin, models.RoleEmployee)
		if err != nil {
			log.Printf("notification: failed to list reviewers: %v", err)
			return
		}
		for _, reviewer := range reviewers {
			s.store(reviewer.ID, models.NotificationApplicationSubmitted,
				"New application",
				fmt.Sprintf("Application #%d for %s is awaiting review", app.ID, schemeName))
		}
	}()
}

func (s *service) ApplicationDecided(app *models.Application) {
	schemeName := s.schemeName(app)
	kind := models.NotificationApplicationApproved
	title := "Application approved"
	message := fmt.Sprintf("Your application #%d for %s was approved", app.ID, schemeName)
	if app.Status == models.ApplicationStatusRejected {
		kind = models.NotificationApplicationRejected
		title = "Application rejected"
		message = fmt.Sprintf("Your application #%d for %s was rejected", app.ID, schemeName)
		if app.Notes != "" {
			message += ": " + app.Notes
		}
	}
	go s.store(app.UserID, kind, title, message)
}

func (s *service) DepositReceived(userID uint, amount float64) {
	go s.store(userID, models.NotificationDepositReceived,
		"Deposit received",
		fmt.Sprintf("%.2f was added to your wallet", amount))
}

func (s *service) List(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.notifications.ListByUser(ctx, userID, limit, offset)
}

func (s *service) MarkRead(id, userID uint) error {
	return s.notifications.MarkRead(id, userID)
}

func (s *service) store(userID uint, kind, title, message string) {
	err := s.notifications.Create(&models.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
	})
	if err != nil {
		log.Printf("notification: failed to store %s for user %d: %v", kind, userID, err)
	}
}

func (s *service) schemeName(app *models.Application) string {
	if app.Scheme != nil {
		return app.Scheme.Name
	}
	return fmt.Sprintf("scheme #%d", app.SchemeID)
}
