package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"sevapoint/internal/apperrors"
	"sevapoint/internal/models"
	"sevapoint/internal/repositories"
)

type service struct {
	apps     repositories.ApplicationRepository
	schemes  repositories.SchemeRepository
	wallets  WalletService
	notifier Notifier
}

// NewService creates the application workflow service. The notifier may be
// nil; notifications are best-effort either way.
func NewService(
	apps repositories.ApplicationRepository,
	schemes repositories.SchemeRepository,
	wallets WalletService,
	notifier Notifier,
) Service {
	if apps == nil {
		panic("application repository is required")
	}
	if schemes == nil {
		panic("scheme repository is required")
	}
	if wallets == nil {
		panic("wallet service is required")
	}
	return &service{apps: apps, schemes: schemes, wallets: wallets, notifier: notifier}
}

func (s *service) Submit(ctx context.Context, actor Actor, input SubmitInput) (*models.Application, error) {
	scheme, err := s.schemes.GetActiveByID(input.SchemeID)
	if err != nil {
		if errors.Is(err, repositories.ErrSchemeNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	price := scheme.EffectivePrice()
	paymentRef := ""
	if price > 0 {
		// The deduction guards creation: no application exists unless the
		// wallet covered it.
		paymentRef = "APP-" + uuid.NewString()
		_, err := s.wallets.Deduct(ctx, actor.ID, price,
			fmt.Sprintf("Payment for %s", scheme.Name), paymentRef)
		if err != nil {
			return nil, err
		}
	}

	app := &models.Application{
		UserID:          actor.ID,
		SchemeID:        scheme.ID,
		Status:          models.ApplicationStatusPending,
		Amount:          price,
		CommissionRate:  scheme.CommissionRate,
		CustomerName:    input.CustomerName,
		CustomerPhone:   input.CustomerPhone,
		CustomerEmail:   input.CustomerEmail,
		CustomerAddress: input.CustomerAddress,
		FormData:        input.FormData,
		Documents:       input.Documents,
	}
	if err := s.apps.Create(app); err != nil {
		if price > 0 {
			// The payment landed but the application did not; give the money
			// back rather than stranding it.
			if _, rerr := s.wallets.CreditRefund(ctx, actor.ID, price,
				"REVERSAL-"+paymentRef, "Reversal of failed application submission"); rerr != nil {
				log.Printf("failed to reverse payment %s after submission failure: %v", paymentRef, rerr)
			}
		}
		return nil, err
	}
	app.Scheme = scheme

	if s.notifier != nil {
		s.notifier.ApplicationSubmitted(app)
	}
	return app, nil
}

func (s *service) Approve(ctx context.Context, actor Actor, id uint, notes string) (*models.Application, error) {
	if !actor.IsReviewer() {
		return nil, apperrors.ErrUnauthorized
	}

	app, err := s.get(id)
	if err != nil {
		return nil, err
	}

	commission := round2(app.Amount * app.CommissionRate / 100)
	now := time.Now()
	updates := map[string]interface{}{
		"approved_by":       actor.ID,
		"notes":             notes,
		"processed_at":      now,
		"commission_amount": commission,
	}
	ok, err := s.apps.TransitionStatus(id,
		models.ApplicationStatusPending, models.ApplicationStatusApproved, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrInvalidState
	}

	// Commission payout is deliberately outside the approval transaction: an
	// approval must not be blocked by payout trouble. The commission_paid
	// guard makes a retry safe.
	if commission > 0 && !app.CommissionPaid {
		if _, err := s.wallets.CreditCommission(ctx, app.UserID, commission, app.ID); err != nil {
			log.Printf("commission payout failed for application %d: %v", app.ID, err)
		}
	}

	app, err = s.get(id)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.ApplicationDecided(app)
	}
	return app, nil
}

func (s *service) Reject(ctx context.Context, actor Actor, id uint, notes string, refund bool) (*models.Application, error) {
	if !actor.IsReviewer() {
		return nil, apperrors.ErrUnauthorized
	}

	app, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationStatusPending {
		return nil, apperrors.ErrInvalidState
	}

	if refund && app.Amount > 0 {
		// The credit and the PENDING to REJECTED flip commit as one unit, so
		// losing the flip to a concurrent decision rolls the credit back and
		// surfaces as invalid state.
		if _, err := s.wallets.RefundRejection(ctx, app.UserID, app.Amount, app.ID, actor.ID, notes); err != nil {
			return nil, err
		}
	} else {
		ok, err := s.apps.TransitionStatus(id,
			models.ApplicationStatusPending, models.ApplicationStatusRejected,
			map[string]interface{}{
				"rejected_by":  actor.ID,
				"notes":        notes,
				"processed_at": time.Now(),
			})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperrors.ErrInvalidState
		}
	}

	app, err = s.get(id)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.ApplicationDecided(app)
	}
	return app, nil
}

func (s *service) Complete(ctx context.Context, actor Actor, id uint) (*models.Application, error) {
	if !actor.IsReviewer() {
		return nil, apperrors.ErrUnauthorized
	}

	if _, err := s.get(id); err != nil {
		return nil, err
	}

	ok, err := s.apps.TransitionStatus(id,
		models.ApplicationStatusApproved, models.ApplicationStatusCompleted,
		map[string]interface{}{"processed_at": time.Now()})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrInvalidState
	}
	return s.get(id)
}

func (s *service) Delete(ctx context.Context, actor Actor, id uint) error {
	if !actor.IsAdmin() {
		return apperrors.ErrUnauthorized
	}

	app, err := s.get(id)
	if err != nil {
		return err
	}
	// Processed, money-relevant records are never erased.
	if app.Status == models.ApplicationStatusApproved ||
		app.Status == models.ApplicationStatusCompleted {
		return apperrors.ErrConflict
	}
	return s.apps.Delete(id)
}

func (s *service) Get(ctx context.Context, actor Actor, id uint) (*models.Application, error) {
	app, err := s.get(id)
	if err != nil {
		return nil, err
	}
	// Retailers see only their own submissions.
	if !actor.IsReviewer() && app.UserID != actor.ID {
		return nil, apperrors.ErrNotFound
	}
	return app, nil
}

func (s *service) List(ctx context.Context, actor Actor, filter ListFilter) ([]models.Application, int64, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 10
	}

	repoFilter := repositories.ApplicationFilter{
		Status: filter.Status,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if !actor.IsReviewer() {
		userID := actor.ID
		repoFilter.UserID = &userID
	}
	return s.apps.List(ctx, repoFilter)
}

func (s *service) get(id uint) (*models.Application, error) {
	app, err := s.apps.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
