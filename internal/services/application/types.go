package application

import (
	"context"

	"gorm.io/datatypes"

	"sevapoint/internal/models"
)

// Actor identifies who is performing a workflow call. Identity and role are
// passed explicitly into every operation rather than read from ambient
// session state, so the workflow stays testable in isolation.
type Actor struct {
	ID   uint
	Role string
}

// IsReviewer reports whether the actor may approve or reject.
func (a Actor) IsReviewer() bool { return models.IsReviewer(a.Role) }

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// SubmitInput carries a new application. FormData and Documents stay opaque;
// their shape is scheme-specific.
type SubmitInput struct {
	SchemeID        uint
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	CustomerAddress string
	FormData        models.JSON
	Documents       datatypes.JSON
}

// ListFilter narrows a listing. Retailers are forced onto their own
// applications regardless of the filter.
type ListFilter struct {
	Status string
	Page   int
	Limit  int
}

// Service drives the application state machine and its wallet side effects.
type Service interface {
	Submit(ctx context.Context, actor Actor, input SubmitInput) (*models.Application, error)
	Approve(ctx context.Context, actor Actor, id uint, notes string) (*models.Application, error)
	Reject(ctx context.Context, actor Actor, id uint, notes string, refund bool) (*models.Application, error)
	Complete(ctx context.Context, actor Actor, id uint) (*models.Application, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	Get(ctx context.Context, actor Actor, id uint) (*models.Application, error)
	List(ctx context.Context, actor Actor, filter ListFilter) ([]models.Application, int64, error)
}

// WalletService is the slice of the wallet surface the workflow needs.
type WalletService interface {
	Deduct(ctx context.Context, userID uint, amount float64, description, reference string) (*models.Transaction, error)
	CreditRefund(ctx context.Context, userID uint, amount float64, reference, reason string) (*models.Transaction, error)
	RefundRejection(ctx context.Context, userID uint, amount float64, applicationID, rejectedBy uint, notes string) (*models.Transaction, error)
	CreditCommission(ctx context.Context, userID uint, amount float64, applicationID uint) (*models.Transaction, error)
}

// Notifier dispatches best-effort notifications. Implementations must never
// block the workflow; failures are theirs to log.
type Notifier interface {
	ApplicationSubmitted(app *models.Application)
	ApplicationDecided(app *models.Application)
}
