package repositories

import (
	"context"
	"time"

	"sevapoint/internal/models"
)

// ApplicationFilter narrows application listings. A nil UserID means all
// users (reviewer view); retailers are always scoped to their own.
type ApplicationFilter struct {
	UserID *uint
	Status string
	Limit  int
	Offset int
}

// ApplicationRepository persists service applications. Status transitions go
// through TransitionStatus, a compare-and-set on the current status, so two
// concurrent reviewer actions on the same application cannot both win.
type ApplicationRepository interface {
	Create(app *models.Application) error
	GetByID(id uint) (*models.Application, error)
	List(ctx context.Context, filter ApplicationFilter) ([]models.Application, int64, error)

	// TransitionStatus updates the row only if its status still equals from,
	// applying updates alongside the new status. Reports whether this call
	// performed the transition.
	TransitionStatus(id uint, from, to string, updates map[string]interface{}) (bool, error)

	Delete(id uint) error
	// DeleteTerminalBefore removes REJECTED/COMPLETED applications older than
	// cutoff. PENDING and APPROVED rows are never eligible.
	DeleteTerminalBefore(cutoff time.Time) (int64, error)
}
