package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sevapoint/internal/apperrors"
	"sevapoint/internal/models"
	"sevapoint/internal/repositories"
)

var (
	admin    = Actor{ID: 100, Role: models.RoleAdmin}
	employee = Actor{ID: 101, Role: models.RoleEmployee}
	retailer = Actor{ID: 1, Role: models.RoleRetailer}
)

type fakeAppRepo struct {
	apps   map[uint]*models.Application
	nextID uint
}

func newFakeAppRepo() *fakeAppRepo {
	return &fakeAppRepo{apps: make(map[uint]*models.Application)}
}

func (f *fakeAppRepo) Create(app *models.Application) error {
	f.nextID++
	app.ID = f.nextID
	app.CreatedAt = time.Now()
	f.apps[app.ID] = app
	return nil
}

func (f *fakeAppRepo) GetByID(id uint) (*models.Application, error) {
	if app, ok := f.apps[id]; ok {
		clone := *app
		return &clone, nil
	}
	return nil, repositories.ErrApplicationNotFound
}

func (f *fakeAppRepo) List(_ context.Context, filter repositories.ApplicationFilter) ([]models.Application, int64, error) {
	var out []models.Application
	for _, app := range f.apps {
		if filter.UserID != nil && app.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		out = append(out, *app)
	}
	return out, int64(len(out)), nil
}

func (f *fakeAppRepo) TransitionStatus(id uint, from, to string, updates map[string]interface{}) (bool, error) {
	app, ok := f.apps[id]
	if !ok {
		return false, repositories.ErrApplicationNotFound
	}
	if app.Status != from {
		return false, nil
	}
	app.Status = to
	if v, ok := updates["notes"].(string); ok {
		app.Notes = v
	}
	if v, ok := updates["approved_by"].(uint); ok {
		app.ApprovedBy = &v
	}
	if v, ok := updates["rejected_by"].(uint); ok {
		app.RejectedBy = &v
	}
	if v, ok := updates["commission_amount"].(float64); ok {
		app.CommissionAmount = v
	}
	if v, ok := updates["processed_at"].(time.Time); ok {
		app.ProcessedAt = &v
	}
	return true, nil
}

func (f *fakeAppRepo) Delete(id uint) error {
	if _, ok := f.apps[id]; !ok {
		return repositories.ErrApplicationNotFound
	}
	delete(f.apps, id)
	return nil
}

func (f *fakeAppRepo) DeleteTerminalBefore(cutoff time.Time) (int64, error) { return 0, nil }

type fakeSchemeRepo struct {
	schemes map[uint]*models.Scheme
}

func (f *fakeSchemeRepo) Create(s *models.Scheme) error { return nil }
func (f *fakeSchemeRepo) Update(s *models.Scheme) error { return nil }

func (f *fakeSchemeRepo) GetByID(id uint) (*models.Scheme, error) {
	if s, ok := f.schemes[id]; ok {
		return s, nil
	}
	return nil, repositories.ErrSchemeNotFound
}

func (f *fakeSchemeRepo) GetActiveByID(id uint) (*models.Scheme, error) {
	s, err := f.GetByID(id)
	if err != nil || !s.IsActive {
		return nil, repositories.ErrSchemeNotFound
	}
	return s, nil
}

func (f *fakeSchemeRepo) List(_ context.Context, includeInactive bool) ([]models.Scheme, error) {
	return nil, nil
}

type mockWallet struct {
	mock.Mock
}

func (m *mockWallet) Deduct(ctx context.Context, userID uint, amount float64, description, reference string) (*models.Transaction, error) {
	args := m.Called(ctx, userID, amount, description, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *mockWallet) CreditRefund(ctx context.Context, userID uint, amount float64, reference, reason string) (*models.Transaction, error) {
	args := m.Called(ctx, userID, amount, reference, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *mockWallet) RefundRejection(ctx context.Context, userID uint, amount float64, applicationID, rejectedBy uint, notes string) (*models.Transaction, error) {
	args := m.Called(ctx, userID, amount, applicationID, rejectedBy, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *mockWallet) CreditCommission(ctx context.Context, userID uint, amount float64, applicationID uint) (*models.Transaction, error) {
	args := m.Called(ctx, userID, amount, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func newTestService(t *testing.T) (*fakeAppRepo, *mockWallet, Service) {
	t.Helper()
	appRepo := newFakeAppRepo()
	schemeRepo := &fakeSchemeRepo{schemes: map[uint]*models.Scheme{
		1: {ID: 1, Name: "PAN Card", Price: 300, CommissionRate: 10, IsActive: true},
		2: {ID: 2, Name: "Voter ID", IsFree: true, IsActive: true},
		3: {ID: 3, Name: "Retired Scheme", Price: 100, IsActive: false},
	}}
	wallets := new(mockWallet)
	svc := NewService(appRepo, schemeRepo, wallets, nil)
	return appRepo, wallets, svc
}

func submitInput(schemeID uint) SubmitInput {
	return SubmitInput{
		SchemeID:        schemeID,
		CustomerName:    "Asha Devi",
		CustomerPhone:   "9876543210",
		CustomerAddress: "12 Gandhi Road",
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("priced scheme charges wallet before creating", func(t *testing.T) {
		_, wallets, svc := newTestService(t)
		wallets.On("Deduct", mock.Anything, retailer.ID, 300.0, mock.Anything, mock.Anything).
			Return(&models.Transaction{ID: 1}, nil)

		app, err := svc.Submit(ctx, retailer, submitInput(1))
		require.NoError(t, err)
		assert.Equal(t, models.ApplicationStatusPending, app.Status)
		assert.Equal(t, 300.0, app.Amount)
		assert.Equal(t, 10.0, app.CommissionRate)
		wallets.AssertExpectations(t)
	})

	t.Run("free scheme skips the wallet", func(t *testing.T) {
		_, wallets, svc := newTestService(t)

		app, err := svc.Submit(ctx, retailer, submitInput(2))
		require.NoError(t, err)
		assert.Equal(t, 0.0, app.Amount)
		wallets.AssertNotCalled(t, "Deduct")
	})

	t.Run("insufficient balance creates nothing", func(t *testing.T) {
		appRepo, wallets, svc := newTestService(t)
		wallets.On("Deduct", mock.Anything, retailer.ID, 300.0, mock.Anything, mock.Anything).
			Return(nil, apperrors.ErrInsufficientBalance)

		_, err := svc.Submit(ctx, retailer, submitInput(1))
		assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)
		assert.Empty(t, appRepo.apps)
	})

	t.Run("inactive scheme is not found", func(t *testing.T) {
		_, wallets, svc := newTestService(t)

		_, err := svc.Submit(ctx, retailer, submitInput(3))
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		wallets.AssertNotCalled(t, "Deduct")
	})
}

func TestApprove(t *testing.T) {
	ctx := context.Background()

	submit := func(t *testing.T, svc Service, wallets *mockWallet) *models.Application {
		wallets.On("Deduct", mock.Anything, retailer.ID, 300.0, mock.Anything, mock.Anything).
			Return(&models.Transaction{ID: 1}, nil).Once()
		app, err := svc.Submit(ctx, retailer, submitInput(1))
		require.NoError(t, err)
		return app
	}

	t.Run("pays commission from snapshotted rate", func(t *testing.T) {
		_, wallets, svc := newTestService(t)
		app := submit(t, svc, wallets)
		wallets.On("CreditCommission", mock.Anything, retailer.ID, 30.0, app.ID).
			Return(&models.Transaction{ID: 2}, nil).Once()

		approved, err := svc.Approve(ctx, employee, app.ID, "verified")
		require.NoError(t, err)
		assert.Equal(t, models.ApplicationStatusApproved, approved.Status)
		assert.Equal(t, 30.0, approved.CommissionAmount)
		wallets.AssertExpectations(t)
	})

	t.Run("non-pending is invalid and touches no wallet", func(t *testing.T) {
		_, wallets, svc := newTestService(t)
		app := submit(t, svc, wallets)
		wallets.On("CreditCommission", mock.Anything, retailer.ID, 30.0, app.ID).
			Return(&models.Transaction{ID: 2}, nil).Once()

		_, err := svc.Approve(ctx, employee, app.ID, "")
		require.NoError(t, err)

		_, err = svc.Approve(ctx, employee, app.ID, "again")
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
		wallets.AssertNumberOfCalls(t, "CreditCommission", 1)
	})

	t.Run("payout failure does not roll back approval", func(t *testing.T) {
		_, wallets, svc := newTestService(t)
		app := submit(t, svc, wallets)
		wallets.On("CreditCommission", mock.Anything, retailer.ID, 30.0, app.ID).
			Return(nil, errors.New("wallet store down")).Once()

		approved, err := svc.Approve(ctx, employee, app.ID, "")
		require.NoError(t, err)
		assert.Equal(t, models.ApplicationStatusApproved, approved.Status)
	})

	t.Run("retailers cannot approve", func(t *testing.T) {
		_, wallets, svc := newTestService(t)
		app := submit(t, svc, wallets)

		_, err := svc.Approve(ctx, retailer, app.ID, "")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

func TestReject(t *testing.T) {
	ctx := context.Background()

	submit := func(t *testing.T, svc Service, wallets *mockWallet) *models.Application {
		wallets.On("Deduct", mock.Anything, retailer.ID, 300.0, mock.Anything, mock.Anything).
			Return(&models.Transaction{ID: 1}, nil).Once()
		app, err := svc.Submit(ctx, retailer, submitInput(1))
		require.NoError(t, err)
		return app
	}

	t.Run("with refund credits and flips in one unit", func(t *testing.T) {
		appRepo, wallets, svc := newTestService(t)
		app := submit(t, svc, wallets)
		wallets.On("RefundRejection", mock.Anything, retailer.ID, 300.0, app.ID, admin.ID, "documents illegible").
			Return(&models.Transaction{ID: 2}, nil).Once().
			Run(func(mock.Arguments) {
				// The wallet service owns the status flip on this path.
				_, err := appRepo.TransitionStatus(app.ID,
					models.ApplicationStatusPending, models.ApplicationStatusRejected,
					map[string]interface{}{"rejected_by": admin.ID, "notes": "documents illegible"})
				require.NoError(t, err)
			})

		rejected, err := svc.Reject(ctx, admin, app.ID, "documents illegible", true)
		require.NoError(t, err)
		assert.Equal(t, models.ApplicationStatusRejected, rejected.Status)
		assert.Equal(t, "documents illegible", rejected.Notes)
		wallets.AssertExpectations(t)
	})

	t.Run("without refund keeps the money", func(t *testing.T) {
		_, wallets, svc := newTestService(t)
		app := submit(t, svc, wallets)

		rejected, err := svc.Reject(ctx, admin, app.ID, "fraudulent", false)
		require.NoError(t, err)
		assert.Equal(t, models.ApplicationStatusRejected, rejected.Status)
		wallets.AssertNotCalled(t, "RefundRejection")
	})

	t.Run("refund failure blocks the rejection", func(t *testing.T) {
		appRepo, wallets, svc := newTestService(t)
		app := submit(t, svc, wallets)
		wallets.On("RefundRejection", mock.Anything, retailer.ID, 300.0, app.ID, admin.ID, "").
			Return(nil, errors.New("wallet store down")).Once()

		_, err := svc.Reject(ctx, admin, app.ID, "", true)
		require.Error(t, err)
		stored, err := appRepo.GetByID(app.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ApplicationStatusPending, stored.Status)
	})

	t.Run("losing to a concurrent approval refunds nothing", func(t *testing.T) {
		appRepo, wallets, svc := newTestService(t)
		app := submit(t, svc, wallets)
		// An approval slips in after the pending pre-check; the atomic
		// credit-and-flip sees a non-pending row and rolls back.
		wallets.On("RefundRejection", mock.Anything, retailer.ID, 300.0, app.ID, admin.ID, "too slow").
			Return(nil, apperrors.ErrInvalidState).Once().
			Run(func(mock.Arguments) {
				_, err := appRepo.TransitionStatus(app.ID,
					models.ApplicationStatusPending, models.ApplicationStatusApproved,
					map[string]interface{}{"approved_by": employee.ID})
				require.NoError(t, err)
			})

		_, err := svc.Reject(ctx, admin, app.ID, "too slow", true)
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
		stored, err := appRepo.GetByID(app.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ApplicationStatusApproved, stored.Status)
		wallets.AssertNotCalled(t, "CreditRefund")
	})
}

func TestComplete(t *testing.T) {
	ctx := context.Background()
	_, wallets, svc := newTestService(t)
	wallets.On("Deduct", mock.Anything, retailer.ID, 300.0, mock.Anything, mock.Anything).
		Return(&models.Transaction{ID: 1}, nil).Once()
	wallets.On("CreditCommission", mock.Anything, retailer.ID, 30.0, mock.Anything).
		Return(&models.Transaction{ID: 2}, nil).Once()

	app, err := svc.Submit(ctx, retailer, submitInput(1))
	require.NoError(t, err)

	// Cannot complete a pending application.
	_, err = svc.Complete(ctx, employee, app.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	_, err = svc.Approve(ctx, employee, app.ID, "")
	require.NoError(t, err)

	completed, err := svc.Complete(ctx, employee, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusCompleted, completed.Status)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("approved applications are protected", func(t *testing.T) {
		_, wallets, svc := newTestService(t)
		wallets.On("Deduct", mock.Anything, retailer.ID, 300.0, mock.Anything, mock.Anything).
			Return(&models.Transaction{ID: 1}, nil).Once()
		wallets.On("CreditCommission", mock.Anything, retailer.ID, 30.0, mock.Anything).
			Return(&models.Transaction{ID: 2}, nil).Once()

		app, err := svc.Submit(ctx, retailer, submitInput(1))
		require.NoError(t, err)
		_, err = svc.Approve(ctx, admin, app.ID, "")
		require.NoError(t, err)

		err = svc.Delete(ctx, admin, app.ID)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("admin only", func(t *testing.T) {
		_, wallets, svc := newTestService(t)
		wallets.On("Deduct", mock.Anything, retailer.ID, 300.0, mock.Anything, mock.Anything).
			Return(&models.Transaction{ID: 1}, nil).Once()

		app, err := svc.Submit(ctx, retailer, submitInput(1))
		require.NoError(t, err)

		assert.ErrorIs(t, svc.Delete(ctx, employee, app.ID), apperrors.ErrUnauthorized)
		assert.NoError(t, svc.Delete(ctx, admin, app.ID))
	})
}

func TestGetScoping(t *testing.T) {
	ctx := context.Background()
	_, wallets, svc := newTestService(t)
	wallets.On("Deduct", mock.Anything, retailer.ID, 300.0, mock.Anything, mock.Anything).
		Return(&models.Transaction{ID: 1}, nil).Once()

	app, err := svc.Submit(ctx, retailer, submitInput(1))
	require.NoError(t, err)

	// The owner and any reviewer can read it.
	_, err = svc.Get(ctx, retailer, app.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, employee, app.ID)
	assert.NoError(t, err)

	// Another retailer gets not-found, not forbidden.
	other := Actor{ID: 2, Role: models.RoleRetailer}
	_, err = svc.Get(ctx, other, app.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
