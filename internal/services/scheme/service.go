// Package scheme manages the catalog of government services retailers can
// apply for. Pricing and commission rates live here; charging and payouts
// happen in the wallet service at submission and approval time.
package scheme

import (
	"context"
	"errors"
	"strings"

	"sevapoint/internal/apperrors"
	"sevapoint/internal/models"
	"sevapoint/internal/repositories"
)

// CreateInput carries a new catalog entry.
type CreateInput struct {
	Name           string
	Description    string
	Category       string
	Price          float64
	CommissionRate float64
	IsFree         bool
}

// UpdateInput carries a partial catalog edit. Nil fields are left untouched.
type UpdateInput struct {
	Name           *string
	Description    *string
	Category       *string
	Price          *float64
	CommissionRate *float64
	IsFree         *bool
	IsActive       *bool
}

type Service interface {
	Create(ctx context.Context, actor models.UserClaims, input CreateInput) (*models.Scheme, error)
	Update(ctx context.Context, actor models.UserClaims, id uint, input UpdateInput) (*models.Scheme, error)
	Get(ctx context.Context, id uint) (*models.Scheme, error)
	// List returns active schemes; reviewers also see inactive ones.
	List(ctx context.Context, role string) ([]models.Scheme, error)
}

type service struct {
	schemes repositories.SchemeRepository
}

func NewService(schemes repositories.SchemeRepository) Service {
	if schemes == nil {
		panic("scheme repository is required")
	}
	return &service{schemes: schemes}
}

func (s *service) Create(ctx context.Context, actor models.UserClaims, input CreateInput) (*models.Scheme, error) {
	if actor.Role != models.RoleAdmin {
		return nil, apperrors.ErrUnauthorized
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, &apperrors.DomainError{Code: "INVALID_INPUT", Message: "scheme name is required"}
	}
	if input.Price < 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if input.CommissionRate < 0 || input.CommissionRate > 100 {
		return nil, &apperrors.DomainError{Code: "INVALID_INPUT", Message: "commission rate must be between 0 and 100"}
	}

	scheme := &models.Scheme{
		Name:           strings.TrimSpace(input.Name),
		Description:    input.Description,
		Category:       input.Category,
		Price:          input.Price,
		CommissionRate: input.CommissionRate,
		IsFree:         input.IsFree,
		IsActive:       true,
	}
	if err := s.schemes.Create(scheme); err != nil {
		return nil, err
	}
	return scheme, nil
}

func (s *service) Update(ctx context.Context, actor models.UserClaims, id uint, input UpdateInput) (*models.Scheme, error) {
	if actor.Role != models.RoleAdmin {
		return nil, apperrors.ErrUnauthorized
	}

	scheme, err := s.schemes.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrSchemeNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, &apperrors.DomainError{Code: "INVALID_INPUT", Message: "scheme name is required"}
		}
		scheme.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		scheme.Description = *input.Description
	}
	if input.Category != nil {
		scheme.Category = *input.Category
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperrors.ErrInvalidAmount
		}
		scheme.Price = *input.Price
	}
	if input.CommissionRate != nil {
		if *input.CommissionRate < 0 || *input.CommissionRate > 100 {
			return nil, &apperrors.DomainError{Code: "INVALID_INPUT", Message: "commission rate must be between 0 and 100"}
		}
		scheme.CommissionRate = *input.CommissionRate
	}
	if input.IsFree != nil {
		scheme.IsFree = *input.IsFree
	}
	if input.IsActive != nil {
		// Deactivation hides the scheme from submission; applications already
		// in flight keep the price and rate snapshotted on them.
		scheme.IsActive = *input.IsActive
	}

	if err := s.schemes.Update(scheme); err != nil {
		return nil, err
	}
	return scheme, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.Scheme, error) {
	scheme, err := s.schemes.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrSchemeNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return scheme, nil
}

func (s *service) List(ctx context.Context, role string) ([]models.Scheme, error) {
	return s.schemes.List(ctx, models.IsReviewer(role))
}
