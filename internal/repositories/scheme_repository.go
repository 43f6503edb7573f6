package repositories

import (
	"context"
	"errors"
	"fmt"

	"sevapoint/internal/models"

	"gorm.io/gorm"
)

type SchemeRepository interface {
	Create(scheme *models.Scheme) error
	GetByID(id uint) (*models.Scheme, error)
	// GetActiveByID returns ErrSchemeNotFound for inactive schemes too;
	// submission treats both the same way.
	GetActiveByID(id uint) (*models.Scheme, error)
	List(ctx context.Context, includeInactive bool) ([]models.Scheme, error)
	Update(scheme *models.Scheme) error
}

type schemeRepository struct {
	db *gorm.DB
}

func NewSchemeRepository(db *gorm.DB) SchemeRepository {
	return &schemeRepository{db: db}
}

func (r *schemeRepository) Create(scheme *models.Scheme) error {
	if err := r.db.Create(scheme).Error; err != nil {
		return fmt.Errorf("failed to create scheme: %w", err)
	}
	return nil
}

func (r *schemeRepository) GetByID(id uint) (*models.Scheme, error) {
	var scheme models.Scheme
	if err := r.db.First(&scheme, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchemeNotFound
		}
		return nil, fmt.Errorf("failed to get scheme: %w", err)
	}
	return &scheme, nil
}

func (r *schemeRepository) GetActiveByID(id uint) (*models.Scheme, error) {
	var scheme models.Scheme
	err := r.db.Where("id = ? AND is_active = ?", id, true).First(&scheme).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchemeNotFound
		}
		return nil, fmt.Errorf("failed to get scheme: %w", err)
	}
	return &scheme, nil
}

func (r *schemeRepository) List(ctx context.Context, includeInactive bool) ([]models.Scheme, error) {
	var schemes []models.Scheme
	query := r.db.WithContext(ctx).Order("name")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&schemes).Error; err != nil {
		return nil, fmt.Errorf("failed to list schemes: %w", err)
	}
	return schemes, nil
}

func (r *schemeRepository) Update(scheme *models.Scheme) error {
	if err := r.db.Save(scheme).Error; err != nil {
		return fmt.Errorf("failed to update scheme: %w", err)
	}
	return nil
}
