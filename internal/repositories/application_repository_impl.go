package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sevapoint/internal/models"

	"gorm.io/gorm"
)

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(app *models.Application) error {
	if err := r.db.Create(app).Error; err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

func (r *applicationRepository) GetByID(id uint) (*models.Application, error) {
	var app models.Application
	err := r.db.Preload("Scheme").Preload("User").First(&app, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return &app, nil
}

func (r *applicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]models.Application, int64, error) {
	var apps []models.Application
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Application{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	err := query.Preload("Scheme").
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&apps).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, total, nil
}

func (r *applicationRepository) TransitionStatus(id uint, from, to string, updates map[string]interface{}) (bool, error) {
	values := map[string]interface{}{"status": to}
	for k, v := range updates {
		values[k] = v
	}
	result := r.db.Model(&models.Application{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if result.Error != nil {
		return false, fmt.Errorf("failed to transition application: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *applicationRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Application{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete application: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *applicationRepository) DeleteTerminalBefore(cutoff time.Time) (int64, error) {
	result := r.db.
		Where("created_at < ? AND status IN ?", cutoff,
			[]string{models.ApplicationStatusRejected, models.ApplicationStatusCompleted}).
		Delete(&models.Application{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old applications: %w", result.Error)
	}
	return result.RowsAffected, nil
}
