package repository

import (
	"context"

	"dainiki/internal/models"

	"gorm.io/gorm"
)

// LoginHistoryRepository appends to and reads the login audit trail.
// Records are never updated or deleted.
type LoginHistoryRepository interface {
	Record(ctx context.Context, rec *models.LoginHistory) error
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.LoginHistory, error)
}

type loginHistoryRepository struct {
	db *gorm.DB
}

// NewLoginHistoryRepository returns a new LoginHistoryRepository implementation.
func NewLoginHistoryRepository(db *gorm.DB) LoginHistoryRepository {
	return &loginHistoryRepository{db: db}
}

func (r *loginHistoryRepository) Record(ctx context.Context, rec *models.LoginHistory) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *loginHistoryRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.LoginHistory, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	var recs []models.LoginHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("login_time DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return recs, nil
}
