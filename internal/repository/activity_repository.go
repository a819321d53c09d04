package repository

import (
	"github.com/yukikurage/crm-api/internal/models"
	"gorm.io/gorm"
)

// GormActivityRepository is a GORM implementation of ActivityRepository.
// The log is append-only: there is deliberately no update or delete here.
type GormActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &GormActivityRepository{db: db}
}

// Create appends an activity record
func (r *GormActivityRepository) Create(activity *models.Activity) error {
	return r.db.Create(activity).Error
}

// ListByDeal returns a deal's activities in chronological order
func (r *GormActivityRepository) ListByDeal(dealID uint64) ([]models.Activity, error) {
	var activities []models.Activity
	if err := r.db.Preload("Author").
		Where("deal_id = ?", dealID).
		Order("created_at ASC, id ASC").
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}
