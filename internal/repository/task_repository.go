package repository

import (
	"github.com/yukikurage/crm-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// CreateWithActivity creates the task and its TASK_CREATED audit entry
// atomically. The activity is built after insert so it can carry the task ID.
func (r *GormTaskRepository) CreateWithActivity(task *models.Task, buildActivity func(task *models.Task) models.Activity) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}

		activity := buildActivity(task)
		return tx.Create(&activity).Error
	})
}

// FindByID finds a task by ID with its deal preloaded
func (r *GormTaskRepository) FindByID(id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.Preload("Deal").First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete deletes a task
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}

// List retrieves tasks with filtering and pagination. Organization and owner
// scoping go through the owning deal.
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).
		Joins("JOIN deals ON deals.id = tasks.deal_id").
		Where("deals.organization_id = ?", filter.OrganizationID)

	if filter.DealID != nil {
		query = query.Where("tasks.deal_id = ?", *filter.DealID)
	}
	if filter.DealOwnerID != nil {
		query = query.Where("deals.owner_id = ?", *filter.DealOwnerID)
	}
	if filter.OnlyOpen {
		query = query.Where("tasks.is_done = ?", false)
	}
	if filter.DueBefore != nil {
		query = query.Where("tasks.due_date < ?", *filter.DueBefore)
	}
	if filter.DueAfter != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueAfter)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.
		Order("CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END, tasks.due_date ASC, tasks.created_at ASC").
		Scopes(paginate(filter.Page, filter.PageSize))

	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}
