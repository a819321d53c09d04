package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/crm-api/internal/authz"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound      = fmt.Errorf("task not found: %w", models.ErrNotFound)
	ErrTaskTitleRequired = fmt.Errorf("task title is required: %w", models.ErrBusinessRuleViolation)
	ErrDueDateInPast     = fmt.Errorf("due date cannot be in the past: %w", models.ErrBusinessRuleViolation)
)

// TaskService handles follow-up tasks attached to deals. A task has no owner
// of its own; access is decided by the owner of its deal.
type TaskService struct {
	taskRepo repository.TaskRepository
	dealRepo repository.DealRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, dealRepo repository.DealRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		dealRepo: dealRepo,
	}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	DealID      uint64
	Title       string
	Description *string
	DueDate     *time.Time
}

// CreateTask creates a task on a deal and appends the TASK_CREATED audit
// entry in the same transaction. A due date in the past is rejected here but
// accepted on update, so overdue tasks stay editable.
func (s *TaskService) CreateTask(ctx authz.Context, input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTaskTitleRequired
	}
	if input.DueDate != nil && input.DueDate.Before(time.Now()) {
		return nil, ErrDueDateInPast
	}

	deal, err := s.findDealForAccess(ctx, input.DealID)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		DealID:      deal.ID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		DueDate:     input.DueDate,
		IsDone:      false,
	}

	authorID := ctx.UserID
	err = s.taskRepo.CreateWithActivity(task, func(created *models.Task) models.Activity {
		return models.NewTaskCreatedActivity(created.DealID, &authorID, created.ID, created.Title)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// GetTask returns a task reachable by the principal.
func (s *TaskService) GetTask(ctx authz.Context, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.Deal.OrganizationID != ctx.OrganizationID {
		return nil, ErrTaskNotFound
	}
	if err := ctx.CheckOwnership(task.Deal.OwnerID); err != nil {
		return nil, err
	}

	return task, nil
}

// UpdateTaskInput represents input for updating a task.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	IsDone       *bool
}

// UpdateTask updates a task's fields and completion state.
func (s *TaskService) UpdateTask(ctx authz.Context, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTaskTitleRequired
		}
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = input.Description
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.IsDone != nil {
		task.IsDone = *input.IsDone
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask deletes a task.
func (s *TaskService) DeleteTask(ctx authz.Context, taskID uint64) error {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// ListTasksInput represents filters for listing tasks.
type ListTasksInput struct {
	DealID    *uint64
	OnlyOpen  bool
	DueBefore *time.Time
	DueAfter  *time.Time
	Page      int
	PageSize  int
}

// ListTasks returns tasks on deals visible to the principal. Members see only
// tasks on deals they own.
func (s *TaskService) ListTasks(ctx authz.Context, input ListTasksInput) ([]models.Task, int64, error) {
	if input.DealID != nil {
		if _, err := s.findDealForAccess(ctx, *input.DealID); err != nil {
			return nil, 0, err
		}
	}

	filter := repository.TaskFilter{
		OrganizationID: ctx.OrganizationID,
		DealID:         input.DealID,
		DealOwnerID:    ctx.OwnerScope(),
		OnlyOpen:       input.OnlyOpen,
		DueBefore:      input.DueBefore,
		DueAfter:       input.DueAfter,
		Page:           input.Page,
		PageSize:       input.PageSize,
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

func (s *TaskService) findDealForAccess(ctx authz.Context, dealID uint64) (*models.Deal, error) {
	deal, err := s.dealRepo.FindByIDInOrg(dealID, ctx.OrganizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, fmt.Errorf("failed to find deal: %w", err)
	}
	if err := ctx.CheckOwnership(deal.OwnerID); err != nil {
		return nil, err
	}
	return deal, nil
}
