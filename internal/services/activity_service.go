package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/crm-api/internal/authz"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/repository"
	"gorm.io/gorm"
)

var ErrCommentTextRequired = fmt.Errorf("comment text is required: %w", models.ErrBusinessRuleViolation)

// ActivityService exposes a deal's append-only timeline. System entries for
// status, stage and task changes are written by the deal and task services;
// this service only appends user comments and reads the log.
type ActivityService struct {
	activityRepo repository.ActivityRepository
	dealRepo     repository.DealRepository
}

// NewActivityService creates a new ActivityService.
func NewActivityService(activityRepo repository.ActivityRepository, dealRepo repository.DealRepository) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		dealRepo:     dealRepo,
	}
}

// AddComment appends a comment to a deal's timeline.
func (s *ActivityService) AddComment(ctx authz.Context, dealID uint64, text string) (*models.Activity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrCommentTextRequired
	}

	if err := s.checkDealAccess(ctx, dealID); err != nil {
		return nil, err
	}

	activity := models.NewCommentActivity(dealID, ctx.UserID, strings.TrimSpace(text))
	if err := s.activityRepo.Create(&activity); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return &activity, nil
}

// ListActivities returns a deal's activities oldest first.
func (s *ActivityService) ListActivities(ctx authz.Context, dealID uint64) ([]models.Activity, error) {
	if err := s.checkDealAccess(ctx, dealID); err != nil {
		return nil, err
	}

	activities, err := s.activityRepo.ListByDeal(dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	return activities, nil
}

func (s *ActivityService) checkDealAccess(ctx authz.Context, dealID uint64) error {
	deal, err := s.dealRepo.FindByIDInOrg(dealID, ctx.OrganizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDealNotFound
		}
		return fmt.Errorf("failed to find deal: %w", err)
	}
	return ctx.CheckOwnership(deal.OwnerID)
}
