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

var (
	ErrDealNotFound             = fmt.Errorf("deal not found: %w", models.ErrNotFound)
	ErrDealTitleRequired        = fmt.Errorf("deal title is required: %w", models.ErrBusinessRuleViolation)
	ErrNegativeAmount           = fmt.Errorf("amount cannot be negative: %w", models.ErrBusinessRuleViolation)
	ErrInvalidDealStatus        = fmt.Errorf("invalid deal status: %w", models.ErrBusinessRuleViolation)
	ErrInvalidDealStage         = fmt.Errorf("invalid deal stage: %w", models.ErrBusinessRuleViolation)
	ErrWonNonPositiveAmount     = fmt.Errorf("cannot close a deal as won with a non-positive amount: %w", models.ErrBusinessRuleViolation)
	ErrRollbackRequiresAdmin    = fmt.Errorf("moving a deal to an earlier stage requires owner or admin role: %w", models.ErrPermissionDenied)
	ErrContactNotInOrganization = fmt.Errorf("contact does not belong to this organization: %w", models.ErrBusinessRuleViolation)
)

// DealService implements the deal lifecycle: creation, the status and stage
// state machine, listing, and deletion. Status and stage transitions append
// audit activities atomically with the field change and invalidate the
// organization's analytics cache.
type DealService struct {
	dealRepo    repository.DealRepository
	contactRepo repository.ContactRepository
	analytics   *AnalyticsService
}

// NewDealService creates a new DealService.
func NewDealService(dealRepo repository.DealRepository, contactRepo repository.ContactRepository, analytics *AnalyticsService) *DealService {
	return &DealService{
		dealRepo:    dealRepo,
		contactRepo: contactRepo,
		analytics:   analytics,
	}
}

// CreateDealInput represents input for creating a deal.
type CreateDealInput struct {
	Title     string
	Amount    float64
	Currency  string
	ContactID *uint64
}

// CreateDeal creates a deal owned by the acting user, starting at status NEW
// and stage QUALIFICATION.
func (s *DealService) CreateDeal(ctx authz.Context, input CreateDealInput) (*models.Deal, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrDealTitleRequired
	}
	if input.Amount < 0 {
		return nil, ErrNegativeAmount
	}

	if input.ContactID != nil {
		if err := s.checkContactInOrg(*input.ContactID, ctx.OrganizationID); err != nil {
			return nil, err
		}
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "USD"
	}

	deal := &models.Deal{
		OrganizationID: ctx.OrganizationID,
		ContactID:      input.ContactID,
		OwnerID:        ctx.UserID,
		Title:          strings.TrimSpace(input.Title),
		Amount:         input.Amount,
		Currency:       currency,
		Status:         models.DealStatusNew,
		Stage:          models.DealStageQualification,
	}

	if err := s.dealRepo.Create(deal); err != nil {
		return nil, fmt.Errorf("failed to create deal: %w", err)
	}

	s.analytics.InvalidateOrganization(ctx.OrganizationID)

	return deal, nil
}

// GetDeal returns a deal within the principal's organization. Members can
// only read their own deals.
func (s *DealService) GetDeal(ctx authz.Context, dealID uint64, preload ...string) (*models.Deal, error) {
	deal, err := s.dealRepo.FindByIDInOrg(dealID, ctx.OrganizationID, preload...)
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

// UpdateDealInput represents input for updating a deal. Nil fields are left
// unchanged; ClearContact detaches the contact.
type UpdateDealInput struct {
	Title        *string
	Amount       *float64
	Currency     *string
	Status       *models.DealStatus
	Stage        *models.DealStage
	ContactID    *uint64
	ClearContact bool
}

// UpdateDeal applies field changes and status/stage transitions to a deal.
// A transition to WON requires a positive amount, and moving the stage
// backwards requires owner or admin role. All checks run against the row as
// read under the update lock, so a transition validated against one state
// cannot commit against another. Each status or stage change that actually
// alters the value appends an audit activity in the same transaction as the
// update.
func (s *DealService) UpdateDeal(ctx authz.Context, dealID uint64, input UpdateDealInput) (*models.Deal, error) {
	if input.ContactID != nil && !input.ClearContact {
		if err := s.checkContactInOrg(*input.ContactID, ctx.OrganizationID); err != nil {
			return nil, err
		}
	}

	authorID := ctx.UserID
	changed := false

	deal, err := s.dealRepo.UpdateWithActivities(dealID, ctx.OrganizationID, func(deal *models.Deal) ([]models.Activity, error) {
		if err := ctx.CheckOwnership(deal.OwnerID); err != nil {
			return nil, err
		}

		if input.Title != nil {
			if strings.TrimSpace(*input.Title) == "" {
				return nil, ErrDealTitleRequired
			}
			deal.Title = strings.TrimSpace(*input.Title)
		}
		if input.Amount != nil {
			if *input.Amount < 0 {
				return nil, ErrNegativeAmount
			}
			deal.Amount = *input.Amount
		}
		if input.Currency != nil {
			deal.Currency = strings.ToUpper(strings.TrimSpace(*input.Currency))
		}

		if input.ClearContact {
			deal.ContactID = nil
		} else if input.ContactID != nil {
			deal.ContactID = input.ContactID
		}

		var activities []models.Activity

		if input.Status != nil {
			if !input.Status.Valid() {
				return nil, ErrInvalidDealStatus
			}
			if *input.Status == models.DealStatusWon && deal.Amount <= 0 {
				return nil, ErrWonNonPositiveAmount
			}
			if *input.Status != deal.Status {
				activities = append(activities, models.NewStatusChangedActivity(deal.ID, &authorID, deal.Status, *input.Status))
				deal.Status = *input.Status
			}
		}

		if input.Stage != nil {
			if !input.Stage.Valid() {
				return nil, ErrInvalidDealStage
			}
			if models.StageOrder[*input.Stage] < models.StageOrder[deal.Stage] && !ctx.IsOwnerOrAdmin() {
				return nil, ErrRollbackRequiresAdmin
			}
			if *input.Stage != deal.Stage {
				activities = append(activities, models.NewStageChangedActivity(deal.ID, &authorID, deal.Stage, *input.Stage))
				deal.Stage = *input.Stage
			}
		}

		changed = len(activities) > 0
		return activities, nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDealNotFound
		}
		if errors.Is(err, models.ErrBusinessRuleViolation) || errors.Is(err, models.ErrPermissionDenied) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update deal: %w", err)
	}

	if changed {
		s.analytics.InvalidateOrganization(ctx.OrganizationID)
	}

	return deal, nil
}

// ListDealsInput represents filters for listing deals.
type ListDealsInput struct {
	Statuses   []models.DealStatus
	Stage      *models.DealStage
	MinAmount  *float64
	MaxAmount  *float64
	OrderBy    string
	Descending bool
	Page       int
	PageSize   int
}

// ListDeals returns deals visible to the principal. Members see only deals
// they own.
func (s *DealService) ListDeals(ctx authz.Context, input ListDealsInput) ([]models.Deal, int64, error) {
	for _, status := range input.Statuses {
		if !status.Valid() {
			return nil, 0, ErrInvalidDealStatus
		}
	}
	if input.Stage != nil && !input.Stage.Valid() {
		return nil, 0, ErrInvalidDealStage
	}

	filter := repository.DealFilter{
		OrganizationID: ctx.OrganizationID,
		OwnerID:        ctx.OwnerScope(),
		Statuses:       input.Statuses,
		Stage:          input.Stage,
		MinAmount:      input.MinAmount,
		MaxAmount:      input.MaxAmount,
		OrderBy:        input.OrderBy,
		Descending:     input.Descending,
		Page:           input.Page,
		PageSize:       input.PageSize,
	}

	deals, total, err := s.dealRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list deals: %w", err)
	}

	return deals, total, nil
}

// DeleteDeal removes a deal together with its tasks and activities. Members
// can only delete their own deals.
func (s *DealService) DeleteDeal(ctx authz.Context, dealID uint64) error {
	deal, err := s.GetDeal(ctx, dealID)
	if err != nil {
		return err
	}

	if err := s.dealRepo.Delete(deal.ID); err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}

	s.analytics.InvalidateOrganization(ctx.OrganizationID)

	return nil
}

func (s *DealService) checkContactInOrg(contactID, organizationID uint64) error {
	if _, err := s.contactRepo.FindByIDInOrg(contactID, organizationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContactNotInOrganization
		}
		return fmt.Errorf("failed to verify contact: %w", err)
	}
	return nil
}
