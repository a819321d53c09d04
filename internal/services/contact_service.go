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
	ErrContactNotFound     = fmt.Errorf("contact not found: %w", models.ErrNotFound)
	ErrContactNameRequired = fmt.Errorf("contact name is required: %w", models.ErrBusinessRuleViolation)
	ErrContactHasDeals     = fmt.Errorf("contact has existing deals: %w", models.ErrBusinessRuleViolation)
)

// ContactService handles contact business logic.
type ContactService struct {
	contactRepo repository.ContactRepository
	dealRepo    repository.DealRepository
}

// NewContactService creates a new ContactService.
func NewContactService(contactRepo repository.ContactRepository, dealRepo repository.DealRepository) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		dealRepo:    dealRepo,
	}
}

// CreateContactInput represents input for creating a contact.
type CreateContactInput struct {
	Name  string
	Email *string
	Phone *string
}

// CreateContact creates a contact owned by the acting user.
func (s *ContactService) CreateContact(ctx authz.Context, input CreateContactInput) (*models.Contact, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrContactNameRequired
	}

	contact := &models.Contact{
		OrganizationID: ctx.OrganizationID,
		OwnerID:        ctx.UserID,
		Name:           strings.TrimSpace(input.Name),
		Email:          input.Email,
		Phone:          input.Phone,
	}

	if err := s.contactRepo.Create(contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	return contact, nil
}

// GetContact returns a contact within the principal's organization.
func (s *ContactService) GetContact(ctx authz.Context, contactID uint64) (*models.Contact, error) {
	contact, err := s.contactRepo.FindByIDInOrg(contactID, ctx.OrganizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}
	return contact, nil
}

// UpdateContactInput represents input for updating a contact.
type UpdateContactInput struct {
	Name  *string
	Email *string
	Phone *string
}

// UpdateContact updates a contact. Members can only update their own.
func (s *ContactService) UpdateContact(ctx authz.Context, contactID uint64, input UpdateContactInput) (*models.Contact, error) {
	contact, err := s.GetContact(ctx, contactID)
	if err != nil {
		return nil, err
	}

	if err := ctx.CheckOwnership(contact.OwnerID); err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrContactNameRequired
		}
		contact.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		contact.Email = input.Email
	}
	if input.Phone != nil {
		contact.Phone = input.Phone
	}

	if err := s.contactRepo.Update(contact); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	return contact, nil
}

// DeleteContact deletes a contact. Members can only delete their own, and a
// contact referenced by any deal cannot be deleted.
func (s *ContactService) DeleteContact(ctx authz.Context, contactID uint64) error {
	contact, err := s.GetContact(ctx, contactID)
	if err != nil {
		return err
	}

	if err := ctx.CheckOwnership(contact.OwnerID); err != nil {
		return err
	}

	count, err := s.dealRepo.CountByContact(contactID)
	if err != nil {
		return fmt.Errorf("failed to count contact deals: %w", err)
	}
	if count > 0 {
		return ErrContactHasDeals
	}

	if err := s.contactRepo.Delete(contactID); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	return nil
}

// ListContactsInput represents filters for listing contacts.
type ListContactsInput struct {
	Search   string
	Page     int
	PageSize int
}

// ListContacts returns contacts visible to the principal. Members see only
// contacts they own.
func (s *ContactService) ListContacts(ctx authz.Context, input ListContactsInput) ([]models.Contact, int64, error) {
	filter := repository.ContactFilter{
		OrganizationID: ctx.OrganizationID,
		OwnerID:        ctx.OwnerScope(),
		Search:         input.Search,
		Page:           input.Page,
		PageSize:       input.PageSize,
	}

	contacts, total, err := s.contactRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contacts: %w", err)
	}

	return contacts, total, nil
}
