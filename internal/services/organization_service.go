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
	ErrOrganizationNotFound    = fmt.Errorf("organization not found: %w", models.ErrNotFound)
	ErrInvalidOrganizationName = fmt.Errorf("organization name cannot be empty: %w", models.ErrBusinessRuleViolation)
	ErrMemberNotFound          = fmt.Errorf("organization member not found: %w", models.ErrNotFound)
	ErrAlreadyMember           = fmt.Errorf("user is already a member of this organization: %w", models.ErrBusinessRuleViolation)
	ErrInvalidRole             = fmt.Errorf("invalid role: %w", models.ErrBusinessRuleViolation)
	ErrMemberManagementDenied  = fmt.Errorf("only owners and admins can manage members: %w", models.ErrPermissionDenied)
	ErrModifyOwnMembership     = fmt.Errorf("cannot modify own membership: %w", models.ErrPermissionDenied)
	ErrLastOwner               = fmt.Errorf("organization must retain an owner: %w", models.ErrBusinessRuleViolation)
	ErrDeleteRequiresOwner     = fmt.Errorf("only organization owners can delete the organization: %w", models.ErrPermissionDenied)
)

// OrganizationService provides business logic for organization and
// membership operations.
type OrganizationService struct {
	orgRepo  repository.OrganizationRepository
	userRepo repository.UserRepository
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(orgRepo repository.OrganizationRepository, userRepo repository.UserRepository) *OrganizationService {
	return &OrganizationService{
		orgRepo:  orgRepo,
		userRepo: userRepo,
	}
}

// CreateOrganization creates a new organization with the creator as its
// first owner, atomically.
func (s *OrganizationService) CreateOrganization(name string, creatorID uint64) (*models.Organization, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidOrganizationName
	}

	org := &models.Organization{Name: strings.TrimSpace(name)}

	if err := s.orgRepo.CreateWithOwner(org, creatorID); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	return org, nil
}

// ListOrganizationsForUser returns memberships (with organizations) the user
// belongs to.
func (s *OrganizationService) ListOrganizationsForUser(userID uint64) ([]models.OrganizationMember, error) {
	memberships, err := s.orgRepo.ListMembersByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return memberships, nil
}

// GetOrganizationWithMembers returns an organization and all of its members.
func (s *OrganizationService) GetOrganizationWithMembers(orgID uint64) (*models.Organization, []models.OrganizationMember, error) {
	org, err := s.orgRepo.FindByID(orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrOrganizationNotFound
		}
		return nil, nil, fmt.Errorf("failed to find organization: %w", err)
	}

	members, err := s.orgRepo.ListMembers(orgID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list organization members: %w", err)
	}

	return org, members, nil
}

// InviteMember adds a user to the organization with the given role.
// Owner/admin only.
func (s *OrganizationService) InviteMember(ctx authz.Context, targetUserID uint64, role models.MemberRole) (*models.OrganizationMember, error) {
	if !ctx.IsOwnerOrAdmin() {
		return nil, ErrMemberManagementDenied
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	if _, err := s.userRepo.FindByID(targetUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := s.orgRepo.FindMember(ctx.OrganizationID, targetUserID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.OrganizationMember{
		OrganizationID: ctx.OrganizationID,
		UserID:         targetUserID,
		Role:           role,
		JoinedAt:       time.Now(),
	}

	if err := s.orgRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}

// ChangeMemberRole changes a member's role. Owner/admin only; a principal
// cannot change their own role, and the last owner cannot be demoted.
func (s *OrganizationService) ChangeMemberRole(ctx authz.Context, targetUserID uint64, newRole models.MemberRole) (*models.OrganizationMember, error) {
	if !ctx.IsOwnerOrAdmin() {
		return nil, ErrMemberManagementDenied
	}
	if targetUserID == ctx.UserID {
		return nil, ErrModifyOwnMembership
	}
	if !newRole.Valid() {
		return nil, ErrInvalidRole
	}

	member, err := s.orgRepo.FindMember(ctx.OrganizationID, targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find organization member: %w", err)
	}

	if member.Role == models.RoleOwner && newRole != models.RoleOwner {
		if err := s.ensureNotLastOwner(ctx.OrganizationID); err != nil {
			return nil, err
		}
	}

	if err := s.orgRepo.UpdateMemberRole(ctx.OrganizationID, targetUserID, newRole); err != nil {
		return nil, fmt.Errorf("failed to update member role: %w", err)
	}

	member.Role = newRole
	return member, nil
}

// RemoveMember removes a member from the organization. Owner/admin only; a
// principal cannot remove themselves, and the last owner cannot be removed.
func (s *OrganizationService) RemoveMember(ctx authz.Context, targetUserID uint64) error {
	if !ctx.IsOwnerOrAdmin() {
		return ErrMemberManagementDenied
	}
	if targetUserID == ctx.UserID {
		return ErrModifyOwnMembership
	}

	member, err := s.orgRepo.FindMember(ctx.OrganizationID, targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find organization member: %w", err)
	}

	if member.Role == models.RoleOwner {
		if err := s.ensureNotLastOwner(ctx.OrganizationID); err != nil {
			return err
		}
	}

	if err := s.orgRepo.RemoveMember(ctx.OrganizationID, targetUserID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// DeleteOrganization removes an organization and everything in it.
// Owner only.
func (s *OrganizationService) DeleteOrganization(ctx authz.Context) error {
	if !ctx.IsOwner() {
		return ErrDeleteRequiresOwner
	}

	if _, err := s.orgRepo.FindByID(ctx.OrganizationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrganizationNotFound
		}
		return fmt.Errorf("failed to find organization: %w", err)
	}

	if err := s.orgRepo.Delete(ctx.OrganizationID); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	return nil
}

func (s *OrganizationService) ensureNotLastOwner(orgID uint64) error {
	owners, err := s.orgRepo.CountMembersByRole(orgID, models.RoleOwner)
	if err != nil {
		return fmt.Errorf("failed to count owners: %w", err)
	}
	if owners <= 1 {
		return ErrLastOwner
	}
	return nil
}
