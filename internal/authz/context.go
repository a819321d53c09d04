package authz

import (
	"errors"
	"fmt"

	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/repository"
	"gorm.io/gorm"
)

// Context is the principal an operation runs under: the acting user, the
// target organization, and the user's resolved role in it. Every
// authorization decision in the services is a function of these predicates
// plus a resource's owner ID; no other package compares roles directly.
type Context struct {
	UserID         uint64
	OrganizationID uint64
	Role           models.MemberRole
}

// IsOwner reports whether the principal holds the top role.
func (c Context) IsOwner() bool {
	return c.Role == models.RoleOwner
}

// IsOwnerOrAdmin reports whether the principal may manage memberships and
// roll back deal stages.
func (c Context) IsOwnerOrAdmin() bool {
	return c.Role == models.RoleOwner || c.Role == models.RoleAdmin
}

// IsManagerOrAbove reports whether the principal sees all resources in the
// organization rather than only their own.
func (c Context) IsManagerOrAbove() bool {
	return c.Role == models.RoleOwner || c.Role == models.RoleAdmin || c.Role == models.RoleManager
}

// IsMember reports whether the principal is on the lowest tier, with
// ownership-scoped access only.
func (c Context) IsMember() bool {
	return c.Role == models.RoleMember
}

// OwnerScope translates the role into an optional ownership constraint for
// list and aggregate queries: nil means unrestricted, otherwise results must
// be owned by the returned user ID.
func (c Context) OwnerScope() *uint64 {
	if c.IsManagerOrAbove() {
		return nil
	}
	userID := c.UserID
	return &userID
}

// CheckOwnership authorizes access to a single owned resource. Managers and
// above pass unconditionally; members pass only for their own resources.
func (c Context) CheckOwnership(resourceOwnerID uint64) error {
	if c.IsManagerOrAbove() {
		return nil
	}
	if c.UserID == resourceOwnerID {
		return nil
	}
	return fmt.Errorf("you can only access your own resources: %w", models.ErrPermissionDenied)
}

// Resolve builds the authorization context for a (user, organization) pair.
// A user with no membership in the organization gets models.ErrNotAMember.
func Resolve(orgRepo repository.OrganizationRepository, userID, organizationID uint64) (Context, error) {
	member, err := orgRepo.FindMember(organizationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Context{}, models.ErrNotAMember
		}
		return Context{}, fmt.Errorf("failed to resolve membership: %w", err)
	}

	return Context{
		UserID:         userID,
		OrganizationID: organizationID,
		Role:           member.Role,
	}, nil
}
