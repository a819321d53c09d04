package dto

import (
	"time"

	"github.com/yukikurage/crm-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// MemberDTO represents an organization membership in API responses
type MemberDTO struct {
	UserID   uint64            `json:"user_id"`
	Role     models.MemberRole `json:"role"`
	JoinedAt time.Time         `json:"joined_at"`
	User     *UserDTO          `json:"user,omitempty"`
}

// OrganizationWithRoleDTO is an organization annotated with the caller's role
type OrganizationWithRoleDTO struct {
	OrganizationDTO
	Role models.MemberRole `json:"role"`
}

// OrganizationDetailResponse is the full organization view with members
type OrganizationDetailResponse struct {
	Organization OrganizationDTO `json:"organization"`
	Members      []MemberDTO     `json:"members"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}
}

// ToOrganizationDTO converts an Organization model to OrganizationDTO
func ToOrganizationDTO(org models.Organization) OrganizationDTO {
	return OrganizationDTO{
		ID:        org.ID,
		Name:      org.Name,
		CreatedAt: org.CreatedAt,
	}
}

// ToMemberDTO converts an OrganizationMember model to MemberDTO
func ToMemberDTO(member models.OrganizationMember) MemberDTO {
	dto := MemberDTO{
		UserID:   member.UserID,
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}

	// Include user if preloaded
	if member.User.ID != 0 {
		user := ToUserDTO(member.User)
		dto.User = &user
	}

	return dto
}

// ToOrganizationListResponse converts memberships to organizations annotated
// with the caller's role in each
func ToOrganizationListResponse(memberships []models.OrganizationMember) []OrganizationWithRoleDTO {
	orgs := make([]OrganizationWithRoleDTO, len(memberships))
	for i, m := range memberships {
		orgs[i] = OrganizationWithRoleDTO{
			OrganizationDTO: ToOrganizationDTO(m.Organization),
			Role:            m.Role,
		}
	}
	return orgs
}

// ToOrganizationDetailResponse converts an organization and its members
func ToOrganizationDetailResponse(org models.Organization, members []models.OrganizationMember) OrganizationDetailResponse {
	memberDTOs := make([]MemberDTO, len(members))
	for i, m := range members {
		memberDTOs[i] = ToMemberDTO(m)
	}
	return OrganizationDetailResponse{
		Organization: ToOrganizationDTO(org),
		Members:      memberDTOs,
	}
}
