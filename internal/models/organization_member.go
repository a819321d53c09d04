package models

import "time"

type MemberRole string

const (
	RoleOwner   MemberRole = "owner"
	RoleAdmin   MemberRole = "admin"
	RoleManager MemberRole = "manager"
	RoleMember  MemberRole = "member"
)

// Valid reports whether the role is one of the four known values.
func (r MemberRole) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

// OrganizationMember links a user to an organization with a role.
// An organization always keeps at least one owner membership.
type OrganizationMember struct {
	OrganizationID uint64     `gorm:"primarykey" json:"organization_id"`
	UserID         uint64     `gorm:"primarykey" json:"user_id"`
	Role           MemberRole `gorm:"type:varchar(20);not null" json:"role"`
	JoinedAt       time.Time  `json:"joined_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	User         User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
