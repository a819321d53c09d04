package models

import "time"

// Organization is the tenant boundary. Every contact and deal carries its ID,
// and all queries are scoped by it.
type Organization struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Members  []OrganizationMember `gorm:"foreignKey:OrganizationID" json:"members,omitempty"`
	Contacts []Contact            `gorm:"foreignKey:OrganizationID" json:"-"`
	Deals    []Deal               `gorm:"foreignKey:OrganizationID" json:"-"`
}
