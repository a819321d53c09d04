package models

import "time"

type Contact struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	OrganizationID uint64    `gorm:"not null;index" json:"organization_id"`
	OwnerID        uint64    `gorm:"not null;index" json:"owner_id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	Email          *string   `gorm:"type:varchar(255)" json:"email"`
	Phone          *string   `gorm:"type:varchar(50)" json:"phone"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Owner        User         `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Deals        []Deal       `gorm:"foreignKey:ContactID" json:"-"`
}
