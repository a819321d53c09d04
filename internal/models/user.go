package models

import "time"

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Memberships   []OrganizationMember `gorm:"foreignKey:UserID" json:"-"`
	OwnedContacts []Contact            `gorm:"foreignKey:OwnerID" json:"-"`
	OwnedDeals    []Deal               `gorm:"foreignKey:OwnerID" json:"-"`
}
