package models

import "time"

type Task struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	DealID      uint64     `gorm:"not null;index" json:"deal_id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	DueDate     *time.Time `json:"due_date"`
	IsDone      bool       `gorm:"not null;default:false" json:"is_done"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Deal Deal `gorm:"foreignKey:DealID" json:"deal,omitempty"`
}
