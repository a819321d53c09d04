package models

import "time"

type DealStatus string

const (
	DealStatusNew        DealStatus = "new"
	DealStatusInProgress DealStatus = "in_progress"
	DealStatusWon        DealStatus = "won"
	DealStatusLost       DealStatus = "lost"
)

// Valid reports whether the status is a known value.
func (s DealStatus) Valid() bool {
	switch s {
	case DealStatusNew, DealStatusInProgress, DealStatusWon, DealStatusLost:
		return true
	}
	return false
}

// AllDealStatuses returns every status in declaration order.
func AllDealStatuses() []DealStatus {
	return []DealStatus{DealStatusNew, DealStatusInProgress, DealStatusWon, DealStatusLost}
}

type DealStage string

const (
	DealStageQualification DealStage = "qualification"
	DealStageProposal      DealStage = "proposal"
	DealStageNegotiation   DealStage = "negotiation"
	DealStageClosed        DealStage = "closed"
)

// StageOrder defines the pipeline position of each stage. A stage update that
// decreases the order is a rollback and needs owner/admin privileges.
var StageOrder = map[DealStage]int{
	DealStageQualification: 1,
	DealStageProposal:      2,
	DealStageNegotiation:   3,
	DealStageClosed:        4,
}

// Valid reports whether the stage is a known value.
func (s DealStage) Valid() bool {
	_, ok := StageOrder[s]
	return ok
}

// AllDealStages returns every stage in pipeline order.
func AllDealStages() []DealStage {
	return []DealStage{DealStageQualification, DealStageProposal, DealStageNegotiation, DealStageClosed}
}

type Deal struct {
	ID             uint64     `gorm:"primarykey" json:"id"`
	OrganizationID uint64     `gorm:"not null;index" json:"organization_id"`
	ContactID      *uint64    `gorm:"index" json:"contact_id"`
	OwnerID        uint64     `gorm:"not null;index" json:"owner_id"`
	Title          string     `gorm:"type:varchar(255);not null" json:"title"`
	Amount         float64    `gorm:"type:decimal(12,2);not null;default:0" json:"amount"`
	Currency       string     `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	Status         DealStatus `gorm:"type:varchar(20);not null;default:'new'" json:"status"`
	Stage          DealStage  `gorm:"type:varchar(20);not null;default:'qualification'" json:"stage"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Contact      *Contact     `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
	Owner        User         `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Tasks        []Task       `gorm:"foreignKey:DealID" json:"tasks,omitempty"`
	Activities   []Activity   `gorm:"foreignKey:DealID" json:"activities,omitempty"`
}
