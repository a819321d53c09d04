package dto

import (
	"encoding/json"
	"time"

	"github.com/yukikurage/crm-api/internal/models"
)

// DealDTO represents a deal in API responses
type DealDTO struct {
	ID        uint64            `json:"id"`
	ContactID *uint64           `json:"contact_id"`
	OwnerID   uint64            `json:"owner_id"`
	Title     string            `json:"title"`
	Amount    float64           `json:"amount"`
	Currency  string            `json:"currency"`
	Status    models.DealStatus `json:"status"`
	Stage     models.DealStage  `json:"stage"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Contact   *ContactDTO       `json:"contact,omitempty"`
	Owner     *UserDTO          `json:"owner,omitempty"`
}

// DealListResponse represents a paginated list of deals
type DealListResponse struct {
	Deals      []DealDTO `json:"deals"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// ActivityDTO represents one timeline entry in API responses. The payload
// shape depends on the activity type.
type ActivityDTO struct {
	ID        uint64              `json:"id"`
	DealID    uint64              `json:"deal_id"`
	AuthorID  *uint64             `json:"author_id"`
	Type      models.ActivityType `json:"type"`
	Payload   json.RawMessage     `json:"payload"`
	CreatedAt time.Time           `json:"created_at"`
	Author    *UserDTO            `json:"author,omitempty"`
}

// ToDealDTO converts a Deal model to DealDTO
func ToDealDTO(deal models.Deal) DealDTO {
	dto := DealDTO{
		ID:        deal.ID,
		ContactID: deal.ContactID,
		OwnerID:   deal.OwnerID,
		Title:     deal.Title,
		Amount:    deal.Amount,
		Currency:  deal.Currency,
		Status:    deal.Status,
		Stage:     deal.Stage,
		CreatedAt: deal.CreatedAt,
		UpdatedAt: deal.UpdatedAt,
	}

	// Include contact if preloaded
	if deal.Contact != nil && deal.Contact.ID != 0 {
		contact := ToContactDTO(*deal.Contact)
		dto.Contact = &contact
	}

	// Include owner if preloaded
	if deal.Owner.ID != 0 {
		owner := ToUserDTO(deal.Owner)
		dto.Owner = &owner
	}

	return dto
}

// ToDealListResponse converts a slice of deals to DealListResponse
func ToDealListResponse(deals []models.Deal, page, pageSize int, totalCount int64) DealListResponse {
	items := make([]DealDTO, len(deals))
	for i, deal := range deals {
		items[i] = ToDealDTO(deal)
	}

	return DealListResponse{
		Deals:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages(totalCount, pageSize),
	}
}

// ToActivityDTO converts an Activity model to ActivityDTO
func ToActivityDTO(activity models.Activity) ActivityDTO {
	dto := ActivityDTO{
		ID:        activity.ID,
		DealID:    activity.DealID,
		AuthorID:  activity.AuthorID,
		Type:      activity.Type,
		Payload:   json.RawMessage(activity.Payload),
		CreatedAt: activity.CreatedAt,
	}

	// Include author if preloaded
	if activity.Author != nil && activity.Author.ID != 0 {
		author := ToUserDTO(*activity.Author)
		dto.Author = &author
	}

	return dto
}

// ToActivityListResponse converts a slice of activities
func ToActivityListResponse(activities []models.Activity) []ActivityDTO {
	items := make([]ActivityDTO, len(activities))
	for i, activity := range activities {
		items[i] = ToActivityDTO(activity)
	}
	return items
}
