package dto

import (
	"time"

	"github.com/yukikurage/crm-api/internal/models"
)

// ContactDTO represents a contact in API responses
type ContactDTO struct {
	ID        uint64    `json:"id"`
	OwnerID   uint64    `json:"owner_id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Owner     *UserDTO  `json:"owner,omitempty"`
}

// ContactListResponse represents a paginated list of contacts
type ContactListResponse struct {
	Contacts   []ContactDTO `json:"contacts"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalCount int64        `json:"total_count"`
	TotalPages int          `json:"total_pages"`
}

// ToContactDTO converts a Contact model to ContactDTO
func ToContactDTO(contact models.Contact) ContactDTO {
	dto := ContactDTO{
		ID:        contact.ID,
		OwnerID:   contact.OwnerID,
		Name:      contact.Name,
		Email:     contact.Email,
		Phone:     contact.Phone,
		CreatedAt: contact.CreatedAt,
		UpdatedAt: contact.UpdatedAt,
	}

	// Include owner if preloaded
	if contact.Owner.ID != 0 {
		owner := ToUserDTO(contact.Owner)
		dto.Owner = &owner
	}

	return dto
}

// ToContactListResponse converts a slice of contacts to ContactListResponse
func ToContactListResponse(contacts []models.Contact, page, pageSize int, totalCount int64) ContactListResponse {
	items := make([]ContactDTO, len(contacts))
	for i, contact := range contacts {
		items[i] = ToContactDTO(contact)
	}

	return ContactListResponse{
		Contacts:   items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages(totalCount, pageSize),
	}
}

func totalPages(totalCount int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(totalCount) / pageSize
	if int(totalCount)%pageSize > 0 {
		pages++
	}
	return pages
}
