package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-api/internal/dto"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/middleware"
	"github.com/yukikurage/crm-api/internal/services"
	"github.com/yukikurage/crm-api/internal/utils"
)

// ContactHandler coordinates contact HTTP handlers.
type ContactHandler struct {
	contactService *services.ContactService
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contactService *services.ContactService) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
	}
}

// CreateContact creates a new contact.
func (h *ContactHandler) CreateContact(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	type CreateContactRequest struct {
		Name  string  `json:"name" binding:"required,max=255"`
		Email *string `json:"email" binding:"omitempty,email"`
		Phone *string `json:"phone" binding:"omitempty,max=50"`
	}

	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	contact, err := h.contactService.CreateContact(authCtx, services.CreateContactInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		apierrors.FromDomain(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToContactDTO(*contact))
}

// GetContact returns a single contact.
func (h *ContactHandler) GetContact(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	contactID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid contact ID")
		return
	}

	contact, err := h.contactService.GetContact(authCtx, contactID)
	if err != nil {
		apierrors.FromDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToContactDTO(*contact))
}

// UpdateContact updates a contact's fields.
func (h *ContactHandler) UpdateContact(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	contactID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid contact ID")
		return
	}

	type UpdateContactRequest struct {
		Name  *string `json:"name" binding:"omitempty,max=255"`
		Email *string `json:"email" binding:"omitempty,email"`
		Phone *string `json:"phone" binding:"omitempty,max=50"`
	}

	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	contact, err := h.contactService.UpdateContact(authCtx, contactID, services.UpdateContactInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		apierrors.FromDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToContactDTO(*contact))
}

// DeleteContact deletes a contact with no attached deals.
func (h *ContactHandler) DeleteContact(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	contactID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid contact ID")
		return
	}

	if err := h.contactService.DeleteContact(authCtx, contactID); err != nil {
		apierrors.FromDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Contact deleted successfully",
	})
}

// ListContacts returns contacts visible to the caller, with optional search.
func (h *ContactHandler) ListContacts(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	contacts, total, err := h.contactService.ListContacts(authCtx, services.ListContactsInput{
		Search:   c.Query("search"),
		Page:     params.Page,
		PageSize: params.Limit,
	})
	if err != nil {
		apierrors.FromDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToContactListResponse(contacts, params.Page, params.Limit, total))
}
