package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-api/internal/dto"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/middleware"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/services"
	"github.com/yukikurage/crm-api/internal/utils"
)

// DealHandler coordinates deal and deal-timeline HTTP handlers.
type DealHandler struct {
	dealService     *services.DealService
	activityService *services.ActivityService
}

// NewDealHandler creates a new DealHandler.
func NewDealHandler(dealService *services.DealService, activityService *services.ActivityService) *DealHandler {
	return &DealHandler{
		dealService:     dealService,
		activityService: activityService,
	}
}

// CreateDeal creates a new deal.
func (h *DealHandler) CreateDeal(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	type CreateDealRequest struct {
		Title     string  `json:"title" binding:"required,max=255"`
		Amount    float64 `json:"amount" binding:"omitempty,gte=0"`
		Currency  string  `json:"currency" binding:"omitempty,len=3"`
		ContactID *uint64 `json:"contact_id"`
	}

	var req CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	deal, err := h.dealService.CreateDeal(authCtx, services.CreateDealInput{
		Title:     req.Title,
		Amount:    req.Amount,
		Currency:  req.Currency,
		ContactID: req.ContactID,
	})
	if err != nil {
		apierrors.FromDomain(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToDealDTO(*deal))
}

// GetDeal returns a single deal with its contact and owner.
func (h *DealHandler) GetDeal(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	dealID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid deal ID")
		return
	}

	deal, err := h.dealService.GetDeal(authCtx, dealID, "Contact", "Owner")
	if err != nil {
		apierrors.FromDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDealDTO(*deal))
}

// UpdateDeal applies partial updates, including status and stage transitions.
func (h *DealHandler) UpdateDeal(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	dealID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid deal ID")
		return
	}

	type UpdateDealRequest struct {
		Title        *string  `json:"title" binding:"omitempty,max=255"`
		Amount       *float64 `json:"amount" binding:"omitempty,gte=0"`
		Currency     *string  `json:"currency" binding:"omitempty,len=3"`
		Status       *string  `json:"status"`
		Stage        *string  `json:"stage"`
		ContactID    *uint64  `json:"contact_id"`
		ClearContact bool     `json:"clear_contact"`
	}

	var req UpdateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateDealInput{
		Title:        req.Title,
		Amount:       req.Amount,
		Currency:     req.Currency,
		ContactID:    req.ContactID,
		ClearContact: req.ClearContact,
	}
	if req.Status != nil {
		status := models.DealStatus(*req.Status)
		input.Status = &status
	}
	if req.Stage != nil {
		stage := models.DealStage(*req.Stage)
		input.Stage = &stage
	}

	deal, err := h.dealService.UpdateDeal(authCtx, dealID, input)
	if err != nil {
		apierrors.FromDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDealDTO(*deal))
}

// DeleteDeal deletes a deal with its tasks and activities.
func (h *DealHandler) DeleteDeal(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	dealID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid deal ID")
		return
	}

	if err := h.dealService.DeleteDeal(authCtx, dealID); err != nil {
		apierrors.FromDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Deal deleted successfully",
	})
}

// ListDeals returns deals visible to the caller with filtering and ordering.
func (h *DealHandler) ListDeals(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	input := services.ListDealsInput{
		OrderBy:    c.DefaultQuery("order_by", "created_at"),
		Descending: c.DefaultQuery("order", "desc") == "desc",
		Page:       params.Page,
		PageSize:   params.Limit,
	}

	for _, status := range c.QueryArray("status") {
		input.Statuses = append(input.Statuses, models.DealStatus(status))
	}
	if stageStr := c.Query("stage"); stageStr != "" {
		stage := models.DealStage(stageStr)
		input.Stage = &stage
	}
	if minStr := c.Query("min_amount"); minStr != "" {
		minAmount, err := strconv.ParseFloat(minStr, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid min_amount")
			return
		}
		input.MinAmount = &minAmount
	}
	if maxStr := c.Query("max_amount"); maxStr != "" {
		maxAmount, err := strconv.ParseFloat(maxStr, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid max_amount")
			return
		}
		input.MaxAmount = &maxAmount
	}

	deals, total, err := h.dealService.ListDeals(authCtx, input)
	if err != nil {
		apierrors.FromDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDealListResponse(deals, params.Page, params.Limit, total))
}

// ListDealStatuses returns the allowed status and stage values.
func (h *DealHandler) ListDealStatuses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"statuses": models.AllDealStatuses(),
		"stages":   models.AllDealStages(),
	})
}

// AddComment appends a comment to a deal's timeline.
func (h *DealHandler) AddComment(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	dealID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid deal ID")
		return
	}

	type CommentRequest struct {
		Text string `json:"text" binding:"required,max=2000"`
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	activity, err := h.activityService.AddComment(authCtx, dealID, req.Text)
	if err != nil {
		apierrors.FromDomain(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToActivityDTO(*activity))
}

// ListActivities returns a deal's timeline oldest first.
func (h *DealHandler) ListActivities(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	dealID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid deal ID")
		return
	}

	activities, err := h.activityService.ListActivities(authCtx, dealID)
	if err != nil {
		apierrors.FromDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activities": dto.ToActivityListResponse(activities),
	})
}
