package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/middleware"
	"github.com/yukikurage/crm-api/internal/services"
)

// AnalyticsHandler coordinates analytics HTTP handlers.
type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// GetSummary returns the per-status deal summary for the caller's
// organization. The optional days query bounds the new-deal window.
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	days := 0
	if daysStr := c.Query("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid days")
			return
		}
		days = parsed
	}

	report, err := h.analyticsService.Summary(authCtx, days)
	if err != nil {
		apierrors.FromDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetFunnel returns per-stage deal counts for the caller's organization.
func (h *AnalyticsHandler) GetFunnel(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	report, err := h.analyticsService.Funnel(authCtx)
	if err != nil {
		apierrors.FromDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
