package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-api/internal/authz"
	"github.com/yukikurage/crm-api/internal/constants"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/repository"
)

// RequireOrganizationContext resolves the caller's membership in the
// organization named by the X-Organization-ID header and stores the resulting
// authorization context. CRM resource routes use this; the header picks the
// active organization for users belonging to several.
func RequireOrganizationContext(orgRepo repository.OrganizationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgIDStr := c.GetHeader(constants.HeaderOrganizationID)
		if orgIDStr == "" {
			apierrors.BadRequest(c, "Missing "+constants.HeaderOrganizationID+" header")
			c.Abort()
			return
		}

		resolveOrganizationContext(c, orgRepo, orgIDStr)
	}
}

// RequireOrganizationPath resolves membership for organization management
// routes, where the organization ID is a path parameter.
func RequireOrganizationPath(orgRepo repository.OrganizationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		resolveOrganizationContext(c, orgRepo, c.Param("id"))
	}
}

func resolveOrganizationContext(c *gin.Context, orgRepo repository.OrganizationRepository, orgIDStr string) {
	orgID, err := strconv.ParseUint(orgIDStr, 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid organization ID")
		c.Abort()
		return
	}

	userID, exists := GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		c.Abort()
		return
	}

	authCtx, err := authz.Resolve(orgRepo, userID, orgID)
	if err != nil {
		if errors.Is(err, models.ErrNotAMember) {
			apierrors.Forbidden(c, "Not a member of this organization")
		} else {
			apierrors.InternalError(c, "")
		}
		c.Abort()
		return
	}

	c.Set(constants.ContextKeyAuthContext, authCtx)
	c.Next()
}

// GetAuthContext retrieves the resolved authorization context
func GetAuthContext(c *gin.Context) (authz.Context, bool) {
	value, exists := c.Get(constants.ContextKeyAuthContext)
	if !exists {
		return authz.Context{}, false
	}

	authCtx, ok := value.(authz.Context)
	return authCtx, ok
}
