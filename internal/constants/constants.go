package constants

// Context keys
const (
	ContextKeyUserID      = "user_id"
	ContextKeyAuthContext = "auth_context"
)

// HeaderOrganizationID carries the tenant for organization-scoped endpoints.
const HeaderOrganizationID = "X-Organization-ID"

// SessionCookieName is the session cookie set on login.
const SessionCookieName = "crm_session"

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Auth
const MinPasswordLength = 8

// Analytics
const (
	DefaultSummaryDays = 30
	MaxSummaryDays     = 365
)
