package models

import "errors"

// Domain error kinds. Services wrap these with the specific rule that fired,
// so callers classify failures with errors.Is and handlers map them to HTTP
// statuses without knowing individual rules.
var (
	ErrNotAMember            = errors.New("not a member of the organization")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrBusinessRuleViolation = errors.New("business rule violation")
	ErrNotFound              = errors.New("resource not found")
)
