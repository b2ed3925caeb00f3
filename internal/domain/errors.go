package domain

import "errors"

// Authentication and session failure kinds. Handlers collapse the credential
// failures into one generic message so responses do not reveal which step
// failed; the distinct values exist for logging and tests.
var (
	ErrTenantNotFound        = errors.New("tenant not found")
	ErrConnectionUnavailable = errors.New("tenant database unavailable")
	ErrUserNotFound          = errors.New("user not found")
	ErrBadPassword           = errors.New("password mismatch")
	ErrUserInactive          = errors.New("user account inactive")
	ErrPasswordReused        = errors.New("new password matches the current one")
)
