package http

import "time"

// ErrorResponse represents a generic error payload.
type ErrorResponse struct {
	Error string `json:"error" example:"invalid company, user or password"`
}

// TenantItem is one entry of the tenant listing.
type TenantItem struct {
	ID         string `json:"id" example:"12"`
	Name       string `json:"name" example:"Industrias del Pacífico"`
	DatabaseID string `json:"database_id" example:"indpacifico"`
}

// AuthUser is the sanitized user representation returned by auth endpoints.
type AuthUser struct {
	ID          int64   `json:"id" example:"42"`
	Name        string  `json:"name" example:"jperez"`
	Description *string `json:"description,omitempty" example:"Juan Pérez"`
}

// LoginRequest carries the login form fields. Tenant is the catalog selector
// chosen on the login page, not the database name.
type LoginRequest struct {
	Tenant   string `json:"tenant" example:"12"`
	Username string `json:"username" example:"jperez"`
	Password string `json:"password" example:"secreto123"`
}

// LoginResponse is returned on successful authentication. The session token
// itself travels only in the cookie.
type LoginResponse struct {
	User               AuthUser   `json:"user"`
	Tenant             TenantItem `json:"tenant"`
	MustChangePassword bool       `json:"must_change_password" example:"false"`
	ExpiresAt          time.Time  `json:"expires_at" example:"2024-01-01T12:30:00Z"`
}

// SessionResponse describes the current session.
type SessionResponse struct {
	User      AuthUser  `json:"user"`
	Database  string    `json:"database_id" example:"indpacifico"`
	ExpiresAt time.Time `json:"expires_at" example:"2024-01-01T12:30:00Z"`
}

// ChangePasswordRequest captures the payload for password updates.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" example:"secreto123"`
	NewPassword     string `json:"new_password" example:"nuevoSecreto45"`
}

// SuccessResponse denotes a simple success flag.
type SuccessResponse struct {
	OK bool `json:"ok" example:"true"`
}
