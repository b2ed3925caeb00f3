package domain

import "time"

// Session is a row of the control database's sesiones table. The token is the
// opaque value handed to the browser as a cookie; DatabaseID binds every
// subsequent request of this session to one tenant database and never changes
// after creation.
type Session struct {
	ID           int64     `db:"id" json:"-"`
	Token        string    `db:"token" json:"-"`
	UserID       int64     `db:"usuario_id" json:"user_id"`
	DatabaseID   string    `db:"database_name" json:"database_id"`
	CreatedAt    time.Time `db:"fecha_inicio" json:"created_at"`
	LastAccessAt time.Time `db:"fecha_ultimo_acceso" json:"last_access_at"`
	ExpiresAt    time.Time `db:"fecha_expiracion" json:"expires_at"`
	IP           string    `db:"ip_address" json:"-"`
	UserAgent    string    `db:"user_agent" json:"-"`
	Active       bool      `db:"activa" json:"-"`
}

// ValidationState tags the outcome of validating a session token.
type ValidationState int

const (
	// SessionInvalidState covers unknown tokens and tokens already closed or
	// swept. Invalid and expired are terminal: neither ever turns valid again.
	SessionInvalidState ValidationState = iota
	SessionExpiredState
	SessionValidState
)

func (s ValidationState) String() string {
	switch s {
	case SessionValidState:
		return "valid"
	case SessionExpiredState:
		return "expired"
	default:
		return "invalid"
	}
}

// ValidationOutcome is the result of SessionService.Validate. Session is only
// set when State is SessionValidState, with the renewed expiry already applied.
type ValidationOutcome struct {
	State   ValidationState
	Session *Session
}
