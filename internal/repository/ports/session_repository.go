package ports

import (
	"context"
	"time"

	"github.com/techind/novalink-admin/internal/domain"
)

// SessionRepository persists sessions in the control database.
type SessionRepository interface {
	// EnsureSchema idempotently creates the session table and token index.
	// Safe to call on every access path.
	EnsureSchema(ctx context.Context) error
	Insert(ctx context.Context, session *domain.Session) error
	// SweepExpired marks every session whose deadline passed before now as
	// inactive.
	SweepExpired(ctx context.Context, now time.Time) error
	// FindByToken returns sql.ErrNoRows when the token is unknown.
	FindByToken(ctx context.Context, token string) (*domain.Session, error)
	// Extend pushes the expiry window forward for an active session.
	Extend(ctx context.Context, token string, lastAccess, expiresAt time.Time) error
	// Deactivate closes a session unconditionally. A missing token is not an
	// error.
	Deactivate(ctx context.Context, token string) error
}
