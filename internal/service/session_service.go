package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/techind/novalink-admin/internal/domain"
	"github.com/techind/novalink-admin/internal/repository/ports"
	"github.com/techind/novalink-admin/internal/util"
)

const (
	// DefaultSessionWindow is the sliding-expiration window: every successful
	// validation pushes the deadline this far into the future.
	DefaultSessionWindow = 30 * time.Minute

	sessionTokenBytes = 32
)

// SessionService issues, renews, and closes sessions persisted in the
// control database.
type SessionService struct {
	sessions ports.SessionRepository
	window   time.Duration
	now      func() time.Time
}

func NewSessionService(sessions ports.SessionRepository, window time.Duration) *SessionService {
	if window <= 0 {
		window = DefaultSessionWindow
	}
	return &SessionService{sessions: sessions, window: window, now: time.Now}
}

// Window returns the sliding-expiration window, which is also the cookie
// max-age.
func (s *SessionService) Window() time.Duration {
	return s.window
}

// Create mints a session for userID bound to databaseID and stores it. The
// returned session carries the opaque token to be set as a cookie.
func (s *SessionService) Create(ctx context.Context, userID int64, databaseID, ip, userAgent string) (*domain.Session, error) {
	s.ensureSchema(ctx)

	token, err := util.GenerateToken(sessionTokenBytes)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &domain.Session{
		Token:        token,
		UserID:       userID,
		DatabaseID:   databaseID,
		CreatedAt:    now,
		LastAccessAt: now,
		ExpiresAt:    now.Add(s.window),
		IP:           ip,
		UserAgent:    userAgent,
		Active:       true,
	}
	if err := s.sessions.Insert(ctx, session); err != nil {
		return nil, err
	}
	log.Info().Int64("user_id", userID).Str("database", databaseID).Msg("session created")
	return session, nil
}

// Validate checks a token and, when it is still live, extends its deadline by
// the window (sliding expiration). Each call also sweeps expired rows so
// stale sessions appear inactive immediately without a background scheduler.
//
// An expired token reports Expired exactly once, on the validation that finds
// the deadline passed and closes it; after that it is Invalid like any other
// terminal session.
func (s *SessionService) Validate(ctx context.Context, token string) domain.ValidationOutcome {
	invalid := domain.ValidationOutcome{State: domain.SessionInvalidState}
	if token == "" {
		return invalid
	}
	s.ensureSchema(ctx)

	session, err := s.sessions.FindByToken(ctx, token)
	if errors.Is(err, sql.ErrNoRows) {
		return invalid
	}
	if err != nil {
		log.Warn().Err(err).Msg("session lookup failed")
		return invalid
	}

	now := s.now()
	if err := s.sessions.SweepExpired(ctx, now); err != nil {
		log.Warn().Err(err).Msg("expired session sweep failed")
	}

	if !session.Active {
		return invalid
	}
	if !session.ExpiresAt.After(now) {
		if err := s.sessions.Deactivate(ctx, token); err != nil {
			log.Warn().Err(err).Msg("closing expired session failed")
		}
		return domain.ValidationOutcome{State: domain.SessionExpiredState}
	}

	expiresAt := now.Add(s.window)
	if err := s.sessions.Extend(ctx, token, now, expiresAt); err != nil {
		log.Warn().Err(err).Msg("session renewal failed")
		return invalid
	}
	session.LastAccessAt = now
	session.ExpiresAt = expiresAt
	return domain.ValidationOutcome{State: domain.SessionValidState, Session: session}
}

// Close deactivates a session. Idempotent: closing an unknown or already
// closed token is not an error.
func (s *SessionService) Close(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	s.ensureSchema(ctx)
	if err := s.sessions.Deactivate(ctx, token); err != nil {
		return err
	}
	log.Info().Msg("session closed")
	return nil
}

// ensureSchema failures are logged, not surfaced: the operation that follows
// fails on its own if the control database is actually down.
func (s *SessionService) ensureSchema(ctx context.Context) {
	if err := s.sessions.EnsureSchema(ctx); err != nil {
		log.Warn().Err(err).Msg("ensuring session schema failed")
	}
}
