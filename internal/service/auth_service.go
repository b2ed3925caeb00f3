package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/techind/novalink-admin/internal/domain"
	"github.com/techind/novalink-admin/internal/repository/ports"
	"github.com/techind/novalink-admin/internal/util"
)

// TenantResolver maps a tenant selector to its catalog entry.
type TenantResolver interface {
	Resolve(ctx context.Context, selector string) (*domain.Tenant, error)
}

// ConnectionVerifier probes whether a tenant database is reachable.
type ConnectionVerifier interface {
	Verify(ctx context.Context, databaseID string) bool
}

// SessionCreator mints a session after a successful authentication.
type SessionCreator interface {
	Create(ctx context.Context, userID int64, databaseID, ip, userAgent string) (*domain.Session, error)
}

// LoginResult is everything a successful authentication produces.
type LoginResult struct {
	Session *domain.Session
	User    *domain.User
	Tenant  *domain.Tenant
	// MustChangePassword is set when the password has outlived the tenant's
	// validity window. Login still succeeds; the client has to route the user
	// to the password form.
	MustChangePassword bool
}

// AuthService validates credentials against a tenant database and mints
// sessions. No failure path ever creates a session.
type AuthService struct {
	tenants  TenantResolver
	pools    ConnectionVerifier
	users    ports.UserRepository
	sessions SessionCreator
}

func NewAuthService(tenants TenantResolver, pools ConnectionVerifier, users ports.UserRepository, sessions SessionCreator) *AuthService {
	return &AuthService{tenants: tenants, pools: pools, users: users, sessions: sessions}
}

// Authenticate runs the full login sequence: resolve tenant, verify its
// database is reachable, check the credential, apply the password-age policy,
// and mint a session. The returned errors are the internal failure kinds;
// handlers collapse the credential ones into a single message.
func (s *AuthService) Authenticate(ctx context.Context, tenantSelector, username, password, ip, userAgent string) (*LoginResult, error) {
	tenant, err := s.tenants.Resolve(ctx, tenantSelector)
	if err != nil {
		log.Warn().Str("tenant", tenantSelector).Msg("login against unknown tenant")
		return nil, domain.ErrTenantNotFound
	}

	if !s.pools.Verify(ctx, tenant.DatabaseID) {
		log.Warn().Str("database", tenant.DatabaseID).Msg("tenant database unreachable during login")
		return nil, domain.ErrConnectionUnavailable
	}

	user, err := s.users.FindByName(ctx, tenant.DatabaseID, username)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		log.Warn().Str("database", tenant.DatabaseID).Str("user", username).Msg("login with unknown user")
		return nil, domain.ErrUserNotFound
	case err != nil:
		return nil, err
	}

	if !util.VerifyPassword(password, user.PasswordHash) {
		log.Warn().Str("database", tenant.DatabaseID).Str("user", username).Msg("login with wrong password")
		return nil, domain.ErrBadPassword
	}
	if !user.Active {
		log.Warn().Str("database", tenant.DatabaseID).Str("user", username).Msg("login with inactive account")
		return nil, domain.ErrUserInactive
	}

	policy := s.users.PasswordPolicy(ctx, tenant.DatabaseID)
	session, err := s.sessions.Create(ctx, user.ID, tenant.DatabaseID, ip, userAgent)
	if err != nil {
		return nil, err
	}

	result := &LoginResult{
		Session:            session,
		User:               user,
		Tenant:             tenant,
		MustChangePassword: policy.Expired(user.PasswordChangedAt, session.CreatedAt),
	}
	log.Info().
		Int64("user_id", user.ID).
		Str("database", tenant.DatabaseID).
		Bool("must_change_password", result.MustChangePassword).
		Msg("login successful")
	return result, nil
}

// ChangePassword verifies the current password and writes a new hash plus the
// change timestamp to the tenant database.
func (s *AuthService) ChangePassword(ctx context.Context, databaseID string, userID int64, current, next string) error {
	if next == "" {
		return domain.ErrBadPassword
	}

	user, err := s.users.FindByID(ctx, databaseID, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.ErrUserNotFound
	case err != nil:
		return err
	}

	if !util.VerifyPassword(current, user.PasswordHash) {
		return domain.ErrBadPassword
	}
	if util.VerifyPassword(next, user.PasswordHash) {
		return domain.ErrPasswordReused
	}

	if err := s.users.UpdatePassword(ctx, databaseID, userID, util.HashPassword(next)); err != nil {
		return err
	}
	log.Info().Int64("user_id", userID).Str("database", databaseID).Msg("password changed")
	return nil
}
