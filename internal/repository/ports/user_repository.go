package ports

import (
	"context"

	"github.com/techind/novalink-admin/internal/domain"
)

// UserRepository reads credentials from a tenant database. Every call names
// the target database explicitly because users live per tenant, not in the
// control database.
type UserRepository interface {
	// FindByName returns sql.ErrNoRows when no user carries that login name.
	FindByName(ctx context.Context, databaseID, name string) (*domain.User, error)
	FindByID(ctx context.Context, databaseID string, id int64) (*domain.User, error)
	// PasswordPolicy loads the tenant's password validity window, falling
	// back to the default when the parameter is absent or unreadable.
	PasswordPolicy(ctx context.Context, databaseID string) domain.PasswordPolicy
	UpdatePassword(ctx context.Context, databaseID string, userID int64, passwordHash string) error
}
