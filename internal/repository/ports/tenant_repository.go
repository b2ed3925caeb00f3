package ports

import (
	"context"

	"github.com/techind/novalink-admin/internal/domain"
)

// TenantRepository reads the tenant catalog from the control side.
type TenantRepository interface {
	// ListActive returns every active tenant ordered by display name.
	ListActive(ctx context.Context) ([]domain.Tenant, error)
}
