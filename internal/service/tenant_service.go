package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/techind/novalink-admin/internal/domain"
	"github.com/techind/novalink-admin/internal/repository/ports"
)

// The sandbox tenant is compiled in so the system stays operable when the
// catalog database is unreachable.
var builtinTenant = domain.Tenant{
	ID:         "novalink_test",
	Name:       "Corporación Novalink",
	DatabaseID: "novalink",
}

// Search is opt-in: shorter inputs list nothing rather than flooding the
// client with every tenant.
const tenantSearchMinLength = 3

// TenantService resolves tenant selectors against the control-database
// catalog, always keeping the built-in sandbox tenant available.
type TenantService struct {
	repo ports.TenantRepository
}

func NewTenantService(repo ports.TenantRepository) *TenantService {
	return &TenantService{repo: repo}
}

// Resolve maps a tenant selector to its catalog entry. Unknown selectors, and
// any selector other than the built-in tenant while the catalog is down,
// report domain.ErrTenantNotFound.
func (s *TenantService) Resolve(ctx context.Context, selector string) (*domain.Tenant, error) {
	if selector == builtinTenant.ID {
		t := builtinTenant
		return &t, nil
	}
	tenants, err := s.repo.ListActive(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("tenant catalog unavailable")
		return nil, domain.ErrTenantNotFound
	}
	for i := range tenants {
		if tenants[i].ID == selector {
			t := tenants[i]
			return &t, nil
		}
	}
	return nil, domain.ErrTenantNotFound
}

// List returns the built-in tenant plus catalog entries whose display name
// contains search, case-insensitively. Catalog failures degrade to the
// built-in tenant alone; they never surface to the caller.
func (s *TenantService) List(ctx context.Context, search string) []domain.Tenant {
	search = strings.TrimSpace(search)
	if len(search) < tenantSearchMinLength {
		return nil
	}

	candidates := []domain.Tenant{builtinTenant}
	tenants, err := s.repo.ListActive(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("tenant catalog unavailable, listing built-in tenant only")
	} else {
		candidates = append(candidates, tenants...)
	}

	needle := strings.ToLower(search)
	matches := make([]domain.Tenant, 0, len(candidates))
	for _, t := range candidates {
		if strings.Contains(strings.ToLower(t.Name), needle) {
			matches = append(matches, t)
		}
	}
	return matches
}
