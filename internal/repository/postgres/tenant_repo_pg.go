package postgres

import (
	"context"

	"github.com/techind/novalink-admin/internal/db"
	"github.com/techind/novalink-admin/internal/domain"
)

type TenantRepository struct {
	facade    *db.Facade
	catalogDB string
}

// NewTenantRepo reads the tenant catalog from catalogDB.
func NewTenantRepo(facade *db.Facade, catalogDB string) *TenantRepository {
	return &TenantRepository{facade: facade, catalogDB: catalogDB}
}

func (r *TenantRepository) ListActive(ctx context.Context) ([]domain.Tenant, error) {
	const query = `
        SELECT id::varchar AS id, nombre, COALESCE(base, 'serviciosdev') AS db_name
        FROM cliente.catalogo
        WHERE activo = true
        ORDER BY nombre
    `
	var tenants []domain.Tenant
	if err := r.facade.Select(ctx, r.catalogDB, &tenants, query); err != nil {
		return nil, err
	}
	return tenants, nil
}
