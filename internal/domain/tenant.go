package domain

// Tenant is one customer's entry in the control-database catalog. Each tenant
// owns an isolated business database; DatabaseID is the name substituted into
// the base connection URL.
type Tenant struct {
	ID         string `db:"id" json:"id"`
	Name       string `db:"nombre" json:"name"`
	DatabaseID string `db:"db_name" json:"database_id"`
}
