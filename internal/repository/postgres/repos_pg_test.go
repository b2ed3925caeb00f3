package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techind/novalink-admin/internal/db"
	"github.com/techind/novalink-admin/internal/domain"
)

type stubSource struct {
	handle      *sqlx.DB
	invalidated []string
}

func (s *stubSource) GetOrCreate(databaseID string) (*sqlx.DB, error) { return s.handle, nil }
func (s *stubSource) Invalidate(databaseID string)                    { s.invalidated = append(s.invalidated, databaseID) }

func newMockFacade(t *testing.T) (*db.Facade, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	source := &stubSource{handle: sqlx.NewDb(mockDB, "sqlmock")}
	return db.NewFacade(source, "novalink", time.Second), mock
}

func TestListActiveScansCatalog(t *testing.T) {
	facade, mock := newMockFacade(t)
	repo := NewTenantRepo(facade, "serviciosdev")

	mock.ExpectQuery("SELECT id::varchar AS id, nombre, COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "nombre", "db_name"}).
			AddRow("7", "Distribuidora Andina", "andina").
			AddRow("9", "Grupo Pacifico", "serviciosdev"))

	tenants, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, tenants, 2)
	assert.Equal(t, domain.Tenant{ID: "7", Name: "Distribuidora Andina", DatabaseID: "andina"}, tenants[0])
	assert.Equal(t, "serviciosdev", tenants[1].DatabaseID)
}

func TestListActiveMissingCatalogYieldsEmpty(t *testing.T) {
	facade, mock := newMockFacade(t)
	repo := NewTenantRepo(facade, "serviciosdev")

	mock.ExpectQuery("SELECT id::varchar").
		WillReturnError(&pgconn.PgError{Code: "42P01"})

	tenants, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tenants)
}

func TestListActiveUnreachableCatalogYieldsEmpty(t *testing.T) {
	facade, mock := newMockFacade(t)
	repo := NewTenantRepo(facade, "serviciosdev")

	mock.ExpectQuery("SELECT id::varchar").
		WillReturnError(&pgconn.PgError{Code: "08006"})

	tenants, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tenants)
}

func TestFindByTokenScansSpanishColumns(t *testing.T) {
	facade, mock := newMockFacade(t)
	repo := NewSessionRepo(facade, "novalink")

	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	expires := started.Add(30 * time.Minute)
	mock.ExpectQuery("SELECT (.+) FROM public.sesiones").
		WithArgs("tok-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "token", "usuario_id", "database_name",
			"fecha_inicio", "fecha_ultimo_acceso", "fecha_expiracion",
			"ip_address", "user_agent", "activa",
		}).AddRow(int64(12), "tok-1", int64(4), "andina", started, started, expires, "10.0.0.8", "curl", true))

	session, err := repo.FindByToken(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", session.Token)
	assert.Equal(t, int64(4), session.UserID)
	assert.Equal(t, "andina", session.DatabaseID)
	assert.True(t, session.Active)
	assert.Equal(t, expires, session.ExpiresAt)
}

func TestFindByTokenUnknownTokenReportsNoRows(t *testing.T) {
	facade, mock := newMockFacade(t)
	repo := NewSessionRepo(facade, "novalink")

	mock.ExpectQuery("SELECT (.+) FROM public.sesiones").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByToken(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSweepExpiredOnlyTouchesActiveRows(t *testing.T) {
	facade, mock := newMockFacade(t)
	repo := NewSessionRepo(facade, "novalink")

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE public.sesiones\s+SET activa = false\s+WHERE fecha_expiracion < \$1 AND activa = true`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, repo.SweepExpired(context.Background(), now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExtendSkipsClosedSessions(t *testing.T) {
	facade, mock := newMockFacade(t)
	repo := NewSessionRepo(facade, "novalink")

	last := time.Now()
	expires := last.Add(30 * time.Minute)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE public.sesiones\s+SET fecha_ultimo_acceso = \$2, fecha_expiracion = \$3\s+WHERE token = \$1 AND activa = true`).
		WithArgs("tok-1", last, expires).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Extend(context.Background(), "tok-1", last, expires))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaCreatesTableAndIndex(t *testing.T) {
	facade, mock := newMockFacade(t)
	repo := NewSessionRepo(facade, "novalink")

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS public.sesiones").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_sesiones_token").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByNameScansCredentials(t *testing.T) {
	facade, mock := newMockFacade(t)
	repo := NewUserRepo(facade)

	changed := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, nombre, descripcion, pwd, activo, fechacambiopwd").
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "nombre", "descripcion", "pwd", "activo", "fechacambiopwd"}).
			AddRow(int64(1), "admin", "Administrador", "8c6976e5b5410415bde908bd4dee15dfb167a9c873fc4bb8a81f6f2ab448a918", true, changed))

	user, err := repo.FindByName(context.Background(), "andina", "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "admin", user.Name)
	require.NotNil(t, user.Description)
	assert.Equal(t, "Administrador", *user.Description)
	require.NotNil(t, user.PasswordChangedAt)
	assert.Equal(t, changed, *user.PasswordChangedAt)
}

func TestFindByNameNullableColumns(t *testing.T) {
	facade, mock := newMockFacade(t)
	repo := NewUserRepo(facade)

	mock.ExpectQuery("SELECT id, nombre, descripcion, pwd, activo, fechacambiopwd").
		WithArgs("nuevo").
		WillReturnRows(sqlmock.NewRows([]string{"id", "nombre", "descripcion", "pwd", "activo", "fechacambiopwd"}).
			AddRow(int64(2), "nuevo", nil, "abc", true, nil))

	user, err := repo.FindByName(context.Background(), "andina", "nuevo")
	require.NoError(t, err)
	assert.Nil(t, user.Description)
	assert.Nil(t, user.PasswordChangedAt)
}

func TestPasswordPolicyReadsParameter(t *testing.T) {
	facade, mock := newMockFacade(t)
	repo := NewUserRepo(facade)

	mock.ExpectQuery("SELECT valor FROM public.parametros").
		WithArgs(int64(80)).
		WillReturnRows(sqlmock.NewRows([]string{"valor"}).AddRow(" 120 "))

	policy := repo.PasswordPolicy(context.Background(), "andina")
	assert.Equal(t, 120, policy.ValidityDays)
}

func TestPasswordPolicyFallsBackOnAbsentParameter(t *testing.T) {
	facade, mock := newMockFacade(t)
	repo := NewUserRepo(facade)

	mock.ExpectQuery("SELECT valor FROM public.parametros").
		WithArgs(int64(80)).
		WillReturnRows(sqlmock.NewRows([]string{"valor"}))

	policy := repo.PasswordPolicy(context.Background(), "andina")
	assert.Equal(t, domain.DefaultPasswordValidityDays, policy.ValidityDays)
}

func TestPasswordPolicyFallsBackOnGarbage(t *testing.T) {
	facade, mock := newMockFacade(t)
	repo := NewUserRepo(facade)

	mock.ExpectQuery("SELECT valor FROM public.parametros").
		WithArgs(int64(80)).
		WillReturnRows(sqlmock.NewRows([]string{"valor"}).AddRow("soon"))

	policy := repo.PasswordPolicy(context.Background(), "andina")
	assert.Equal(t, domain.DefaultPasswordValidityDays, policy.ValidityDays)
}

func TestPasswordPolicyFallsBackOnUnreachableDatabase(t *testing.T) {
	facade, mock := newMockFacade(t)
	repo := NewUserRepo(facade)

	mock.ExpectQuery("SELECT valor FROM public.parametros").
		WithArgs(int64(80)).
		WillReturnError(&pgconn.PgError{Code: "08006"})

	policy := repo.PasswordPolicy(context.Background(), "andina")
	assert.Equal(t, domain.DefaultPasswordValidityDays, policy.ValidityDays)
}

func TestUpdatePasswordStampsChangeDate(t *testing.T) {
	facade, mock := newMockFacade(t)
	repo := NewUserRepo(facade)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE public.usuarios\s+SET pwd = \$2, fechacambiopwd = NOW\(\)\s+WHERE id = \$1`).
		WithArgs(int64(4), "newhash").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdatePassword(context.Background(), "andina", 4, "newhash"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
