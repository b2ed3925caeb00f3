package http

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techind/novalink-admin/internal/db"
	"github.com/techind/novalink-admin/internal/domain"
	"github.com/techind/novalink-admin/internal/service"
)

type stubHandleSource struct {
	handle      *sqlx.DB
	invalidated []string
}

func (s *stubHandleSource) GetOrCreate(databaseID string) (*sqlx.DB, error) { return s.handle, nil }
func (s *stubHandleSource) Invalidate(databaseID string) {
	s.invalidated = append(s.invalidated, databaseID)
}

type pageFixture struct {
	fixture *handlerFixture
	mock    sqlmock.Sqlmock
	cookie  *http.Cookie
}

// newPageFixture serves the facade-backed page endpoints with a pre-seeded
// live session bound to the andina database.
func newPageFixture(t *testing.T) *pageFixture {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	source := &stubHandleSource{handle: sqlx.NewDb(mockDB, "sqlmock")}
	facade := db.NewFacade(source, "novalink", time.Second)

	repo := newMemSessionRepo()
	now := time.Now()
	repo.sessions["tok-pages"] = &domain.Session{
		Token:        "tok-pages",
		UserID:       1,
		DatabaseID:   "andina",
		CreatedAt:    now,
		LastAccessAt: now,
		ExpiresAt:    now.Add(service.DefaultSessionWindow),
		Active:       true,
	}
	sessions := service.NewSessionService(repo, service.DefaultSessionWindow)

	e := echo.New()
	NewHolidayHandler(facade, sessions).Register(e)
	NewParameterHandler(facade, sessions).Register(e)

	return &pageFixture{
		fixture: &handlerFixture{e: e, sessions: sessions, repo: repo},
		mock:    mock,
		cookie:  &http.Cookie{Name: SessionCookieName, Value: "tok-pages"},
	}
}

func TestListHolidays(t *testing.T) {
	p := newPageFixture(t)

	p.mock.ExpectQuery("SELECT fecha::text AS fecha, tipo").
		WithArgs(2024, -1).
		WillReturnRows(sqlmock.NewRows([]string{"fecha", "tipo"}).
			AddRow("2024-01-01", "N").
			AddRow([]byte("2024-12-25"), []byte("N")))

	rec := p.fixture.request(http.MethodGet, "/v1/holidays?year=2024", "", p.cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var items []HolidayItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, HolidayItem{Date: "2024-01-01", Type: "N"}, items[0])
	assert.Equal(t, HolidayItem{Date: "2024-12-25", Type: "N"}, items[1])
}

func TestListHolidaysUnprovisionedTableIsEmptyList(t *testing.T) {
	p := newPageFixture(t)

	p.mock.ExpectQuery("SELECT fecha::text AS fecha, tipo").
		WillReturnError(&pgconn.PgError{Code: "42P01"})

	rec := p.fixture.request(http.MethodGet, "/v1/holidays?year=2024&level=3", "", p.cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestListHolidaysLostConnectionIsEmptyList(t *testing.T) {
	p := newPageFixture(t)

	p.mock.ExpectQuery("SELECT fecha::text AS fecha, tipo").
		WillReturnError(&pgconn.PgError{Code: "08006"})

	rec := p.fixture.request(http.MethodGet, "/v1/holidays?year=2024", "", p.cookie)
	require.Equal(t, http.StatusOK, rec.Code, "read failures degrade to an empty page, not an error")
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestListHolidaysRequiresYear(t *testing.T) {
	p := newPageFixture(t)

	rec := p.fixture.request(http.MethodGet, "/v1/holidays", "", p.cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListHolidaysRequiresSession(t *testing.T) {
	p := newPageFixture(t)

	rec := p.fixture.request(http.MethodGet, "/v1/holidays?year=2024", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReplaceHolidaysDeletesThenInserts(t *testing.T) {
	p := newPageFixture(t)

	p.mock.ExpectBegin()
	p.mock.ExpectExec("DELETE FROM public.feriados").
		WithArgs(2024, -1).
		WillReturnResult(sqlmock.NewResult(0, 2))
	p.mock.ExpectCommit()
	p.mock.ExpectBegin()
	p.mock.ExpectExec("INSERT INTO public.feriados").
		WithArgs(2024, -1, "2024-12-25", "N").
		WillReturnResult(sqlmock.NewResult(1, 1))
	p.mock.ExpectCommit()

	rec := p.fixture.request(http.MethodPut, "/v1/holidays",
		`{"year":2024,"holidays":[{"date":"2024-12-25","type":"N"}]}`, p.cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NoError(t, p.mock.ExpectationsWereMet())
}

func TestReplaceHolidaysUnprovisionedTableConflicts(t *testing.T) {
	p := newPageFixture(t)

	p.mock.ExpectBegin()
	p.mock.ExpectExec("DELETE FROM public.feriados").
		WillReturnError(&pgconn.PgError{Code: "42P01"})
	p.mock.ExpectRollback()

	rec := p.fixture.request(http.MethodPut, "/v1/holidays",
		`{"year":2024,"holidays":[]}`, p.cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListParameters(t *testing.T) {
	p := newPageFixture(t)

	p.mock.ExpectQuery("SELECT codigo, valor FROM public.parametros").
		WillReturnRows(sqlmock.NewRows([]string{"codigo", "valor"}).
			AddRow(int64(80), "90").
			AddRow(int64(81), "true"))

	rec := p.fixture.request(http.MethodGet, "/v1/parameters", "", p.cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var items []ParameterItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, ParameterItem{Code: 80, Value: "90"}, items[0])
}

func TestUpdateParameter(t *testing.T) {
	p := newPageFixture(t)

	p.mock.ExpectBegin()
	p.mock.ExpectExec("UPDATE public.parametros SET valor").
		WithArgs(int64(80), "120").
		WillReturnResult(sqlmock.NewResult(0, 1))
	p.mock.ExpectCommit()

	rec := p.fixture.request(http.MethodPut, "/v1/parameters/80",
		`{"value":" 120 "}`, p.cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NoError(t, p.mock.ExpectationsWereMet())
}

func TestUpdateParameterRejectsBadCode(t *testing.T) {
	p := newPageFixture(t)

	rec := p.fixture.request(http.MethodPut, "/v1/parameters/abc",
		`{"value":"120"}`, p.cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
