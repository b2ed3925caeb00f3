package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Row is one result row with columns keyed by name. Only the dynamic page
// surface uses it; repositories scan into typed structs instead.
type Row map[string]any

// HandleSource is the slice of PoolCache the facade needs. Tests substitute
// it to run statements against a mock database.
type HandleSource interface {
	GetOrCreate(databaseID string) (*sqlx.DB, error)
	Invalidate(databaseID string)
}

// Facade executes parameterized statements against a tenant database,
// classifying failures and retiring broken pools. Statement failures on reads
// degrade to empty results so pages render "no data" instead of crashing,
// whether the cause is an unprovisioned table or a lost connection; writes
// always surface their errors.
type Facade struct {
	pools     HandleSource
	defaultDB string
	timeout   time.Duration
}

// NewFacade builds a facade. defaultDB is used when a caller passes an empty
// database name; timeout bounds every statement, including time spent waiting
// for a pooled connection.
func NewFacade(pools HandleSource, defaultDB string, timeout time.Duration) *Facade {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Facade{pools: pools, defaultDB: defaultDB, timeout: timeout}
}

func (f *Facade) target(databaseID string) string {
	if databaseID == "" {
		return f.defaultDB
	}
	return databaseID
}

func (f *Facade) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, f.timeout)
}

// Query runs a read and returns the rows with columns keyed by name.
// Statement failures yield an empty slice and a warning, never an error;
// connection-class failures additionally retire the pool first.
func (f *Facade) Query(ctx context.Context, databaseID, query string, args ...any) ([]Row, error) {
	databaseID = f.target(databaseID)
	handle, err := f.pools.GetOrCreate(databaseID)
	if err != nil {
		return nil, &Error{Kind: KindConnection, Database: databaseID, Err: err}
	}

	ctx, cancel := f.bound(ctx)
	defer cancel()

	rows, err := handle.QueryxContext(ctx, query, args...)
	if err != nil {
		return f.absorbRead(databaseID, err)
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		row := Row{}
		if err := rows.MapScan(row); err != nil {
			return f.absorbRead(databaseID, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return f.absorbRead(databaseID, err)
	}
	return out, nil
}

// Select runs a read into a slice of typed records. A failed statement leaves
// dest untouched and returns nil, per the same policy as Query.
func (f *Facade) Select(ctx context.Context, databaseID string, dest any, query string, args ...any) error {
	databaseID = f.target(databaseID)
	handle, err := f.pools.GetOrCreate(databaseID)
	if err != nil {
		return &Error{Kind: KindConnection, Database: databaseID, Err: err}
	}

	ctx, cancel := f.bound(ctx)
	defer cancel()

	if err := handle.SelectContext(ctx, dest, query, args...); err != nil {
		_, aerr := f.absorbRead(databaseID, err)
		return aerr
	}
	return nil
}

// Get runs a single-row read into a typed record. No matching row reports
// sql.ErrNoRows; so does a missing relation, since an unprovisioned table and
// an absent row look the same to callers.
func (f *Facade) Get(ctx context.Context, databaseID string, dest any, query string, args ...any) error {
	databaseID = f.target(databaseID)
	handle, err := f.pools.GetOrCreate(databaseID)
	if err != nil {
		return &Error{Kind: KindConnection, Database: databaseID, Err: err}
	}

	ctx, cancel := f.bound(ctx)
	defer cancel()

	err = handle.GetContext(ctx, dest, query, args...)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return sql.ErrNoRows
	case Classify(err) == KindSchemaMissing:
		log.Warn().Str("database", databaseID).Err(err).Msg("relation not provisioned, treating as no rows")
		return sql.ErrNoRows
	default:
		return f.fail(databaseID, err)
	}
}

// Exec runs a write inside its own single-statement transaction. Unlike
// reads, failures always surface: a silently dropped write would corrupt the
// caller's expectations.
func (f *Facade) Exec(ctx context.Context, databaseID, query string, args ...any) error {
	databaseID = f.target(databaseID)
	handle, err := f.pools.GetOrCreate(databaseID)
	if err != nil {
		return &Error{Kind: KindConnection, Database: databaseID, Err: err}
	}

	ctx, cancel := f.bound(ctx)
	defer cancel()

	tx, err := handle.BeginTxx(ctx, nil)
	if err != nil {
		return f.fail(databaseID, err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		if Classify(err) == KindSchemaMissing {
			return &Error{Kind: KindSchemaMissing, Database: databaseID, Err: err}
		}
		return f.fail(databaseID, err)
	}
	if err := tx.Commit(); err != nil {
		return f.fail(databaseID, err)
	}
	return nil
}

// absorbRead applies the read-side propagation policy: every statement
// failure is absorbed into an empty result so the page renders an empty state.
// Missing relations are only logged; connection-class and unknown failures
// also retire the pool so the next read gets a fresh one.
func (f *Facade) absorbRead(databaseID string, err error) ([]Row, error) {
	if Classify(err) == KindSchemaMissing {
		log.Warn().Str("database", databaseID).Err(err).Msg("relation not provisioned, returning empty result")
		return []Row{}, nil
	}
	dbErr := f.fail(databaseID, err)
	log.Warn().Str("database", databaseID).Err(dbErr).Msg("read failed, returning empty result")
	return []Row{}, nil
}

// fail classifies err, retires the pool for connection-class failures, and
// wraps the error. Unknown errors are logged with full context and treated
// like connection failures.
func (f *Facade) fail(databaseID string, err error) error {
	dbErr := classified(databaseID, err)
	switch dbErr.Kind {
	case KindUnknown:
		log.Error().Str("database", databaseID).Err(err).Msg("unclassified database error")
		f.pools.Invalidate(databaseID)
	case KindConnection:
		f.pools.Invalidate(databaseID)
	}
	return dbErr
}
