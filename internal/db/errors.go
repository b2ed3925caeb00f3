package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies a database failure so callers can decide propagation
// without inspecting driver errors themselves.
type Kind uint8

const (
	// KindUnknown is anything not recognised below. The facade treats it like
	// a connection failure and retires the pool, since a poisoned connection
	// is the most common cause.
	KindUnknown Kind = iota
	// KindSchemaMissing means the target relation does not exist in the
	// tenant database (not yet provisioned). Reads degrade to empty results;
	// writes still fail.
	KindSchemaMissing
	// KindConnection covers refused, dropped, or timed-out connections and
	// server shutdowns. The responsible pool handle is invalidated so the
	// next attempt builds a fresh one.
	KindConnection
)

func (k Kind) String() string {
	switch k {
	case KindSchemaMissing:
		return "schema_missing"
	case KindConnection:
		return "connection"
	default:
		return "unknown"
	}
}

// Error wraps a driver error with its classification and the database it
// occurred against.
type Error struct {
	Kind     Kind
	Database string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("db %s (%s): %v", e.Database, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsSchemaMissing reports whether err is classified as a missing relation.
func IsSchemaMissing(err error) bool {
	var dbErr *Error
	return errors.As(err, &dbErr) && dbErr.Kind == KindSchemaMissing
}

// IsConnection reports whether err is classified as a connection failure.
// Unknown errors count too: the facade retires the pool for both.
func IsConnection(err error) bool {
	var dbErr *Error
	return errors.As(err, &dbErr) && dbErr.Kind != KindSchemaMissing
}

// Postgres error codes the classifier cares about.
const (
	pgUndefinedTable = "42P01"
)

// Classify maps a driver error to a Kind.
func Classify(err error) Kind {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUndefinedTable:
			return KindSchemaMissing
		case strings.HasPrefix(pgErr.Code, "08"): // connection exception class
			return KindConnection
		case pgErr.Code == "57P01" || pgErr.Code == "57P02" || pgErr.Code == "57P03":
			// admin shutdown, crash shutdown, cannot connect now
			return KindConnection
		case pgErr.Code == "53300": // too many connections
			return KindConnection
		default:
			return KindUnknown
		}
	}
	if errors.Is(err, driver.ErrBadConn) {
		return KindConnection
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindConnection
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindConnection
	}
	return KindUnknown
}

func classified(databaseID string, err error) *Error {
	return &Error{Kind: Classify(err), Database: databaseID, Err: err}
}
