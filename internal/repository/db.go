package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and test doubles.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ErrDirectoryUnavailable is returned by Unavailable for every call.
var ErrDirectoryUnavailable = errors.New("directory database not configured")

type unavailableDB struct{}

// Unavailable returns a DBTX that fails every statement, for hosts started
// without a database.
func Unavailable() DBTX {
	return unavailableDB{}
}

func (unavailableDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, ErrDirectoryUnavailable
}

func (unavailableDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, ErrDirectoryUnavailable
}

func (unavailableDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return unavailableRow{}
}

type unavailableRow struct{}

func (unavailableRow) Scan(...any) error {
	return ErrDirectoryUnavailable
}
