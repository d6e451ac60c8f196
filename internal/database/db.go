package database

import (
	"context"
	"errors"
)

// ErrNilDB is returned by adapters used before Connect succeeded.
var ErrNilDB = errors.New("nil db")

// DB is the narrow query surface shared by the Postgres and SQLite adapters.
type DB interface {
	Ping(ctx context.Context) error
	Close() error

	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
}

type Rows interface {
	Close()
	Next() bool
	Scan(dest ...any) error
	Err() error
}

type Row interface {
	Scan(dest ...any) error
}
