// Package dbx provides tiny DB abstractions shared by repositories:
// a minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx,
// a helper to run functions inside a transaction, and Store, which lets
// services open transactions without knowing the backend.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxFunc is the unit of work run by WithTx and Store.WithTx.
type TxFunc func(ctx context.Context, tx DBTX) error

// Store hands out a plain handle for single statements and runs units of
// work atomically. The in-memory backend returns a nil DB and serializes
// WithTx calls instead of opening real transactions.
type Store interface {
	DB() DBTX
	WithTx(ctx context.Context, fn TxFunc) error
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// Typical use:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn TxFunc) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

// SQLStore is the database/sql backed Store.
type SQLStore struct {
	db   *sql.DB
	opts *sql.TxOptions
}

// NewSQLStore wraps db. opts may be nil for the driver's default isolation.
func NewSQLStore(db *sql.DB, opts *sql.TxOptions) *SQLStore {
	return &SQLStore{db: db, opts: opts}
}

func (s *SQLStore) DB() DBTX {
	return s.db
}

func (s *SQLStore) WithTx(ctx context.Context, fn TxFunc) error {
	return WithTx(ctx, s.db, s.opts, fn)
}
