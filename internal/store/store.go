// Package store holds the Postgres-backed repositories for every entity in
// the data model, grounded on the teacher's repository.go/
// league_repository.go pattern: raw SQL over database/sql, RowsAffected
// checks for not-found, ExecContext/QueryRowContext/QueryContext throughout.
package store

import (
	"context"
	"database/sql"

	"github.com/fantasyprojections/engine/internal/apperr"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, letting every repository
// run either directly against the pool or inside a caller-managed
// transaction without two copies of its query methods.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store wraps the connection pool and is the entry point for transactions.
type Store struct {
	DB *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{DB: db}
}

// WithTx runs fn inside one transaction, committing on success and rolling
// back on any error fn returns. fn must rebind any repository it writes
// through to q via that repository's WithTx method — calling a repository
// still bound to the pool runs outside the transaction entirely.
func (s *Store) WithTx(ctx context.Context, fn func(q DBTX) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Internal("begin transaction: %v", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperr.Internal("commit transaction: %v", err)
	}
	return nil
}

func rowsAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Internal("rows affected: %v", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
