package store

import (
	"context"
	"database/sql"
	"strings"
)

// DB exposes the internal *sql.DB for test helpers in store_test.
// This file only compiles during `go test`.
func (s *Store) DB() *sql.DB {
	return s.db
}

// FailQuery makes every query containing substr return err.
func (s *Store) FailQuery(substr string, err error) {
	s.hooks.query = func(ctx context.Context, db queryer, query string, args ...any) (*sql.Rows, error) {
		if strings.Contains(query, substr) {
			return nil, err
		}
		return db.QueryContext(ctx, query, args...)
	}
}

// FailExec makes every exec containing substr return err.
func (s *Store) FailExec(substr string, err error) {
	s.hooks.exec = func(ctx context.Context, db execer, query string, args ...any) (sql.Result, error) {
		if strings.Contains(query, substr) {
			return nil, err
		}
		return db.ExecContext(ctx, query, args...)
	}
}

// FailCommit makes every commit return err after rolling back.
func (s *Store) FailCommit(err error) {
	s.hooks.commit = func(tx *sql.Tx) error {
		_ = tx.Rollback()
		return err
	}
}

// ResetHooks restores the real database calls.
func (s *Store) ResetHooks() {
	s.hooks = storeHooks{}
}
