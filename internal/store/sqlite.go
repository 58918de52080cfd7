package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SQLiteStore implements the Store interface on the handle of a Helper.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the helper's database if needed and returns a store
// over it. Closing the helper invalidates the store.
func NewSQLiteStore(ctx context.Context, h *Helper) (*SQLiteStore, error) {
	db, err := h.DB(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening todo database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// inTx runs fn in a transaction. Statements inside fn must go through tx:
// an in-memory database has a single connection.
func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// expectRow turns a zero RowsAffected into ErrNotFound.
func expectRow(result sql.Result, kind string, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking %s %d: %w", kind, id, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return nil
}

// notFound maps sql.ErrNoRows to ErrNotFound.
func notFound(err error, kind string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("getting %s %d: %w", kind, id, err)
}

// nullIfZero stores unset timestamps as NULL.
func nullIfZero(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
