package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Schema is an ordered list of idempotent DDL statements owned by one backend.
type Schema struct {
	Name       string
	Statements []string
}

// EnsureSchema applies every statement of the schema inside a single
// transaction. Statements must be idempotent (CREATE ... IF NOT EXISTS).
func EnsureSchema(ctx context.Context, db *sqlx.DB, schema Schema) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema %s: %w", schema.Name, err)
	}
	defer tx.Rollback() //nolint:errcheck

	for i, stmt := range schema.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema %s statement %d: %w", schema.Name, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema %s: %w", schema.Name, err)
	}
	return nil
}

// WithTx runs fn inside a transaction, committing when fn returns nil.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
