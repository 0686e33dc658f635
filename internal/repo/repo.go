// Package repo implements the store interfaces on PostgreSQL.
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/crucial707/blog-api/internal/store"
	"github.com/lib/pq"
)

// uniqueViolation is the Postgres SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// mapErr converts driver errors into store sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", store.ErrConflict, pqErr.Constraint)
	}
	return err
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// withTx runs fn in a transaction, committing when it returns nil.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// NewSet returns a store.Set backed by db.
func NewSet(db *sql.DB) store.Set {
	return store.Set{
		Users:      NewUserRepo(db),
		Posts:      NewPostRepo(db),
		Comments:   NewCommentRepo(db),
		Categories: NewCategoryRepo(db),
		Votes:      NewVoteRepo(db),
		Audit:      NewAuditRepo(db),
		Ping:       db.PingContext,
	}
}
