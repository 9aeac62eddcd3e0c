package store

import (
	"context"
	"errors"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// withTransaction runs fn inside a transaction, rolling back on error.
func withTransaction(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return sferrors.ErrTransactionBegin
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return sferrors.ErrTransactionRollback
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return sferrors.ErrTransactionCommit
	}

	return nil
}
