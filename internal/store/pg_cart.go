package store

import (
	"context"
	"errors"
	"fmt"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgCartStore implements CartStore for authenticated users on PostgreSQL.
// The scope is the user id; entries survive across sessions.
type PgCartStore struct {
	db *pgxpool.Pool
}

// NewPgCartStore creates a new CartStore backed by a PostgreSQL connection pool.
func NewPgCartStore(dbp *pgxpool.Pool) *PgCartStore {
	return &PgCartStore{db: dbp}
}

// addQuery merges the requested quantity into the cart line, bounded by the
// variant's stock read in the same statement. No row is returned when the
// variant is unknown or when the merged quantity would exceed stock.
const addQuery = `
	INSERT INTO cart_items (user_id, variant_id, quantity)
	SELECT $1, v.id, $3::int
	  FROM variants v
	 WHERE v.id = $2 AND v.stock >= $3::int
	ON CONFLICT (user_id, variant_id) DO UPDATE
	   SET quantity = cart_items.quantity + excluded.quantity,
	       updated_at = now()
	 WHERE cart_items.quantity + excluded.quantity <=
	       (SELECT stock FROM variants WHERE id = excluded.variant_id)
	RETURNING quantity`

func (p *PgCartStore) Count(ctx context.Context, scope uuid.UUID) (int64, error) {
	var count int64
	err := p.db.QueryRow(ctx, `SELECT count(*) FROM cart_items WHERE user_id = $1`, scope).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cart lines: %w", err)
	}
	return count, nil
}

func (p *PgCartStore) Add(ctx context.Context, scope, variantID uuid.UUID, qty int32) (int64, error) {
	var count int64

	txErr := withTransaction(ctx, p.db, func(tx pgx.Tx) error {
		var quantity int32
		err := tx.QueryRow(ctx, addQuery, scope, variantID, qty).Scan(&quantity)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return p.classifyRejectedAdd(ctx, tx, variantID)
			}
			return fmt.Errorf("failed to upsert cart line: %w", err)
		}
		return tx.QueryRow(ctx, `SELECT count(*) FROM cart_items WHERE user_id = $1`, scope).Scan(&count)
	})

	if txErr != nil {
		return 0, txErr
	}
	return count, nil
}

// classifyRejectedAdd distinguishes an unknown variant from an exceeded stock
// ceiling after the bounded upsert matched no row.
func (p *PgCartStore) classifyRejectedAdd(ctx context.Context, tx pgx.Tx, variantID uuid.UUID) error {
	var stock int32
	err := tx.QueryRow(ctx, `SELECT stock FROM variants WHERE id = $1`, variantID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sferrors.ErrVariantNotFound
		}
		return fmt.Errorf("failed to look up variant stock: %w", err)
	}
	return sferrors.ErrOutOfStock
}

func (p *PgCartStore) Decrement(ctx context.Context, scope, variantID uuid.UUID) (int64, error) {
	var count int64

	txErr := withTransaction(ctx, p.db, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx,
			`UPDATE cart_items SET quantity = quantity - 1, updated_at = now()
			  WHERE user_id = $1 AND variant_id = $2 AND quantity > 1`,
			scope, variantID)
		if err != nil {
			return fmt.Errorf("failed to decrement cart line: %w", err)
		}
		if ct.RowsAffected() == 0 {
			// Quantity 1 means delete the line; an absent line is a no-op.
			_, err = tx.Exec(ctx,
				`DELETE FROM cart_items WHERE user_id = $1 AND variant_id = $2`,
				scope, variantID)
			if err != nil {
				return fmt.Errorf("failed to delete cart line: %w", err)
			}
		}
		return tx.QueryRow(ctx, `SELECT count(*) FROM cart_items WHERE user_id = $1`, scope).Scan(&count)
	})

	if txErr != nil {
		return 0, txErr
	}
	return count, nil
}

func (p *PgCartStore) Remove(ctx context.Context, scope, variantID uuid.UUID) (int64, error) {
	var count int64

	txErr := withTransaction(ctx, p.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`DELETE FROM cart_items WHERE user_id = $1 AND variant_id = $2`,
			scope, variantID)
		if err != nil {
			return fmt.Errorf("failed to remove cart line: %w", err)
		}
		return tx.QueryRow(ctx, `SELECT count(*) FROM cart_items WHERE user_id = $1`, scope).Scan(&count)
	})

	if txErr != nil {
		return 0, txErr
	}
	return count, nil
}
