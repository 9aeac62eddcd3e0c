package store

import (
	"context"
	"fmt"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgWishlistStore implements WishlistStore for authenticated users on PostgreSQL.
type PgWishlistStore struct {
	db *pgxpool.Pool
}

// NewPgWishlistStore creates a new WishlistStore backed by a PostgreSQL connection pool.
func NewPgWishlistStore(dbp *pgxpool.Pool) *PgWishlistStore {
	return &PgWishlistStore{db: dbp}
}

func (p *PgWishlistStore) Add(ctx context.Context, scope, productID uuid.UUID) (bool, error) {
	ct, err := p.db.Exec(ctx,
		`INSERT INTO wishlist_items (user_id, product_id)
		 SELECT $1, id FROM products WHERE id = $2
		 ON CONFLICT (user_id, product_id) DO NOTHING`,
		scope, productID)
	if err != nil {
		return false, fmt.Errorf("failed to insert wishlist entry: %w", err)
	}
	if ct.RowsAffected() == 1 {
		return true, nil
	}

	// Nothing inserted: either the product is unknown or the entry already exists.
	var exists bool
	err = p.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to look up product: %w", err)
	}
	if !exists {
		return false, sferrors.ErrProductNotFound
	}
	return false, nil
}

func (p *PgWishlistStore) Remove(ctx context.Context, scope, productID uuid.UUID) error {
	_, err := p.db.Exec(ctx,
		`DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`,
		scope, productID)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist entry: %w", err)
	}
	return nil
}
