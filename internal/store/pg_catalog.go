package store

import (
	"context"
	"errors"
	"fmt"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// PgCatalogStore implements CatalogStore using PostgreSQL as the data store.
type PgCatalogStore struct {
	db *pgxpool.Pool
}

// NewPgCatalogStore creates a new CatalogStore backed by a PostgreSQL connection pool.
func NewPgCatalogStore(dbp *pgxpool.Pool) *PgCatalogStore {
	return &PgCatalogStore{db: dbp}
}

const productColumns = `id, category_id, name, description, price, image_url, created_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.CreatedAt)
	return p, err
}

func (s *PgCatalogStore) FindAll(ctx context.Context, offset, limit int32) ([]Product, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at DESC OFFSET $1 LIMIT $2`,
		offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (s *PgCatalogStore) FindByID(ctx context.Context, id uuid.UUID) (*Product, []Variant, error) {
	product, err := scanProduct(s.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, sferrors.ErrProductNotFound
		}
		return nil, nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	variants, err := s.variantsOf(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return &product, variants, nil
}

func (s *PgCatalogStore) variantsOf(ctx context.Context, productID uuid.UUID) ([]Variant, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, product_id, size, color, stock FROM variants WHERE product_id = $1 ORDER BY size, color`,
		productID)
	if err != nil {
		return nil, fmt.Errorf("failed to find variants: %w", err)
	}
	defer rows.Close()

	variants := make([]Variant, 0)
	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Size, &v.Color, &v.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

func (s *PgCatalogStore) FindByCategory(ctx context.Context, categoryID uuid.UUID, offset, limit int32) ([]Product, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, categoryID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to look up category: %w", err)
	}
	if !exists {
		return nil, sferrors.ErrCategoryNotFound
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE category_id = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3`,
		categoryID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find products by category: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (s *PgCatalogStore) Categories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to find categories: %w", err)
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *PgCatalogStore) CreateCategory(ctx context.Context, name string) (*Category, error) {
	var c Category
	err := s.db.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id, name, created_at`,
		name).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, sferrors.ErrCategoryExists
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &c, nil
}

func (s *PgCatalogStore) CreateProduct(ctx context.Context, product NewProduct, variants []NewVariant) (*Product, []Variant, error) {
	var created Product
	createdVariants := make([]Variant, 0, len(variants))

	txErr := withTransaction(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		created, err = scanProduct(tx.QueryRow(ctx,
			`INSERT INTO products (category_id, name, description, price, image_url)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING `+productColumns,
			product.CategoryID, product.Name, product.Description, product.Price, product.ImageURL))
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.ConstraintName == "products_category_id_fkey" {
				return sferrors.ErrCategoryNotFound
			}
			return fmt.Errorf("failed to create product: %w", err)
		}

		for _, v := range variants {
			var row Variant
			err := tx.QueryRow(ctx,
				`INSERT INTO variants (product_id, size, color, stock)
				 VALUES ($1, $2, $3, $4)
				 RETURNING id, product_id, size, color, stock`,
				created.ID, v.Size, v.Color, v.Stock).Scan(&row.ID, &row.ProductID, &row.Size, &row.Color, &row.Stock)
			if err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
					return sferrors.ErrVariantMatrix
				}
				return fmt.Errorf("failed to create variant: %w", err)
			}
			createdVariants = append(createdVariants, row)
		}
		return nil
	})

	if txErr != nil {
		return nil, nil, txErr
	}
	return &created, createdVariants, nil
}

func (s *PgCatalogStore) VariantStock(ctx context.Context, variantID uuid.UUID) (int32, error) {
	var stock int32
	err := s.db.QueryRow(ctx, `SELECT stock FROM variants WHERE id = $1`, variantID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, sferrors.ErrVariantNotFound
		}
		return 0, fmt.Errorf("failed to look up variant stock: %w", err)
	}
	return stock, nil
}

func (s *PgCatalogStore) ProductExists(ctx context.Context, productID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to look up product: %w", err)
	}
	return exists, nil
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
