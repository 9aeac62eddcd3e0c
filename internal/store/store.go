// Package store provides interfaces and implementations for storefront storage.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Category is a product grouping shown in navigation.
type Category struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Product is a catalog item. Price is stored in minor currency units.
type Product struct {
	ID          uuid.UUID
	CategoryID  uuid.UUID
	Name        string
	Description string
	Price       int64
	ImageURL    string
	CreatedAt   time.Time
}

// Variant is a concrete purchasable SKU of a product.
type Variant struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Size      string
	Color     string
	Stock     int32
}

// NewProduct carries the fields needed to create a product.
type NewProduct struct {
	CategoryID  uuid.UUID
	Name        string
	Description string
	Price       int64
	ImageURL    string
}

// NewVariant is one row of the variant matrix of a new product.
type NewVariant struct {
	Size  string
	Color string
	Stock int32
}

// User is a registered account.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// CartStore holds (scope, variant, quantity) entries for one kind of identity scope.
// At most one entry exists per (scope, variant); a stored quantity is always in
// [1, variant stock]. Implementations enforce the stock ceiling atomically with
// the upsert, so a concurrent add cannot push a line past the available stock.
type CartStore interface {
	// Count returns the number of distinct variant lines in the scope's cart.
	Count(ctx context.Context, scope uuid.UUID) (int64, error)

	// Add merges qty into the existing entry (or creates one) and returns the new
	// line count. Returns ErrOutOfStock if existing+qty would exceed the variant's
	// stock (no mutation occurs), ErrVariantNotFound for an unknown variant.
	Add(ctx context.Context, scope, variantID uuid.UUID, qty int32) (int64, error)

	// Decrement reduces the entry's quantity by one and returns the new line count.
	// An entry at quantity 1 is deleted. A missing entry is a benign no-op.
	Decrement(ctx context.Context, scope, variantID uuid.UUID) (int64, error)

	// Remove deletes the entry if present and returns the new line count.
	// Idempotent: removing an absent entry is not an error.
	Remove(ctx context.Context, scope, variantID uuid.UUID) (int64, error)
}

// WishlistStore holds (scope, product) entries for one kind of identity scope.
type WishlistStore interface {
	// Add records the product in the scope's wishlist. Returns false if the product
	// was already present (no duplicate is created), ErrProductNotFound for an
	// unknown product.
	Add(ctx context.Context, scope, productID uuid.UUID) (added bool, err error)

	// Remove deletes the entry if present. Idempotent.
	Remove(ctx context.Context, scope, productID uuid.UUID) error
}

// VariantReader supplies the stock ceiling for cart additions.
type VariantReader interface {
	// VariantStock returns the available units for a variant.
	// Returns ErrVariantNotFound if no variant exists with the given ID.
	VariantStock(ctx context.Context, variantID uuid.UUID) (int32, error)
}

// ProductReader reports product existence for wishlist additions.
type ProductReader interface {
	ProductExists(ctx context.Context, productID uuid.UUID) (bool, error)
}

// CatalogStore is an interface for catalog storage operations.
type CatalogStore interface {
	VariantReader
	ProductReader

	// FindAll returns available products with pagination support.
	FindAll(ctx context.Context, offset, limit int32) ([]Product, error)

	// FindByID retrieves a product and its variants.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, []Variant, error)

	// FindByCategory returns products belonging to a category.
	// Returns ErrCategoryNotFound if no category exists with the given ID.
	FindByCategory(ctx context.Context, categoryID uuid.UUID, offset, limit int32) ([]Product, error)

	// Categories returns all categories.
	Categories(ctx context.Context) ([]Category, error)

	// CreateCategory adds a new category.
	// Returns ErrCategoryExists if the name is already taken.
	CreateCategory(ctx context.Context, name string) (*Category, error)

	// CreateProduct adds a product together with its variant matrix in one
	// transaction; either everything is stored or nothing is.
	CreateProduct(ctx context.Context, product NewProduct, variants []NewVariant) (*Product, []Variant, error)
}

// UserStore is an interface for account storage operations.
type UserStore interface {
	// Create adds a new account. Returns ErrEmailTaken if the email is registered.
	Create(ctx context.Context, email, name, passwordHash string) (*User, error)

	// FindByEmail retrieves an account by email.
	// Returns ErrUserNotFound if no account exists with the given email.
	FindByEmail(ctx context.Context, email string) (*User, error)
}
