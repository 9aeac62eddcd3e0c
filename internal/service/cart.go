// Package service provides the implementation of storefront business logic.
package service

import (
	"context"
	"fmt"

	"github.com/abgdnv/storefront/internal/identity"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// CartService manages the per-identity collection of (variant, quantity) entries.
// It abstracts the underlying business logic and data access.
type CartService interface {
	// Count returns the number of distinct variant lines in the identity's cart.
	// A guest with no session cart yet gets 0.
	Count(ctx context.Context, id identity.Identity) (int64, error)

	// Add merges the requested quantity into the identity's cart line for the
	// variant, bounded by the variant's available stock, and returns the new line
	// count. Returns ErrOutOfStock if the merged quantity would exceed stock,
	// ErrVariantNotFound for an unknown variant.
	Add(ctx context.Context, id identity.Identity, variantID uuid.UUID, qty int32) (int64, error)

	// Decrement reduces the line's quantity by one, removing the line at quantity 1,
	// and returns the new line count. A missing line is a benign no-op.
	Decrement(ctx context.Context, id identity.Identity, variantID uuid.UUID) (int64, error)

	// Remove deletes the line if present and returns the new line count. Idempotent.
	Remove(ctx context.Context, id identity.Identity, variantID uuid.UUID) (int64, error)
}

// Cart implements CartService over a pair of stores: persistent rows for
// authenticated users and session-scoped memory for guests. The backend is
// picked once per call by identity kind, so none of the operations branch on
// "is the user logged in" anywhere else.
type Cart struct {
	users      store.CartStore
	guests     store.CartStore
	itemsAdded metric.Int64Counter
}

// NewCartService creates a new CartService with the provided per-kind stores.
func NewCartService(users, guests store.CartStore) *Cart {
	meter := otel.Meter("storefront")
	itemsAdded, err := meter.Int64Counter("cart_items_added", metric.WithDescription("Total number of cart add operations"))
	if err != nil {
		panic(fmt.Sprintf("failed to create cart_items_added counter: %v", err))
	}
	return &Cart{
		users:      users,
		guests:     guests,
		itemsAdded: itemsAdded,
	}
}

// storeFor selects the backend for the identity's kind.
func (s *Cart) storeFor(id identity.Identity) store.CartStore {
	if id.Kind == identity.KindUser {
		return s.users
	}
	return s.guests
}

func (s *Cart) Count(ctx context.Context, id identity.Identity) (int64, error) {
	count, err := s.storeFor(id).Count(ctx, id.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to count cart lines: %w", err)
	}
	return count, nil
}

func (s *Cart) Add(ctx context.Context, id identity.Identity, variantID uuid.UUID, qty int32) (int64, error) {
	count, err := s.storeFor(id).Add(ctx, id.ID, variantID, qty)
	if err != nil {
		return 0, err
	}
	s.itemsAdded.Add(ctx, int64(qty))
	return count, nil
}

func (s *Cart) Decrement(ctx context.Context, id identity.Identity, variantID uuid.UUID) (int64, error) {
	count, err := s.storeFor(id).Decrement(ctx, id.ID, variantID)
	if err != nil {
		return 0, fmt.Errorf("failed to decrement cart line: %w", err)
	}
	return count, nil
}

func (s *Cart) Remove(ctx context.Context, id identity.Identity, variantID uuid.UUID) (int64, error) {
	count, err := s.storeFor(id).Remove(ctx, id.ID, variantID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove cart line: %w", err)
	}
	return count, nil
}
