package service

import (
	"context"
	"fmt"

	"github.com/abgdnv/storefront/internal/identity"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/google/uuid"
)

// WishlistService manages the per-identity set of saved products.
type WishlistService interface {
	// Add records the product in the identity's wishlist. added=false reports
	// that the product was already present; no duplicate is created either way.
	// Returns ErrProductNotFound for an unknown product.
	Add(ctx context.Context, id identity.Identity, productID uuid.UUID) (added bool, err error)

	// Remove deletes the entry if present. Idempotent.
	Remove(ctx context.Context, id identity.Identity, productID uuid.UUID) error
}

// Wishlist implements WishlistService over a per-kind store pair, like Cart.
type Wishlist struct {
	users  store.WishlistStore
	guests store.WishlistStore
}

// NewWishlistService creates a new WishlistService with the provided per-kind stores.
func NewWishlistService(users, guests store.WishlistStore) *Wishlist {
	return &Wishlist{users: users, guests: guests}
}

func (s *Wishlist) storeFor(id identity.Identity) store.WishlistStore {
	if id.Kind == identity.KindUser {
		return s.users
	}
	return s.guests
}

func (s *Wishlist) Add(ctx context.Context, id identity.Identity, productID uuid.UUID) (bool, error) {
	added, err := s.storeFor(id).Add(ctx, id.ID, productID)
	if err != nil {
		return false, err
	}
	return added, nil
}

func (s *Wishlist) Remove(ctx context.Context, id identity.Identity, productID uuid.UUID) error {
	if err := s.storeFor(id).Remove(ctx, id.ID, productID); err != nil {
		return fmt.Errorf("failed to remove wishlist entry: %w", err)
	}
	return nil
}
