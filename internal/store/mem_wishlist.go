package store

import (
	"context"
	"sync"
	"time"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/google/uuid"
)

// MemWishlistStore implements WishlistStore for guest sessions, mirroring
// MemCartStore's lifecycle: per-session sets, lazily expired.
type MemWishlistStore struct {
	mu       sync.Mutex
	products ProductReader
	ttl      time.Duration
	now      func() time.Time
	sessions map[uuid.UUID]*wishlistSession
}

type wishlistSession struct {
	items   map[uuid.UUID]struct{}
	touched time.Time
}

// NewMemWishlistStore creates a guest wishlist store.
func NewMemWishlistStore(products ProductReader, ttl time.Duration) *MemWishlistStore {
	return &MemWishlistStore{
		products: products,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*wishlistSession),
	}
}

// session returns the live session for the scope, dropping it first if expired.
// Callers must hold the mutex.
func (m *MemWishlistStore) session(scope uuid.UUID) (*wishlistSession, bool) {
	sess, ok := m.sessions[scope]
	if !ok {
		return nil, false
	}
	if m.now().Sub(sess.touched) > m.ttl {
		delete(m.sessions, scope)
		return nil, false
	}
	return sess, true
}

func (m *MemWishlistStore) Add(ctx context.Context, scope, productID uuid.UUID) (bool, error) {
	exists, err := m.products.ProductExists(ctx, productID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, sferrors.ErrProductNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.session(scope)
	if !ok {
		sess = &wishlistSession{items: make(map[uuid.UUID]struct{})}
		m.sessions[scope] = sess
	}
	sess.touched = m.now()

	if _, present := sess.items[productID]; present {
		return false, nil
	}
	sess.items[productID] = struct{}{}
	return true, nil
}

func (m *MemWishlistStore) Remove(_ context.Context, scope, productID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.session(scope)
	if !ok {
		return nil
	}
	delete(sess.items, productID)
	sess.touched = m.now()
	return nil
}
