package store

import (
	"context"
	"sync"
	"time"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/google/uuid"
)

// MemCartStore implements CartStore for guest sessions. The scope is the guest
// session id; entries live in process memory only and disappear with the session.
// Expired sessions are dropped lazily on access, so the store never needs a
// background sweeper.
type MemCartStore struct {
	mu       sync.Mutex
	variants VariantReader
	ttl      time.Duration
	now      func() time.Time
	sessions map[uuid.UUID]*cartSession
}

type cartSession struct {
	items   map[uuid.UUID]int32
	touched time.Time
}

// NewMemCartStore creates a guest cart store. The variant reader supplies the
// stock ceiling enforced on every add.
func NewMemCartStore(variants VariantReader, ttl time.Duration) *MemCartStore {
	return &MemCartStore{
		variants: variants,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*cartSession),
	}
}

// session returns the live session for the scope, dropping it first if expired.
// Callers must hold the mutex.
func (m *MemCartStore) session(scope uuid.UUID) (*cartSession, bool) {
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

func (m *MemCartStore) Count(_ context.Context, scope uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.session(scope)
	if !ok {
		return 0, nil
	}
	return int64(len(sess.items)), nil
}

func (m *MemCartStore) Add(ctx context.Context, scope, variantID uuid.UUID, qty int32) (int64, error) {
	// The stock read hits the database; keep it outside the session lock.
	stock, err := m.variants.VariantStock(ctx, variantID)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.session(scope)
	if !ok {
		sess = &cartSession{items: make(map[uuid.UUID]int32)}
		m.sessions[scope] = sess
	}

	if sess.items[variantID]+qty > stock {
		return 0, sferrors.ErrOutOfStock
	}
	sess.items[variantID] += qty
	sess.touched = m.now()
	return int64(len(sess.items)), nil
}

func (m *MemCartStore) Decrement(_ context.Context, scope, variantID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.session(scope)
	if !ok {
		return 0, nil
	}

	if qty, present := sess.items[variantID]; present {
		if qty <= 1 {
			delete(sess.items, variantID)
		} else {
			sess.items[variantID] = qty - 1
		}
	}
	sess.touched = m.now()
	return int64(len(sess.items)), nil
}

func (m *MemCartStore) Remove(_ context.Context, scope, variantID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.session(scope)
	if !ok {
		return 0, nil
	}

	delete(sess.items, variantID)
	sess.touched = m.now()
	return int64(len(sess.items)), nil
}
