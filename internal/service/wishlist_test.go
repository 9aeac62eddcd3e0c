package service

import (
	"context"
	"testing"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockWishlistStore is a mock implementation of the store.WishlistStore interface
type mockWishlistStore struct {
	added bool
	error error
	calls int
}

func (m *mockWishlistStore) Add(_ context.Context, _, _ uuid.UUID) (bool, error) {
	m.calls++
	if m.error != nil {
		return false, m.error
	}
	return m.added, nil
}

func (m *mockWishlistStore) Remove(_ context.Context, _, _ uuid.UUID) error {
	m.calls++
	return m.error
}

func Test_WishlistService_DispatchesByIdentityKind(t *testing.T) {
	users := &mockWishlistStore{added: true}
	guests := &mockWishlistStore{added: true}
	service := NewWishlistService(users, guests)

	added, err := service.Add(context.Background(), userIdentity(), uuid.New())
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 1, users.calls)
	assert.Equal(t, 0, guests.calls)

	added, err = service.Add(context.Background(), guestIdentity(), uuid.New())
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 1, guests.calls)
}

func Test_WishlistService_AddReportsExistingEntry(t *testing.T) {
	service := NewWishlistService(&mockWishlistStore{added: false}, &mockWishlistStore{})

	added, err := service.Add(context.Background(), userIdentity(), uuid.New())
	require.NoError(t, err)
	assert.False(t, added)
}

func Test_WishlistService_AddKeepsStoreSentinels(t *testing.T) {
	service := NewWishlistService(&mockWishlistStore{}, &mockWishlistStore{error: sferrors.ErrProductNotFound})

	_, err := service.Add(context.Background(), guestIdentity(), uuid.New())
	assert.ErrorIs(t, err, sferrors.ErrProductNotFound)
}
