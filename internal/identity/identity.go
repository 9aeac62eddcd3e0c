// Package identity defines the partition key used by cart and wishlist storage:
// either a stable authenticated user id or a transient guest session id.
package identity

import (
	"context"

	"github.com/google/uuid"
)

type Kind int

const (
	// KindGuest identifies an anonymous browser session.
	KindGuest Kind = iota
	// KindUser identifies an authenticated user.
	KindUser
)

func (k Kind) String() string {
	if k == KindUser {
		return "user"
	}
	return "guest"
}

// Identity is the scope under which cart and wishlist entries are stored.
// Guest and user scopes are disjoint; entries never migrate between them.
type Identity struct {
	Kind  Kind
	ID    uuid.UUID
	Admin bool
}

type contextKey struct{}

// NewContext returns a context carrying the resolved identity.
func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext retrieves the identity placed in the context by the resolver middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
