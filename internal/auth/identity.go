package auth

import (
	"context"
	"time"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Identity describes the authenticated caller of a request.
type Identity struct {
	UserID    string
	Role      entities.UserRole // Set once RequireRole has loaded the user
	TokenID   string
	ExpiresAt time.Time
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying the identity.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the identity attached by Authenticate.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}
