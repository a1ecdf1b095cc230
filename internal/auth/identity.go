package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/lalith-99/factorylink/internal/models"
)

// Identity is the authenticated caller. It is derived from the access token
// on every request and is the only source of a caller's id: request bodies
// never name the caller.
type Identity struct {
	ID    uuid.UUID
	Email string
	Role  models.Role
}

// Provider resolves the caller of the current operation.
type Provider interface {
	CurrentUser(ctx context.Context) (Identity, bool)
}

type identityKey struct{}

// WithIdentity stores the caller identity in the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromCtx returns the caller identity. ok is false when the value
// is missing or carries a nil id.
func IdentityFromCtx(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.ID == uuid.Nil {
		return Identity{}, false
	}
	return id, true
}

// ContextProvider reads the identity the auth middleware put into the
// request context.
type ContextProvider struct{}

func (ContextProvider) CurrentUser(ctx context.Context) (Identity, bool) {
	return IdentityFromCtx(ctx)
}
