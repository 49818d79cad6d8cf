package middleware

import (
	"context"

	"github.com/baharkarakas/accounts-backend/internal/models"
)

type identityKey struct{}

// Identity is the authenticated caller, attached by the gate and read by the
// policy and handlers. It is a plain value; nothing downstream mutates it.
type Identity struct {
	UserID string
	Role   models.Role
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
