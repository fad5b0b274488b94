package auth

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

// Identity is what a verified bearer token says about the caller.
type Identity struct {
	UserID primitive.ObjectID
	Role   string
}

func (i Identity) IsAdmin() bool { return i.Role == models.RoleAdmin }

type ctxKey int

const identityKey ctxKey = 1

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
