package service

import (
	"context"
	"strings"
)

// Roles recognised by the service.
const (
	RoleAdmin = "admin"
)

// Actor is the caller of a mutating operation.
type Actor struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return strings.EqualFold(strings.TrimSpace(a.Role), RoleAdmin)
}

type idempotencyKeyCtx struct{}

// WithIdempotencyKey attaches a client idempotency key to ctx. Create
// operations reject a key they have already seen.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	key = strings.TrimSpace(key)
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, idempotencyKeyCtx{}, key)
}

// IdempotencyKey returns the key attached to ctx, if any.
func IdempotencyKey(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(idempotencyKeyCtx{}).(string)
	return key, ok && key != ""
}
