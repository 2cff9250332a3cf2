// internal/app/system/auth/context.go
package auth

import (
	"context"

	"github.com/dalemusser/hidapi/internal/app/system/authz"
)

type ctxKey struct{}

// WithActor returns ctx carrying a.
func WithActor(ctx context.Context, a authz.Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// ActorFrom returns the Actor stored by the middleware.
func ActorFrom(ctx context.Context) (authz.Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(authz.Actor)
	return a, ok
}
