package testutil

import (
	"context"
	"net/http"

	"github.com/dalemusser/hidapi/internal/app/system/auth"
	"github.com/dalemusser/hidapi/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that call a handler method directly.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// WithActor returns r carrying a as the authenticated actor.
func WithActor(r *http.Request, a authz.Actor) *http.Request {
	return r.WithContext(auth.WithActor(r.Context(), a))
}

// WithClientCredentials sets the API client headers on r.
func WithClientCredentials(r *http.Request, clientID, secret string) *http.Request {
	r.Header.Set(auth.HeaderClientID, clientID)
	r.Header.Set(auth.HeaderClientSecret, secret)
	return r
}
