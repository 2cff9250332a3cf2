package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	clientstore "github.com/dalemusser/hidapi/internal/app/store/clients"
	"github.com/dalemusser/hidapi/internal/app/system/auth"
	"github.com/dalemusser/hidapi/internal/app/system/authz"
	"github.com/dalemusser/hidapi/internal/app/system/ratelimit"
	"github.com/dalemusser/hidapi/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type fakeProfiles map[string]models.Profile

func (f fakeProfiles) GetByUserID(_ context.Context, userID string) (models.Profile, error) {
	p, ok := f[userID]
	if !ok {
		return models.Profile{}, mongo.ErrNoDocuments
	}
	return p, nil
}

type fakeClients map[string]models.Client

func (f fakeClients) Verify(_ context.Context, clientID, secret string) (models.Client, error) {
	c, ok := f[clientID]
	if !ok || c.SecretHash != secret {
		return models.Client{}, clientstore.ErrInvalidCredentials
	}
	return c, nil
}

const secret = "test-signing-secret-32-bytes-long!"

func newAuthenticator(limiter *ratelimit.Limiter) *auth.Authenticator {
	profiles := fakeProfiles{
		"hid-ana": {ID: primitive.NewObjectID(), UserID: "hid-ana", NameGiven: "Ana", Roles: []string{"manager:hti"}, Verified: true, Status: true},
		"hid-old": {ID: primitive.NewObjectID(), UserID: "hid-old", Status: false},
	}
	clients := fakeClients{
		"ops":    {ClientID: "ops", SecretHash: "pw", Trusted: true, Status: true},
		"public": {ClientID: "public", SecretHash: "pw", Status: true},
	}
	return auth.New(auth.Config{Secret: secret, Issuer: "hidapi"}, profiles, clients, limiter, nil, zap.NewNop())
}

// capture runs the middleware and returns the status and resolved actor.
func capture(t *testing.T, a *auth.Authenticator, req *http.Request) (int, authz.Actor, bool) {
	t.Helper()
	var got authz.Actor
	var found bool
	h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = auth.ActorFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code, got, found
}

func TestMiddleware_BearerUser(t *testing.T) {
	a := newAuthenticator(nil)
	tok, err := a.IssueToken("hid-ana", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/v0/contacts", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	code, actor, ok := capture(t, a, req)
	if code != http.StatusNoContent || !ok {
		t.Fatalf("expected pass-through, got %d", code)
	}
	if !actor.IsUser() || actor.UserID != "hid-ana" {
		t.Errorf("unexpected actor: %+v", actor)
	}
	if !authz.IsManagerAt(actor.Profile, "hti") {
		t.Error("expected profile roles to be carried")
	}
}

func TestMiddleware_UserWithoutProfile(t *testing.T) {
	a := newAuthenticator(nil)
	tok, _ := a.IssueToken("hid-new", time.Hour)
	req := httptest.NewRequest(http.MethodPost, "/v0/contacts", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	code, actor, _ := capture(t, a, req)
	if code != http.StatusNoContent {
		t.Fatalf("status: got %d", code)
	}
	if actor.Profile != nil || actor.UserID != "hid-new" {
		t.Errorf("unexpected actor: %+v", actor)
	}
}

func TestMiddleware_Client(t *testing.T) {
	a := newAuthenticator(nil)
	req := httptest.NewRequest(http.MethodPost, "/v0/contacts", nil)
	req.Header.Set(auth.HeaderClientID, "ops")
	req.Header.Set(auth.HeaderClientSecret, "pw")

	code, actor, _ := capture(t, a, req)
	if code != http.StatusNoContent {
		t.Fatalf("status: got %d", code)
	}
	if !actor.IsTrustedClient() {
		t.Errorf("expected trusted client actor, got %+v", actor)
	}
}

func TestMiddleware_Rejections(t *testing.T) {
	a := newAuthenticator(nil)
	good, _ := a.IssueToken("hid-ana", time.Hour)
	expired, _ := a.IssueToken("hid-ana", -time.Minute)
	inactive, _ := a.IssueToken("hid-old", time.Hour)
	foreign, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "hid-ana", Issuer: "hidapi"}).SignedString([]byte("another-secret"))

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"no credentials", nil},
		{"not bearer", map[string]string{"Authorization": "Basic " + good}},
		{"expired", map[string]string{"Authorization": "Bearer " + expired}},
		{"wrong key", map[string]string{"Authorization": "Bearer " + foreign}},
		{"garbage", map[string]string{"Authorization": "Bearer abc.def.ghi"}},
		{"deactivated profile", map[string]string{"Authorization": "Bearer " + inactive}},
		{"bad client secret", map[string]string{auth.HeaderClientID: "ops", auth.HeaderClientSecret: "nope"}},
		{"unknown client", map[string]string{auth.HeaderClientID: "ghost", auth.HeaderClientSecret: "pw"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v0/contacts", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			code, _, found := capture(t, a, req)
			if code != http.StatusUnauthorized {
				t.Errorf("status: got %d, want 401", code)
			}
			if found {
				t.Error("handler should not run")
			}
		})
	}
}

func TestMiddleware_RateLimited(t *testing.T) {
	a := newAuthenticator(ratelimit.New(1, 1, time.Minute))
	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/v0/contacts", nil)
		req.Header.Set(auth.HeaderClientID, "public")
		req.Header.Set(auth.HeaderClientSecret, "pw")
		return req
	}

	if code, _, _ := capture(t, a, newReq()); code != http.StatusNoContent {
		t.Fatalf("first request: got %d", code)
	}
	if code, _, _ := capture(t, a, newReq()); code != http.StatusTooManyRequests {
		t.Errorf("second request: got %d, want 429", code)
	}
}

func TestParseToken_RejectsOtherIssuer(t *testing.T) {
	a := newAuthenticator(nil)
	other := auth.New(auth.Config{Secret: secret, Issuer: "someone-else"}, nil, nil, nil, nil, zap.NewNop())
	tok, _ := other.IssueToken("hid-ana", time.Hour)
	if _, err := a.ParseToken(tok); err == nil {
		t.Error("expected issuer mismatch to fail")
	}
}

func TestActorFrom_Empty(t *testing.T) {
	if _, ok := auth.ActorFrom(context.Background()); ok {
		t.Error("expected no actor in empty context")
	}
}
