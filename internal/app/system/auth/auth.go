// Package auth resolves the Actor for each API request.
//
// Users present a bearer JWT whose subject is their userid; API clients
// present X-HID-Client-ID and X-HID-Client-Secret. Either way the resolved
// authz.Actor is placed in the request context for the handlers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	clientstore "github.com/dalemusser/hidapi/internal/app/store/clients"
	"github.com/dalemusser/hidapi/internal/app/system/apperr"
	"github.com/dalemusser/hidapi/internal/app/system/auditlog"
	"github.com/dalemusser/hidapi/internal/app/system/authz"
	"github.com/dalemusser/hidapi/internal/app/system/ratelimit"
	"github.com/dalemusser/hidapi/internal/app/system/respond"
	"github.com/dalemusser/hidapi/internal/app/system/timeouts"
	"github.com/dalemusser/hidapi/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Request headers carrying API client credentials.
const (
	HeaderClientID     = "X-HID-Client-ID"
	HeaderClientSecret = "X-HID-Client-Secret"
)

var (
	errNoCredentials = fmt.Errorf("%w: missing credentials", apperr.ErrUnauthenticated)
	errBadToken      = fmt.Errorf("%w: invalid token", apperr.ErrUnauthenticated)
	errBadClient     = fmt.Errorf("%w: invalid client credentials", apperr.ErrUnauthenticated)
)

// ProfileLookup finds the profile behind a token subject.
type ProfileLookup interface {
	GetByUserID(ctx context.Context, userID string) (models.Profile, error)
}

// ClientVerifier checks API client credentials.
type ClientVerifier interface {
	Verify(ctx context.Context, clientID, secret string) (models.Client, error)
}

// Claims is the JWT payload for user tokens. Subject is the userid.
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Config configures token validation.
type Config struct {
	Secret string
	Issuer string
}

// Authenticator is the request authentication middleware.
type Authenticator struct {
	secret   []byte
	issuer   string
	profiles ProfileLookup
	clients  ClientVerifier
	limiter  *ratelimit.Limiter
	audit    *auditlog.Logger
	log      *zap.Logger
}

// New builds an Authenticator. limiter and audit may be nil.
func New(cfg Config, profiles ProfileLookup, clients ClientVerifier, limiter *ratelimit.Limiter, audit *auditlog.Logger, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		profiles: profiles,
		clients:  clients,
		limiter:  limiter,
		audit:    audit,
		log:      logger,
	}
}

// Middleware rejects requests without valid credentials, applies the per
// actor rate limit and stores the Actor in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := a.Resolve(r)
		if err != nil {
			if errors.Is(err, apperr.ErrUnauthenticated) {
				a.audit.AuthFailed(r.Context(), r, attemptedKey(r), err.Error())
			}
			respond.Error(w, a.log, err)
			return
		}
		if !a.limiter.Allow(actor.Key()) {
			a.audit.RateLimited(r.Context(), r, actor.Key())
			w.Header().Set("Retry-After", "60")
			respond.Error(w, a.log, apperr.ErrRateLimited)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// Resolve authenticates r and returns its Actor.
func (a *Authenticator) Resolve(r *http.Request) (authz.Actor, error) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), a.log, "authenticate")
	defer cancel()

	if id := r.Header.Get(HeaderClientID); id != "" {
		c, err := a.clients.Verify(ctx, id, r.Header.Get(HeaderClientSecret))
		switch {
		case errors.Is(err, clientstore.ErrInvalidCredentials):
			return authz.Actor{}, errBadClient
		case err != nil:
			return authz.Actor{}, apperr.Storage("verify client", err)
		}
		return authz.ClientActor(c.ClientID, c.Trusted), nil
	}

	raw, ok := bearer(r)
	if !ok {
		return authz.Actor{}, errNoCredentials
	}
	claims, err := a.ParseToken(raw)
	if err != nil {
		return authz.Actor{}, errBadToken
	}

	p, err := a.profiles.GetByUserID(ctx, claims.Subject)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		// Signed-in users without a profile yet may still create their
		// own global contact.
		return authz.UserActor(claims.Subject, nil), nil
	case err != nil:
		return authz.Actor{}, apperr.Storage("load actor profile", err)
	case !p.Status:
		return authz.Actor{}, fmt.Errorf("%w: profile deactivated", apperr.ErrUnauthenticated)
	}
	return authz.UserActor(claims.Subject, &p), nil
}

// IssueToken signs a user token valid for ttl.
func (a *Authenticator) IssueToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseToken validates raw and returns its claims.
func (a *Authenticator) ParseToken(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !tok.Valid || claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

// attemptedKey names the caller in auth failure records.
func attemptedKey(r *http.Request) string {
	if id := r.Header.Get(HeaderClientID); id != "" {
		return "client:" + id
	}
	return "ip:" + ratelimit.ClientIP(r)
}
