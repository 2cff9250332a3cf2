// Package apperr holds the error taxonomy shared by the feature packages and
// the HTTP edge.
//
// Partial authorization is deliberately absent: dropped fields are not an
// error and never reach the caller.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrForbidden means the actor has no standing on the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means a referenced resource or profile does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStorage wraps document store failures. The operation is aborted.
	ErrStorage = errors.New("storage failure")
	// ErrNotification wraps sink failures. These are logged, never returned
	// to a caller after a committed write.
	ErrNotification = errors.New("notification failure")
	// ErrBadRequest means the request could not be decoded or is invalid.
	ErrBadRequest = errors.New("bad request")
	// ErrUnauthenticated means no usable credentials were presented.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrRateLimited means the actor exceeded its request budget.
	ErrRateLimited = errors.New("rate limited")
)

// Storage wraps err as a storage failure for op.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// Lookup translates a store read error: a missing document becomes
// ErrNotFound naming what, anything else a storage failure.
func Lookup(what string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return Storage("load "+what, err)
}

// BadRequest returns an ErrBadRequest carrying msg.
func BadRequest(msg string) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, msg)
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// Code is the short machine-readable name for err used in JSON bodies.
func Code(err error) string {
	switch Status(err) {
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusOK:
		return ""
	}
	return "internal"
}
