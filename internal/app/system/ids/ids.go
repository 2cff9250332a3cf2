// Package ids issues identifiers for new identity records and queued jobs.
package ids

import (
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// Issuer hands out user ids. The zero value is ready to use.
type Issuer struct {
	// Prefix is prepended to every user id, e.g. "hid-".
	Prefix string
}

// NewUserID returns a sortable, unique user id for a brand-new profile.
func (i Issuer) NewUserID() string {
	return i.Prefix + strings.ToLower(newULID())
}

func newULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// NewJobID returns a random id for a queued notification.
func NewJobID() string {
	return uuid.NewString()
}
