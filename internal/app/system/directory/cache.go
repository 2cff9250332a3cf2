// internal/app/system/directory/cache.go
package directory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/hidapi/internal/domain/models"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// maxOperations bounds the cache; the real list is a few hundred entries.
const maxOperations = 5000

// Cache holds the last operations listing. Entries expire after ttl unless a
// refresh sees them again, so operations dropped by the source age out.
type Cache struct {
	src Source
	log *zap.Logger
	ops *expirable.LRU[string, models.Operation]

	mu          sync.RWMutex
	lastRefresh time.Time
}

// NewCache returns an empty cache over src.
func NewCache(src Source, ttl time.Duration, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		src: src,
		log: log,
		ops: expirable.NewLRU[string, models.Operation](maxOperations, nil, ttl),
	}
}

// Refresh reloads every operation from the source. On error the current
// entries are kept.
func (c *Cache) Refresh(ctx context.Context) (int, error) {
	ops, err := c.src.ListOperations(ctx)
	if err != nil {
		return 0, fmt.Errorf("refresh operations: %w", err)
	}
	for id, op := range ops {
		c.ops.Add(id, op)
	}

	c.mu.Lock()
	c.lastRefresh = time.Now()
	c.mu.Unlock()

	c.log.Debug("operations refreshed", zap.Int("count", len(ops)))
	return len(ops), nil
}

// Operation returns the cached operation for id.
func (c *Cache) Operation(id string) (models.Operation, bool) {
	return c.ops.Get(id)
}

// LocationName returns the display name of operation id.
func (c *Cache) LocationName(id string) (string, bool) {
	op, ok := c.ops.Get(id)
	if !ok || op.Name == "" {
		return "", false
	}
	return op.Name, true
}

// Len reports how many operations are cached.
func (c *Cache) Len() int {
	return c.ops.Len()
}

// LastRefresh reports when the cache was last filled successfully.
func (c *Cache) LastRefresh() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastRefresh
}
