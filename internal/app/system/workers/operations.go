// internal/app/system/workers/operations.go
package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/dalemusser/hidapi/internal/app/system/timeouts"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher reloads a cache from its source.
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// OperationsRefresher reloads the operations cache on a cron schedule.
type OperationsRefresher struct {
	target   Refresher
	log      *zap.Logger
	schedule string
	cron     *cron.Cron
	onResult func(count int, err error)

	mu      sync.Mutex
	running bool
}

// NewOperationsRefresher creates a refresher for target. schedule is a
// standard five-field cron spec or a descriptor such as "@every 15m".
// onResult, if non-nil, is called after every run (used for metrics).
func NewOperationsRefresher(target Refresher, logger *zap.Logger, schedule string, onResult func(int, error)) *OperationsRefresher {
	return &OperationsRefresher{
		target:   target,
		log:      logger,
		schedule: schedule,
		onResult: onResult,
	}
}

// Start runs one refresh immediately and then schedules the rest.
func (w *OperationsRefresher) Start() error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(w.schedule, w.RunOnce); err != nil {
		return fmt.Errorf("operations refresher: bad schedule %q: %w", w.schedule, err)
	}

	w.mu.Lock()
	w.cron = c
	w.running = true
	w.mu.Unlock()

	w.RunOnce()
	c.Start()
	w.log.Info("operations refresher started", zap.String("schedule", w.schedule))
	return nil
}

// Stop halts scheduling and waits for a running refresh to finish.
func (w *OperationsRefresher) Stop() {
	w.mu.Lock()
	c, running := w.cron, w.running
	w.running = false
	w.mu.Unlock()
	if !running {
		return
	}
	<-c.Stop().Done()
	w.log.Info("operations refresher stopped")
}

// RunOnce performs a single refresh.
func (w *OperationsRefresher) RunOnce() {
	ctx, cancel := timeouts.WithTimeout(context.Background(), timeouts.Long(), w.log, "refresh operations")
	defer cancel()

	count, err := w.target.Refresh(ctx)
	if w.onResult != nil {
		w.onResult(count, err)
	}
	if err != nil {
		w.log.Error("failed to refresh operations", zap.Error(err))
		return
	}
	w.log.Info("refreshed operations", zap.Int("count", count))
}
