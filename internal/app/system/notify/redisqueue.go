// internal/app/system/notify/redisqueue.go
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/hidapi/internal/app/system/ids"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Job is one queued notification.
type Job struct {
	ID         string    `json:"id"`
	Template   string    `json:"template"`
	Payload    Payload   `json:"payload"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
	Attempts   int       `json:"attempts,omitempty"`
}

// RedisQueue is a Sink that pushes jobs onto a Redis list for a
// QueueWorker to deliver.
type RedisQueue struct {
	rdb *redis.Client
	key string
}

// NewRedisQueue returns a queue on list key.
func NewRedisQueue(rdb *redis.Client, key string) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: key}
}

// Key returns the pending list name.
func (q *RedisQueue) Key() string { return q.key }

// FailedKey returns the list holding jobs that exhausted their attempts.
func (q *RedisQueue) FailedKey() string { return q.key + ":failed" }

// Notify enqueues the notification.
func (q *RedisQueue) Notify(ctx context.Context, template string, p Payload) error {
	return q.push(ctx, q.key, Job{
		ID:         ids.NewJobID(),
		Template:   template,
		Payload:    p,
		EnqueuedAt: time.Now().UTC(),
	})
}

func (q *RedisQueue) push(ctx context.Context, key string, j Job) error {
	b, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("notify: encode job: %w", err)
	}
	if err := q.rdb.LPush(ctx, key, b).Err(); err != nil {
		return fmt.Errorf("notify: enqueue: %w", err)
	}
	return nil
}

// Pop waits up to wait for the oldest job. It returns (nil, nil) on timeout.
func (q *RedisQueue) Pop(ctx context.Context, wait time.Duration) (*Job, error) {
	res, err := q.rdb.BRPop(ctx, wait, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var j Job
	if err := json.Unmarshal([]byte(res[1]), &j); err != nil {
		return nil, fmt.Errorf("notify: decode job: %w", err)
	}
	return &j, nil
}

// Len returns the number of pending jobs.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}

// QueueWorker drains a RedisQueue into a delivery sink.
type QueueWorker struct {
	queue       *RedisQueue
	sink        Sink
	log         *zap.Logger
	maxAttempts int
	wait        time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewQueueWorker returns a worker delivering jobs from queue to sink.
func NewQueueWorker(queue *RedisQueue, sink Sink, logger *zap.Logger, maxAttempts int) *QueueWorker {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &QueueWorker{
		queue:       queue,
		sink:        sink,
		log:         logger,
		maxAttempts: maxAttempts,
		wait:        time.Second,
	}
}

// Start begins the delivery loop.
func (w *QueueWorker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.wg.Add(1)
	go w.run(ctx)
	w.log.Info("notification queue worker started", zap.String("queue", w.queue.Key()))
}

// Stop ends the loop and waits for the in-flight job.
func (w *QueueWorker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.wg.Wait()
	w.log.Info("notification queue worker stopped")
}

func (w *QueueWorker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		if ctx.Err() != nil {
			return
		}
		j, err := w.queue.Pop(ctx, w.wait)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Error("notification queue pop failed", zap.Error(err))
			time.Sleep(w.wait)
			continue
		}
		if j != nil {
			w.Deliver(ctx, *j)
		}
	}
}

// Deliver sends one job, requeueing it on failure until maxAttempts is
// reached, then parking it on the failed list.
func (w *QueueWorker) Deliver(ctx context.Context, j Job) {
	err := w.sink.Notify(ctx, j.Template, j.Payload)
	if err == nil {
		return
	}
	j.Attempts++
	key := w.queue.Key()
	if j.Attempts >= w.maxAttempts {
		key = w.queue.FailedKey()
	}
	w.log.Warn("queued notification failed",
		zap.String("job_id", j.ID),
		zap.String("template", j.Template),
		zap.Int("attempts", j.Attempts),
		zap.Error(err))
	if perr := w.queue.push(context.Background(), key, j); perr != nil {
		w.log.Error("requeue failed", zap.String("job_id", j.ID), zap.Error(perr))
	}
}
