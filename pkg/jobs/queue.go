// Package jobs runs background work on a small in-process worker pool.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBackoff = time.Minute

// Job is one unit of work. Payload is interpreted by the queue's handler.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job; a returned error schedules a retry.
type Handler func(context.Context, Job) error

// QueueConfig tunes a Queue. Zero values fall back to one worker, a buffer of
// four jobs per worker, three retries and a one second base retry delay.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

func (c QueueConfig) withDefaults() QueueConfig {
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.BufferSize <= 0 {
		c.BufferSize = c.Workers * 4
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// Queue dispatches jobs to a fixed set of goroutines. Failed jobs are retried
// with a doubling delay capped at one minute.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	logger  *zap.Logger
	jobs    chan Job

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewQueue builds a stopped queue.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	cfg = cfg.withDefaults()
	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  cfg.Logger.With(zap.String("queue", name)),
		jobs:    make(chan Job, cfg.BufferSize),
	}
}

// Start launches the workers. Calling it on a running queue is a no-op.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ctx != nil {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.spawn(q.work)
	}
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers))
}

// Stop cancels workers, schedulers and pending retries and waits for them.
func (q *Queue) Stop() {
	q.mu.Lock()
	cancel := q.cancel
	q.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	q.wg.Wait()
	q.logger.Info("queue stopped")
}

// Enqueue hands job to the workers, blocking while the buffer is full.
func (q *Queue) Enqueue(job Job) error {
	ctx, err := q.running()
	if err != nil {
		return err
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	}
}

// Schedule enqueues build(now) on every tick until the queue stops.
func (q *Queue) Schedule(interval time.Duration, build func(now time.Time) Job) error {
	if interval <= 0 {
		return fmt.Errorf("queue %s: schedule interval must be positive", q.name)
	}
	ctx, err := q.running()
	if err != nil {
		return err
	}

	q.spawn(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if err := q.Enqueue(build(now.UTC())); err != nil {
					q.logger.Warn("scheduled enqueue failed", zap.Error(err))
				}
			}
		}
	})
	return nil
}

func (q *Queue) running() (context.Context, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ctx == nil {
		return nil, fmt.Errorf("queue %s not started", q.name)
	}
	return q.ctx, nil
}

func (q *Queue) spawn(fn func()) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		fn()
	}()
}

func (q *Queue) work() {
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			if err := q.run(job); err != nil {
				q.retry(job, err)
			}
		}
	}
}

func (q *Queue) run(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return q.handler(q.ctx, job)
}

func (q *Queue) retry(job Job, cause error) {
	job.Attempt++
	fields := []zap.Field{zap.String("job_id", job.ID), zap.String("type", job.Type), zap.Int("attempt", job.Attempt), zap.Error(cause)}
	if job.Attempt > q.cfg.MaxRetries {
		q.logger.Error("job dropped after retries", fields...)
		return
	}
	q.logger.Warn("job failed, retrying", fields...)

	delay := q.cfg.RetryDelay << (job.Attempt - 1)
	if delay <= 0 || delay > maxBackoff {
		delay = maxBackoff
	}
	q.spawn(func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
		case <-timer.C:
			if err := q.Enqueue(job); err != nil {
				q.logger.Warn("requeue failed", zap.String("job_id", job.ID), zap.Error(err))
			}
		}
	})
}
