package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-api/pkg/jobs"
)

const sweepJobType = "refresh_token_sweep"

type expiredTokenPurger interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// TokenSweeper periodically purges refresh ledger rows past their expiry.
type TokenSweeper struct {
	repo     expiredTokenPurger
	queue    *jobs.Queue
	interval time.Duration
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewTokenSweeper constructs a sweeper. A non-positive interval disables it.
func NewTokenSweeper(repo expiredTokenPurger, interval time.Duration, metrics *MetricsService, logger *zap.Logger) *TokenSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &TokenSweeper{repo: repo, interval: interval, metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue("token-sweeper", s.handle, jobs.QueueConfig{
		Workers:    1,
		MaxRetries: 2,
		RetryDelay: 5 * time.Second,
		Logger:     logger,
	})
	return s
}

// Enabled reports whether a sweep interval is configured.
func (s *TokenSweeper) Enabled() bool {
	return s.interval > 0
}

// Start launches the worker and the ticker when enabled.
func (s *TokenSweeper) Start(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	s.queue.Start(ctx)
	if err := s.queue.Schedule(s.interval, func(now time.Time) jobs.Job {
		return jobs.Job{Type: sweepJobType, Payload: now}
	}); err != nil {
		s.queue.Stop()
		return err
	}
	s.logger.Info("refresh token sweeper started", zap.Duration("interval", s.interval))
	return nil
}

// Stop halts the sweeper and waits for in-flight work.
func (s *TokenSweeper) Stop() {
	s.queue.Stop()
}

// Sweep deletes every ledger row that expired before now.
func (s *TokenSweeper) Sweep(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	s.metrics.RecordTokensPurged(n)
	if n > 0 {
		s.logger.Info("expired refresh tokens purged", zap.Int64("count", n))
	}
	return n, nil
}

func (s *TokenSweeper) handle(ctx context.Context, job jobs.Job) error {
	cutoff, ok := job.Payload.(time.Time)
	if !ok {
		return fmt.Errorf("unexpected %s payload %T", sweepJobType, job.Payload)
	}
	_, err := s.Sweep(ctx, cutoff)
	return err
}
