package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/pkg/jobs"
)

func TestTokenSweeperSweep(t *testing.T) {
	ledger := newMemLedger()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()
	require.NoError(t, ledger.Create(ctx, &models.RefreshToken{UserID: 1, Token: "old", ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, ledger.Create(ctx, &models.RefreshToken{UserID: 1, Token: "live", ExpiresAt: now.Add(time.Hour)}))
	metrics := NewMetricsService()
	sweeper := NewTokenSweeper(ledger, time.Minute, metrics, nil)

	n, err := sweeper.Sweep(ctx, now)
	require.NoError(t, err)

	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, ledger.count())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.tokensPurged))
}

func TestTokenSweeperDisabled(t *testing.T) {
	sweeper := NewTokenSweeper(newMemLedger(), 0, nil, nil)

	assert.False(t, sweeper.Enabled())
	assert.NoError(t, sweeper.Start(context.Background()))
	sweeper.Stop()
}

func TestTokenSweeperRejectsUnexpectedPayload(t *testing.T) {
	sweeper := NewTokenSweeper(newMemLedger(), time.Minute, nil, nil)

	err := sweeper.handle(context.Background(), jobs.Job{Type: sweepJobType, Payload: "now"})
	assert.Error(t, err)
}
