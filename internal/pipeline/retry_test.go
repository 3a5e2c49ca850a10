package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-data-pipeline/internal/model"
)

var fastRetry = model.RetryConfig{
	MaxAttempts:       3,
	InitialDelay:      time.Millisecond,
	MaxDelay:          5 * time.Millisecond,
	BackoffMultiplier: 2,
}

func TestWithRetry_EventualSuccess(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), fastRetry, nil, "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_Exhausted(t *testing.T) {
	calls := 0
	transient := errors.New("transient")
	err := withRetry(context.Background(), fastRetry, nil, "insert", func(context.Context) error {
		calls++
		return transient
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, transient)
	assert.Contains(t, err.Error(), "insert failed after 3 attempts")
	assert.Equal(t, 3, calls)
}

func TestWithRetry_Permanent(t *testing.T) {
	calls := 0
	fatal := errors.New("constraint violation")
	err := withRetry(context.Background(), fastRetry, nil, "op", func(context.Context) error {
		calls++
		return Permanent(fatal)
	})

	assert.Equal(t, fatal, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastRetry
	cfg.InitialDelay = time.Hour
	cfg.MaxDelay = time.Hour

	calls := 0
	err := withRetry(ctx, cfg, nil, "op", func(context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestBackoffDelay(t *testing.T) {
	cfg := model.RetryConfig{
		InitialDelay:      100 * time.Millisecond,
		MaxDelay:          time.Second,
		BackoffMultiplier: 2,
	}

	assert.Equal(t, 100*time.Millisecond, backoffDelay(cfg, 1))
	assert.Equal(t, 200*time.Millisecond, backoffDelay(cfg, 2))
	assert.Equal(t, 400*time.Millisecond, backoffDelay(cfg, 3))
	assert.Equal(t, time.Second, backoffDelay(cfg, 10))

	cfg.Jitter = true
	for i := 0; i < 20; i++ {
		d := backoffDelay(cfg, 2)
		assert.GreaterOrEqual(t, d, 180*time.Millisecond)
		assert.LessOrEqual(t, d, 220*time.Millisecond)
	}
}
