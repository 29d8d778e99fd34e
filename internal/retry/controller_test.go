package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walksocr/internal/domain"
)

// newFakeClockController records requested delays instead of sleeping.
func newFakeClockController(cfg Config) (*Controller, *[]time.Duration) {
	c := NewController(cfg)
	var slept []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return c, &slept
}

func TestExecute_SucceedsFirstAttempt(t *testing.T) {
	c, slept := newFakeClockController(DefaultConfig())

	result, err := c.Execute(context.Background(), domain.KindRG, func(ctx context.Context, attempt int) (*domain.DocumentResult, error) {
		return &domain.DocumentResult{Kind: domain.KindRG, Success: true}, nil
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Empty(t, *slept)
}

func TestExecute_RetryBound_TransportError(t *testing.T) {
	c, slept := newFakeClockController(DefaultConfig())

	calls := 0
	result, err := c.Execute(context.Background(), domain.KindRG, func(ctx context.Context, attempt int) (*domain.DocumentResult, error) {
		calls++
		return nil, errors.New("connection timeout")
	})
	require.NoError(t, err)

	// max_retries=3 means exactly 4 attempts: initial plus 3 retries.
	assert.Equal(t, 4, calls)
	assert.False(t, result.Success)
	assert.Equal(t, 4, result.Attempts)
	assert.Contains(t, result.Error, "failed after 4 attempts")
	assert.Contains(t, result.Error, "connection timeout")
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, *slept)
}

func TestExecute_ThreeAttemptsWithMaxRetriesTwo(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRetries = 2
	c, _ := newFakeClockController(cfg)

	calls := 0
	result, err := c.Execute(context.Background(), domain.KindRG, func(ctx context.Context, attempt int) (*domain.DocumentResult, error) {
		calls++
		return nil, errors.New("connection timeout")
	})
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, result.Attempts)
	assert.Contains(t, result.Error, "connection timeout")
}

func TestExecute_NonRetryableFailsImmediately(t *testing.T) {
	c, slept := newFakeClockController(DefaultConfig())

	calls := 0
	result, err := c.Execute(context.Background(), domain.KindCNPJ, func(ctx context.Context, attempt int) (*domain.DocumentResult, error) {
		calls++
		return nil, errors.New("invalid api key")
	})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, "invalid api key", result.Error)
	assert.Empty(t, *slept)
}

func TestExecute_QualityRejectionIsRetryable(t *testing.T) {
	c, _ := newFakeClockController(DefaultConfig())

	rejected := &domain.QualityMetrics{Score: 33.3, ValidFields: 1, TotalRequired: 3, Accepted: false}
	calls := 0
	result, err := c.Execute(context.Background(), domain.KindCNPJ, func(ctx context.Context, attempt int) (*domain.DocumentResult, error) {
		calls++
		if calls < 3 {
			return &domain.DocumentResult{
				Kind:    domain.KindCNPJ,
				Success: false,
				Quality: rejected,
				Error:   "extraction quality below minimum required fields",
			}, nil
		}
		return &domain.DocumentResult{Kind: domain.KindCNPJ, Success: true}, nil
	})
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
}

func TestExecute_QualityRejectionExhaustsRetries(t *testing.T) {
	c, _ := newFakeClockController(DefaultConfig())

	rejected := &domain.QualityMetrics{Score: 0, TotalRequired: 3, Accepted: false}
	result, err := c.Execute(context.Background(), domain.KindCNPJ, func(ctx context.Context, attempt int) (*domain.DocumentResult, error) {
		return &domain.DocumentResult{
			Kind:    domain.KindCNPJ,
			Success: false,
			Quality: rejected,
			Error:   "extraction quality below minimum required fields",
		}, nil
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 4, result.Attempts)
	// The last quality metrics survive into the terminal failure.
	require.NotNil(t, result.Quality)
	assert.False(t, result.Quality.Accepted)
	assert.Contains(t, result.Error, "failed after 4 attempts")
}

func TestExecute_CancellationAbandonsDocument(t *testing.T) {
	c := NewController(DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())

	c.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	result, err := c.Execute(ctx, domain.KindRG, func(ctx context.Context, attempt int) (*domain.DocumentResult, error) {
		return nil, errors.New("connection timeout")
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}
