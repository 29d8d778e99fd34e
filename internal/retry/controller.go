package retry

import (
	"context"
	"fmt"
	"log"
	"time"

	"walksocr/internal/domain"
)

// Operation is one full extraction attempt for a document: model call, parse,
// evaluation. It returns a DocumentResult (possibly a quality rejection with
// Success=false) or an error for transport-level failures. attempt is
// zero-based.
type Operation func(ctx context.Context, attempt int) (*domain.DocumentResult, error)

// Controller wraps an Operation with bounded, policy-paced retries. It is the
// only place where retry-vs-fail decisions are made.
type Controller struct {
	cfg Config
	// sleep is swappable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewController creates a Controller with the given policy.
func NewController(cfg Config) *Controller {
	return &Controller{cfg: cfg, sleep: sleepCtx}
}

// Execute runs op until it succeeds, exhausts the retry bound, or hits a
// non-retryable failure. It performs at most cfg.MaxRetries+1 attempts.
//
// Two failure shapes are retryable: transport errors whose message matches
// transient keywords, and quality rejections (the model may answer better on
// a fresh attempt). Anything else fails immediately.
//
// A context cancellation between attempts abandons the document: Execute
// returns (nil, ctx.Err()) and the caller must not feed a result to
// consolidation.
func (c *Controller) Execute(ctx context.Context, kind domain.DocumentKind, op Operation) (*domain.DocumentResult, error) {
	var lastErr string
	var lastQuality *domain.QualityMetrics
	var lastRaw string

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("retry.Controller: %s attempt %d/%d", kind, attempt+1, c.cfg.MaxRetries+1)
		}

		result, err := op(ctx, attempt)

		switch {
		case err == nil && result.Success:
			result.Attempts = attempt + 1
			return result, nil

		case err == nil:
			// Attempt completed but was rejected by quality evaluation.
			lastErr = result.Error
			lastQuality = result.Quality
			lastRaw = result.RawText
			if result.Quality != nil && !result.Quality.Accepted {
				break // retryable
			}
			// Rejected without quality metrics: classify by message.
			if !IsTransient(result.Error) {
				return c.failed(kind, attempt+1, lastErr, lastQuality, lastRaw), nil
			}

		default:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err.Error()
			if !IsTransient(lastErr) {
				log.Printf("retry.Controller: %s non-retryable error: %v", kind, err)
				return c.failed(kind, attempt+1, lastErr, lastQuality, lastRaw), nil
			}
		}

		if attempt == c.cfg.MaxRetries {
			break
		}

		delay := c.cfg.Delay(attempt)
		log.Printf("retry.Controller: %s retryable failure (%s), next attempt in %s", kind, lastErr, delay)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return c.failed(kind, c.cfg.MaxRetries+1, lastErr, lastQuality, lastRaw), nil
}

func (c *Controller) failed(kind domain.DocumentKind, attempts int, lastErr string, q *domain.QualityMetrics, raw string) *domain.DocumentResult {
	msg := lastErr
	if attempts > 1 {
		msg = fmt.Sprintf("failed after %d attempts: %s", attempts, lastErr)
	}
	return &domain.DocumentResult{
		Kind:        kind,
		Success:     false,
		Error:       msg,
		Quality:     q,
		RawText:     raw,
		Attempts:    attempts,
		ProcessedAt: time.Now().UTC(),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		// Still honor cancellation even with no delay.
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
