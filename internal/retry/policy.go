// Package retry bounds and paces re-attempts of a single document's
// extraction pipeline.
package retry

import (
	"strings"
	"time"
)

// Strategy selects how inter-attempt delays are computed.
type Strategy string

const (
	StrategyExponentialBackoff Strategy = "exponential_backoff"
	StrategyFixedDelay         Strategy = "fixed_delay"
	StrategyImmediate          Strategy = "immediate"
)

// Config holds the retry policy for document extraction. Passed explicitly at
// construction; never ambient state.
type Config struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Strategy   Strategy
}

// DefaultConfig returns the standard policy: 3 retries, exponential backoff
// from 2s capped at 30s.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
		MaxDelay:   30 * time.Second,
		Strategy:   StrategyExponentialBackoff,
	}
}

// Delay computes the wait before the next try, given the zero-based index of
// the attempt that just failed.
func (c Config) Delay(attempt int) time.Duration {
	switch c.Strategy {
	case StrategyImmediate:
		return 0
	case StrategyFixedDelay:
		return c.BaseDelay
	default: // exponential backoff
		d := c.BaseDelay << uint(attempt)
		if d > c.MaxDelay || d <= 0 {
			return c.MaxDelay
		}
		return d
	}
}

// transientKeywords mark transport failures worth re-attempting.
var transientKeywords = []string{
	"timeout",
	"connection",
	"network",
	"temporary",
	"rate limit",
	"server error",
	"unavailable",
}

// IsTransient reports whether an error message looks like a transient
// transport/infrastructure failure.
func IsTransient(msg string) bool {
	lower := strings.ToLower(msg)
	for _, kw := range transientKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
