// Package retry runs outbound calls with capped exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Config holds configuration for retry behavior
type Config struct {
	// MaxRetries is the maximum number of retry attempts (default: 3)
	MaxRetries int
	// InitialDelay is the initial delay before the first retry (default: 500ms)
	InitialDelay time.Duration
	// MaxDelay is the maximum delay between retries (default: 10 seconds)
	MaxDelay time.Duration
	// BackoffMultiplier is the multiplier for exponential backoff (default: 2.0)
	BackoffMultiplier float64
}

// DefaultConfig returns the default retry configuration
func DefaultConfig() Config {
	return Config{
		MaxRetries:        3,
		InitialDelay:      500 * time.Millisecond,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// WithDefaults replaces unusable fields with their defaults. A MaxRetries of
// zero is kept and means a single attempt.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.MaxRetries < 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = def.InitialDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = def.MaxDelay
	}
	if c.BackoffMultiplier <= 0 {
		c.BackoffMultiplier = def.BackoffMultiplier
	}
	return c
}

// Delay returns the wait before retry number attempt (1-based):
// InitialDelay * BackoffMultiplier^(attempt-1), capped at MaxDelay.
func (c Config) Delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	delay := float64(c.InitialDelay) * math.Pow(c.BackoffMultiplier, float64(attempt-1))
	if delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}
	return time.Duration(delay)
}

// Do calls fn until it succeeds or fails with an error that retryable
// rejects, waiting Delay(n) before retry n. attempt is 0 on the first call.
// Context errors are never retried, and cancellation during a wait ends the
// loop with an error wrapping ctx.Err(). After MaxRetries retries the last
// error is returned wrapped.
func Do[T any](ctx context.Context, cfg Config, retryable func(error) bool, fn func(attempt int) (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		v, err := fn(attempt)
		if err == nil {
			return v, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || !retryable(err) {
			return zero, err
		}
		if attempt >= cfg.MaxRetries {
			return zero, fmt.Errorf("failed after %d retries: %w", cfg.MaxRetries, err)
		}

		select {
		case <-time.After(cfg.Delay(attempt + 1)):
		case <-ctx.Done():
			return zero, fmt.Errorf("context cancelled during retry backoff: %w", ctx.Err())
		}
	}
}
