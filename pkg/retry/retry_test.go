package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func isTransient(err error) bool { return errors.Is(err, errTransient) }

func fast(maxRetries int) Config {
	return Config{
		MaxRetries:        maxRetries,
		InitialDelay:      time.Millisecond,
		MaxDelay:          2 * time.Millisecond,
		BackoffMultiplier: 2,
	}
}

func TestDelay(t *testing.T) {
	cfg := Config{
		InitialDelay:      100 * time.Millisecond,
		MaxDelay:          300 * time.Millisecond,
		BackoffMultiplier: 2,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{attempt: 0, expected: 0},
		{attempt: 1, expected: 100 * time.Millisecond},
		{attempt: 2, expected: 200 * time.Millisecond},
		{attempt: 3, expected: 300 * time.Millisecond},
		{attempt: 10, expected: 300 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt %d", tt.attempt), func(t *testing.T) {
			assert.Equal(t, tt.expected, cfg.Delay(tt.attempt))
		})
	}
}

func TestWithDefaults(t *testing.T) {
	got := Config{MaxRetries: -1}.WithDefaults()
	assert.Equal(t, DefaultConfig(), got)

	kept := Config{MaxRetries: 0, InitialDelay: time.Second, MaxDelay: time.Minute, BackoffMultiplier: 3}.WithDefaults()
	assert.Equal(t, 0, kept.MaxRetries)
	assert.Equal(t, time.Second, kept.InitialDelay)
	assert.Equal(t, 3.0, kept.BackoffMultiplier)
}

func TestDo(t *testing.T) {
	permanent := errors.New("permanent")

	tests := []struct {
		name      string
		errs      []error
		retries   int
		wantCalls int
		wantErr   error
		wantValue int
	}{
		{name: "first try", errs: nil, retries: 2, wantCalls: 1, wantValue: 1},
		{name: "recovers", errs: []error{errTransient, errTransient}, retries: 2, wantCalls: 3, wantValue: 3},
		{name: "permanent stops", errs: []error{permanent}, retries: 2, wantCalls: 1, wantErr: permanent},
		{name: "gives up", errs: []error{errTransient, errTransient, errTransient}, retries: 2, wantCalls: 3, wantErr: errTransient},
		{name: "no retries", errs: []error{errTransient}, retries: 0, wantCalls: 1, wantErr: errTransient},
		{name: "context error not retried", errs: []error{fmt.Errorf("get: %w", context.DeadlineExceeded)}, retries: 2, wantCalls: 1, wantErr: context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			v, err := Do(context.Background(), fast(tt.retries), func(err error) bool {
				return isTransient(err) || errors.Is(err, context.DeadlineExceeded)
			}, func(attempt int) (int, error) {
				assert.Equal(t, calls, attempt)
				calls++
				if calls <= len(tt.errs) {
					return 0, tt.errs[calls-1]
				}
				return calls, nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValue, v)
		})
	}
}

func TestDoGivesUpWithRetryCount(t *testing.T) {
	_, err := Do(context.Background(), fast(1), isTransient, func(int) (struct{}, error) {
		return struct{}{}, errTransient
	})
	assert.EqualError(t, err, "failed after 1 retries: transient")
}

func TestDoHonoursCancellationDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxRetries: 3, InitialDelay: time.Hour, MaxDelay: time.Hour, BackoffMultiplier: 2}

	calls := 0
	_, err := Do(ctx, cfg, isTransient, func(int) (int, error) {
		calls++
		cancel()
		return 0, errTransient
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
