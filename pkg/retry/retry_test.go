package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	result := Do(context.Background(), fastConfig(3), func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, result.Err)
	assert.Equal(t, 1, result.Attempts)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	attempts := 0
	result := Do(context.Background(), fastConfig(5), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, result.Err)
	assert.Equal(t, 3, result.Attempts)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	transient := errors.New("transient")
	result := Do(context.Background(), fastConfig(2), func(ctx context.Context) error {
		return transient
	})
	assert.ErrorIs(t, result.Err, ErrMaxRetriesExceeded)
	assert.Equal(t, 3, result.Attempts)
	assert.ErrorIs(t, result.LastError, transient)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	fatal := errors.New("bad input")
	attempts := 0
	result := Do(context.Background(), fastConfig(5), func(ctx context.Context) error {
		attempts++
		return Permanent(fatal)
	})
	assert.ErrorIs(t, result.Err, fatal)
	assert.Equal(t, 1, attempts)
}

func TestDo_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := Do(ctx, fastConfig(5), func(ctx context.Context) error {
		return errors.New("should not matter")
	})
	assert.ErrorIs(t, result.Err, ErrContextCanceled)
}

func TestDoWithCallback_InvokedBeforeEachWait(t *testing.T) {
	var callbacks []int
	Do := func() *Result {
		return DoWithCallback(context.Background(), fastConfig(2), func(ctx context.Context) error {
			return errors.New("transient")
		}, func(attempt int, err error, next time.Duration) {
			callbacks = append(callbacks, attempt)
		})
	}
	result := Do()
	assert.ErrorIs(t, result.Err, ErrMaxRetriesExceeded)
	// No callback after the final attempt
	assert.Equal(t, []int{1, 2}, callbacks)
}

func TestInterval_GrowsAndCaps(t *testing.T) {
	r := New(&Config{
		MaxRetries:      5,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     40 * time.Millisecond,
		Multiplier:      2.0,
	})

	assert.Equal(t, 10*time.Millisecond, r.interval(0))
	assert.Equal(t, 20*time.Millisecond, r.interval(1))
	assert.Equal(t, 40*time.Millisecond, r.interval(2))
	// Capped
	assert.Equal(t, 40*time.Millisecond, r.interval(5))
}

func TestPermanent_NilPassthrough(t *testing.T) {
	assert.Nil(t, Permanent(nil))
}
