package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		BaseDelay:  5 * time.Millisecond,
		MaxDelay:   50 * time.Millisecond,
		Jitter:     time.Millisecond,
		MaxRetries: 3,
	}
}

func TestDoSuccess(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), testConfig(), "op", nil, func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestDoFatalErrorNotRetried(t *testing.T) {
	fatal := errors.New("401 unauthorized")
	calls := 0
	waits := 0

	_, err := Do(context.Background(), testConfig(), "op",
		func(time.Duration, int, string) { waits++ },
		func(ctx context.Context) (string, error) {
			calls++
			return "", fatal
		})

	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls, "fatal errors must not be retried")
	assert.Zero(t, waits)
}

func TestDoThrottleThenSuccess(t *testing.T) {
	calls := 0
	var waitAttempts []int

	result, err := Do(context.Background(), testConfig(), "embed",
		func(wait time.Duration, attempt int, operation string) {
			waitAttempts = append(waitAttempts, attempt)
			assert.Equal(t, "embed", operation)
		},
		func(ctx context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, Throttled(errors.New("429 too many requests"), 0)
			}
			return 42, nil
		})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, waitAttempts)
}

func TestDoExhaustionReturnsOriginalError(t *testing.T) {
	cfg := testConfig()
	original := Throttled(errors.New("429 slow down"), 0)
	calls := 0

	_, err := Do(context.Background(), cfg, "op", nil, func(ctx context.Context) (string, error) {
		calls++
		return "", original
	})

	require.Error(t, err)
	assert.Same(t, original, err, "the original error must re-raise unchanged")
	assert.Equal(t, cfg.MaxRetries+1, calls)
}

func TestDoServerHintRespected(t *testing.T) {
	cfg := testConfig()
	hint := 20 * time.Millisecond
	var waits []time.Duration

	calls := 0
	_, err := Do(context.Background(), cfg, "op",
		func(wait time.Duration, attempt int, operation string) {
			waits = append(waits, wait)
		},
		func(ctx context.Context) (string, error) {
			calls++
			switch calls {
			case 1:
				return "", Throttled(errors.New("429"), hint)
			case 2:
				return "", Throttled(errors.New("429"), 0)
			default:
				return "done", nil
			}
		})

	require.NoError(t, err)
	require.Len(t, waits, 2)

	// Hinted wait lies in [hint, hint+2*jitter).
	assert.GreaterOrEqual(t, waits[0], hint)
	assert.Less(t, waits[0], hint+2*cfg.Jitter)

	// The hint did not advance the exponential fallback: the next
	// unhinted wait starts from BaseDelay, not BaseDelay*2.
	assert.GreaterOrEqual(t, waits[1], cfg.BaseDelay)
	assert.Less(t, waits[1], cfg.BaseDelay+2*cfg.Jitter)
}

func TestDoExponentialFallbackDoubles(t *testing.T) {
	cfg := testConfig()
	var waits []time.Duration

	calls := 0
	_, err := Do(context.Background(), cfg, "op",
		func(wait time.Duration, attempt int, operation string) {
			waits = append(waits, wait)
		},
		func(ctx context.Context) (string, error) {
			calls++
			if calls <= 3 {
				return "", Throttled(errors.New("429"), 0)
			}
			return "done", nil
		})

	require.NoError(t, err)
	require.Len(t, waits, 3)
	for i, wait := range waits {
		expected := cfg.BaseDelay << i
		assert.GreaterOrEqual(t, wait, expected)
		assert.Less(t, wait, expected+2*cfg.Jitter)
	}
}

func TestDoFallbackCappedAtMaxDelay(t *testing.T) {
	cfg := Config{
		BaseDelay:  4 * time.Millisecond,
		MaxDelay:   6 * time.Millisecond,
		Jitter:     time.Millisecond,
		MaxRetries: 4,
	}
	var waits []time.Duration

	calls := 0
	_, err := Do(context.Background(), cfg, "op",
		func(wait time.Duration, attempt int, operation string) {
			waits = append(waits, wait)
		},
		func(ctx context.Context) (string, error) {
			calls++
			if calls <= 4 {
				return "", Throttled(errors.New("429"), 0)
			}
			return "done", nil
		})

	require.NoError(t, err)
	require.Len(t, waits, 4)
	for _, wait := range waits[1:] {
		assert.Less(t, wait, cfg.MaxDelay+2*cfg.Jitter)
	}
}

func TestDoContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	// A long hint keeps Do suspended; cancelling from onWait must abort
	// the wait instead of sleeping it out.
	_, err := Do(ctx, testConfig(), "embed",
		func(wait time.Duration, attempt int, operation string) {
			assert.GreaterOrEqual(t, wait, 30*time.Second)
			cancel()
		},
		func(ctx context.Context) (string, error) {
			return "", Throttled(errors.New("429"), 30*time.Second)
		})

	require.ErrorIs(t, err, context.Canceled)
}

func TestThrottledWrapping(t *testing.T) {
	underlying := errors.New("429 rate limited")
	err := Throttled(underlying, 5*time.Second)

	var throttle *ThrottleError
	require.ErrorAs(t, err, &throttle)
	assert.Equal(t, 5*time.Second, throttle.RetryAfter)
	assert.ErrorIs(t, err, underlying)
	assert.Equal(t, underlying.Error(), err.Error())
}
