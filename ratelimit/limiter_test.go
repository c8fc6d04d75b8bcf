package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitUnderBudget(t *testing.T) {
	limiter := New(100)

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background(), 40))
	require.NoError(t, limiter.Wait(context.Background(), 40))
	assert.Less(t, time.Since(start), 50*time.Millisecond, "should not wait while under budget")
	assert.Equal(t, 80, limiter.Used())
}

func TestWaitSuspendsUntilWindowReset(t *testing.T) {
	limiter := New(10)
	limiter.window = 40 * time.Millisecond

	require.NoError(t, limiter.Wait(context.Background(), 6))

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background(), 6))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond, "exceeding the budget must wait for the window")
	assert.Equal(t, 6, limiter.Used(), "counter resets to 0 before the new request is counted")
}

func TestWaitOversizedRequestProceeds(t *testing.T) {
	limiter := New(10)
	limiter.window = 20 * time.Millisecond

	// A single request above the whole budget must not deadlock.
	require.NoError(t, limiter.Wait(context.Background(), 25))
	assert.Equal(t, 25, limiter.Used())
}

func TestWaitWindowExpiryResetsCounter(t *testing.T) {
	limiter := New(10)
	limiter.window = 10 * time.Millisecond

	require.NoError(t, limiter.Wait(context.Background(), 8))
	time.Sleep(15 * time.Millisecond)

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background(), 8))
	assert.Less(t, time.Since(start), 5*time.Millisecond, "expired window should not force a wait")
	assert.Equal(t, 8, limiter.Used())
}

func TestWaitContextCancelled(t *testing.T) {
	limiter := New(10)
	limiter.window = time.Minute

	require.NoError(t, limiter.Wait(context.Background(), 8))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx, 8)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitDisabledLimiter(t *testing.T) {
	limiter := New(0)
	require.NoError(t, limiter.Wait(context.Background(), 1_000_000))

	var nilLimiter *Limiter
	require.NoError(t, nilLimiter.Wait(context.Background(), 5))
}
