package openai

import (
	"errors"
	"testing"
	"time"

	"github.com/poiesic/corpusit/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyErrorNil(t *testing.T) {
	require.NoError(t, classifyError(nil))
}

func TestClassifyErrorFatalPassthrough(t *testing.T) {
	fatal := errors.New("API returned unexpected status code: 401 Unauthorized")
	err := classifyError(fatal)

	assert.Same(t, fatal, err, "non-throttle errors pass through unchanged")

	var throttle *retry.ThrottleError
	assert.False(t, errors.As(err, &throttle))
}

func TestClassifyError429WithHint(t *testing.T) {
	provider := errors.New("API returned unexpected status code: 429 Too Many Requests. Please try again in 30s.")
	err := classifyError(provider)

	var throttle *retry.ThrottleError
	require.ErrorAs(t, err, &throttle)
	assert.Equal(t, 30*time.Second, throttle.RetryAfter)
	assert.ErrorIs(t, err, provider)
}

func TestClassifyError429FractionalSeconds(t *testing.T) {
	provider := errors.New("429: rate limit exceeded, please try again in 1.5s")
	err := classifyError(provider)

	var throttle *retry.ThrottleError
	require.ErrorAs(t, err, &throttle)
	assert.Equal(t, 1500*time.Millisecond, throttle.RetryAfter)
}

func TestClassifyError429Milliseconds(t *testing.T) {
	provider := errors.New("429 Too Many Requests. Please try again in 250ms.")
	err := classifyError(provider)

	var throttle *retry.ThrottleError
	require.ErrorAs(t, err, &throttle)
	assert.Equal(t, 250*time.Millisecond, throttle.RetryAfter)
}

func TestClassifyErrorRetryAfterHeaderStyle(t *testing.T) {
	provider := errors.New("429 Too Many Requests; Retry-After: 12")
	err := classifyError(provider)

	var throttle *retry.ThrottleError
	require.ErrorAs(t, err, &throttle)
	assert.Equal(t, 12*time.Second, throttle.RetryAfter)
}

func TestClassifyError429WithoutHint(t *testing.T) {
	provider := errors.New("429 Too Many Requests")
	err := classifyError(provider)

	var throttle *retry.ThrottleError
	require.ErrorAs(t, err, &throttle)
	assert.Zero(t, throttle.RetryAfter, "no hint means the caller falls back to exponential delay")
}

func TestClassifyError503Overloaded(t *testing.T) {
	provider := errors.New("503 Service Unavailable: model is overloaded")
	err := classifyError(provider)

	var throttle *retry.ThrottleError
	require.ErrorAs(t, err, &throttle)
}

func TestClassifyErrorRateInfoCaptured(t *testing.T) {
	provider := errors.New("429 rate limit exceeded. Limit 90000 tokens per min, requested 2000. Please try again in 2s.")
	err := classifyError(provider)

	var throttle *retry.ThrottleError
	require.ErrorAs(t, err, &throttle)
	assert.Contains(t, throttle.RateInfo, "Limit 90000")
}
