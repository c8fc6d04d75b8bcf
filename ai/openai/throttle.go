package openai

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/corpusit/retry"
)

// Provider errors arrive as opaque wrapped HTTP failures, so throttle
// detection works on the message text. The alternatives all carry a
// recognizable status or phrase.
var throttleMarkers = []string{
	"429",
	"rate limit",
	"rate_limit",
	"too many requests",
	"503",
	"service unavailable",
	"overloaded",
}

var (
	// "Please try again in 1.2s" / "retry again in 20s"
	retryInRe = regexp.MustCompile(`(?i)try again in ([0-9]+(?:\.[0-9]+)?)\s*(ms|s|m)\b`)

	// "Retry-After: 30" / "retry after 30"
	retryAfterRe = regexp.MustCompile(`(?i)retry[- ]after:?\s*([0-9]+(?:\.[0-9]+)?)`)

	// "Limit 90000, Used 89000, Requested 2000"
	rateInfoRe = regexp.MustCompile(`(?i)limit:?\s+[0-9][^.;\n]*`)
)

// classifyError maps a provider failure to a typed outcome: throttling
// becomes a *retry.ThrottleError carrying any server wait hint, every
// other error passes through unchanged for the caller to treat as fatal.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	if !isThrottleMessage(msg) {
		return err
	}

	throttle := &retry.ThrottleError{
		RetryAfter: parseWaitHint(msg),
		Err:        err,
	}
	if m := rateInfoRe.FindString(msg); m != "" {
		throttle.RateInfo = m
	}
	return throttle
}

func isThrottleMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range throttleMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// parseWaitHint extracts a server-supplied wait duration from the error
// text. Returns 0 when no hint is present.
func parseWaitHint(msg string) time.Duration {
	if m := retryInRe.FindStringSubmatch(msg); m != nil {
		value, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			switch strings.ToLower(m[2]) {
			case "ms":
				return time.Duration(value * float64(time.Millisecond))
			case "m":
				return time.Duration(value * float64(time.Minute))
			default:
				return time.Duration(value * float64(time.Second))
			}
		}
	}
	if m := retryAfterRe.FindStringSubmatch(msg); m != nil {
		value, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return time.Duration(value * float64(time.Second))
		}
	}
	return 0
}
