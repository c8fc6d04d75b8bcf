// Package ratelimit smooths token throughput against a per-minute
// budget shared with the upstream model provider.
package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Limiter maintains a sliding one-minute counter of tokens consumed.
// Before a request of estimated size s is issued, Wait suspends the
// caller until the window resets whenever used+s would exceed the
// budget. State is per-instance and mutex-guarded, so concurrent
// pipeline instances never interfere with each other.
type Limiter struct {
	mu          sync.Mutex
	budget      int
	window      time.Duration
	used        int
	windowStart time.Time
	now         func() time.Time
	logger      *slog.Logger
}

// New creates a limiter with the given tokens-per-minute budget.
// A budget of 0 or less disables limiting.
func New(tokensPerMinute int) *Limiter {
	return &Limiter{
		budget: tokensPerMinute,
		window: time.Minute,
		now:    time.Now,
		logger: slog.Default().With("component", "ratelimit"),
	}
}

// Wait reserves tokens for a request of estimated size, suspending the
// caller until the one-minute window resets if the budget would be
// exceeded. A request larger than the whole budget proceeds after a
// reset rather than waiting forever.
func (l *Limiter) Wait(ctx context.Context, tokens int) error {
	if l == nil || l.budget <= 0 {
		return ctx.Err()
	}

	l.mu.Lock()
	now := l.now()
	if l.windowStart.IsZero() || now.Sub(l.windowStart) >= l.window {
		l.windowStart = now
		l.used = 0
	}

	if l.used > 0 && l.used+tokens > l.budget {
		used := l.used
		remaining := l.window - now.Sub(l.windowStart)
		l.mu.Unlock()

		l.logger.Debug("token budget exhausted, waiting for window reset",
			"used", used, "requested", tokens, "budget", l.budget, "wait", remaining)

		timer := time.NewTimer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		l.mu.Lock()
		l.windowStart = l.now()
		l.used = 0
	}

	l.used += tokens
	l.mu.Unlock()
	return nil
}

// Used returns the tokens consumed in the current window.
func (l *Limiter) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used
}
