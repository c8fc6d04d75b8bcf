// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package retry wraps remote calls with throttle detection, wait
// computation, and bounded retry. Throttling is reported as data via
// ThrottleError rather than provider-specific error types, so the
// orchestrator never needs to know which backend produced the failure.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"
)

// ThrottleError reports that a remote call was rejected due to rate
// limits or temporary overload. It is recoverable by waiting and
// retrying the same operation.
type ThrottleError struct {
	// RetryAfter is the server-supplied wait hint, 0 when the server
	// gave none.
	RetryAfter time.Duration

	// RateInfo carries optional limit details from the server, used for
	// diagnostics only.
	RateInfo string

	// Err is the underlying provider error.
	Err error
}

func (e *ThrottleError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "request throttled"
}

func (e *ThrottleError) Unwrap() error {
	return e.Err
}

// Config holds the backoff tunables. The zero value is usable; zero
// fields fall back to the defaults below.
type Config struct {
	// BaseDelay is the first exponential fallback delay. Default 1.5s.
	BaseDelay time.Duration

	// MaxDelay caps the exponential fallback. Default 60s.
	MaxDelay time.Duration

	// Jitter bounds the random component added to every wait: each wait
	// gains a uniform amount in [0, 2*Jitter). Default 250ms.
	Jitter time.Duration

	// MaxRetries is how many throttled attempts are retried before the
	// original error is returned unchanged. Default 6.
	MaxRetries int
}

// DefaultConfig returns the default backoff tunables.
func DefaultConfig() Config {
	return Config{
		BaseDelay:  1500 * time.Millisecond,
		MaxDelay:   60 * time.Second,
		Jitter:     250 * time.Millisecond,
		MaxRetries: 6,
	}
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.BaseDelay <= 0 {
		c.BaseDelay = def.BaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = def.MaxDelay
	}
	if c.Jitter <= 0 {
		c.Jitter = def.Jitter
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	return c
}

// WaitFunc observes every throttle wait before it starts, letting the
// caller surface a live countdown. attempt counts from 1.
type WaitFunc func(wait time.Duration, attempt int, operation string)

// Do executes fn, retrying it after a computed wait whenever it fails
// with a ThrottleError. Any other error propagates immediately. Once
// MaxRetries throttled attempts are exhausted, the original error is
// returned unchanged.
//
// The wait prefers the server-supplied hint when present; a hinted wait
// does not advance the exponential fallback. Without a hint the delay
// doubles from BaseDelay up to MaxDelay. Bounded jitter is added either
// way. Waits suspend on a context-aware timer, never a bare sleep.
func Do[T any](ctx context.Context, cfg Config, operation string, onWait WaitFunc, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	cfg = cfg.WithDefaults()

	attempt := 0
	fallback := 0
	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				slog.Debug("operation succeeded after throttle retries",
					"operation", operation, "attempts", attempt+1)
			}
			return result, nil
		}

		var throttle *ThrottleError
		if !errors.As(err, &throttle) {
			// Fatal: not recoverable by waiting.
			return zero, err
		}

		attempt++
		if attempt > cfg.MaxRetries {
			slog.Warn("throttle retries exhausted", "operation", operation, "attempts", attempt)
			return zero, err
		}

		var wait time.Duration
		if throttle.RetryAfter > 0 {
			wait = throttle.RetryAfter + jitter(cfg.Jitter)
		} else {
			delay := cfg.MaxDelay
			if fallback < 32 { // avoid shift overflow on very long runs
				delay = min(cfg.BaseDelay<<fallback, cfg.MaxDelay)
			}
			fallback++
			wait = delay + jitter(cfg.Jitter)
		}

		slog.Debug("throttled, waiting before retry",
			"operation", operation,
			"wait", wait,
			"attempt", attempt,
			"maxRetries", cfg.MaxRetries,
			"rateInfo", throttle.RateInfo)

		if onWait != nil {
			onWait(wait, attempt, operation)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// Throttled wraps err as a ThrottleError with the given wait hint.
// A zero retryAfter means the server supplied no hint.
func Throttled(err error, retryAfter time.Duration) error {
	return &ThrottleError{RetryAfter: retryAfter, Err: err}
}

// jitter returns a uniform duration in [0, 2*bound).
func jitter(bound time.Duration) time.Duration {
	if bound <= 0 {
		return 0
	}
	return rand.N(2 * bound)
}
