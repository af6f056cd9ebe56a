// Package ratelimit wraps golang.org/x/time/rate for outbound API budgets.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter throttles calls against a per-minute budget.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter that admits requestsPerMinute calls, with a burst
// of 10% of the budget so the first polls of a fresh trade go out
// immediately.
func New(requestsPerMinute int) *Limiter {
	rps := float64(requestsPerMinute) / 60.0
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// NewWithBurst creates a limiter with an explicit rate and burst.
func NewWithBurst(requestsPerSecond float64, burst int) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether a call may go out now without waiting.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Tokens returns the current number of available tokens.
func (l *Limiter) Tokens() float64 {
	return l.limiter.Tokens()
}
