// Package circuitbreaker wraps sony/gobreaker with typed results.
package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/dexflow/swapengine/internal/apperror"
)

// Config holds circuit breaker settings.
type Config struct {
	Name          string
	MaxRequests   uint32        // allowed through while half-open
	Interval      time.Duration // counters reset interval while closed
	Timeout       time.Duration // open -> half-open
	FailureRatio  float64       // trip threshold
	MinRequests   uint32        // minimum requests before the ratio applies
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultConfig returns settings suited to an external HTTP provider.
func DefaultConfig(name string) Config {
	return Config{
		Name:         name,
		MaxRequests:  2,
		Interval:     30 * time.Second,
		Timeout:      15 * time.Second,
		FailureRatio: 0.6,
		MinRequests:  5,
	}
}

// CircuitBreaker is a typed circuit breaker.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// New creates a circuit breaker from the given config.
func New[T any](cfg Config) *CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
		OnStateChange: cfg.OnStateChange,
	}

	return &CircuitBreaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// Execute runs fn through the breaker. An open circuit is reported as a
// CIRCUIT_OPEN AppError so callers can degrade instead of crash.
func (c *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	result, err := c.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return result, apperror.External(apperror.CodeCircuitOpen, c.cb.Name(), err)
		}
		return result, err
	}
	return result, nil
}

// State returns the current breaker state.
func (c *CircuitBreaker[T]) State() gobreaker.State {
	return c.cb.State()
}
