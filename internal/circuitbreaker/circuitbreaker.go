// Package circuitbreaker wraps sony/gobreaker with typed results and
// project-wide default settings.
package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// DefaultConfig returns the settings used by all breakers unless a caller
// overrides individual fields before calling New.
func DefaultConfig(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
}

// CircuitBreaker is a typed wrapper around gobreaker.CircuitBreaker.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// New creates a circuit breaker from the given settings.
func New[T any](cfg gobreaker.Settings) *CircuitBreaker[T] {
	return &CircuitBreaker[T]{
		cb: gobreaker.NewCircuitBreaker[T](cfg),
	}
}

// Execute runs fn through the breaker.
// Returns gobreaker.ErrOpenState when the circuit is open.
func (c *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	return c.cb.Execute(fn)
}

// State returns the breaker's current state.
func (c *CircuitBreaker[T]) State() gobreaker.State {
	return c.cb.State()
}

// Counts returns the breaker's internal counts.
func (c *CircuitBreaker[T]) Counts() gobreaker.Counts {
	return c.cb.Counts()
}
