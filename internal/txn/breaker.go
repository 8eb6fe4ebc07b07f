package txn

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"ingestgraph/internal/ingesterrors"
)

// BreakerConfig configures NewBreaker. It mirrors the teacher's
// CircuitConfig shape (internal/repository/retry.go) but feeds
// github.com/sony/gobreaker rather than a hand-rolled state machine.
type BreakerConfig struct {
	Name             string
	MaxFailures      uint32
	ResetTimeout     time.Duration
	HalfOpenMaxCalls uint32
}

// DefaultBreakerConfig mirrors the teacher's DefaultCircuitConfig.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxFailures:      5,
		ResetTimeout:     30 * time.Second,
		HalfOpenMaxCalls: 3,
	}
}

// NewBreaker builds a gobreaker.CircuitBreaker that opens after MaxFailures
// consecutive failures and half-opens after ResetTimeout (spec.md §5).
// No transaction or storage code path in this module calls it.
func NewBreaker(cfg BreakerConfig) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenMaxCalls,
		Timeout:     cfg.ResetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
	})
}

// ExecuteWithBreaker runs operation through breaker and normalizes a
// rejection (circuit open) into a retryable Store error.
func ExecuteWithBreaker(_ context.Context, breaker *gobreaker.CircuitBreaker, operation Operation) error {
	_, err := breaker.Execute(func() (interface{}, error) {
		return nil, operation()
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return ingesterrors.Store(string(ingesterrors.CodeCircuitOpen), "circuit breaker is open, rejecting operation").
			WithCause(err).Build()
	}
	return err
}
