package txn

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"ingestgraph/internal/ingesterrors"
)

// History extracts the retry diagnostics RetryWithBackoff attaches to the
// error it returns on exhaustion, or nil if err carries none (spec.md §4.1).
func History(err error) *ingesterrors.RetryHistory {
	var e *ingesterrors.Error
	if errors.As(err, &e) {
		return e.History
	}
	return nil
}

// RetryPolicy configures RetryWithBackoff.
type RetryPolicy struct {
	MaxAttempts   int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	JitterFactor  float64
}

// DefaultRetryPolicy mirrors stage.DefaultRetryConfig's shape, expressed in
// time.Duration terms for direct use by RetryWithBackoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   3,
		BaseDelay:     1 * time.Second,
		MaxDelay:      8 * time.Second,
		BackoffFactor: 2.0,
		JitterFactor:  0.1,
	}
}

// Operation is a unit of work RetryWithBackoff can retry.
type Operation func() error

// RetryWithBackoff runs operation, retrying on *ingesterrors.Error values
// marked Retryable with exponential backoff and jitter. Non-retryable errors
// return immediately. txID identifies the transaction for the retry history
// recorded on exhaustion (spec.md §4.1): first-error time, attempt count,
// and the error code seen on every attempt.
func RetryWithBackoff(ctx context.Context, txID string, policy RetryPolicy, operation Operation) error {
	var lastErr error
	var history *ingesterrors.RetryHistory

	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err

		if history == nil {
			history = &ingesterrors.RetryHistory{TxID: txID, FirstErrorAt: time.Now()}
		}
		history.AttemptCount++
		history.ErrorCodes = append(history.ErrorCodes, ingesterrors.CodeOf(err))

		if !ingesterrors.IsRetryable(err) {
			return err
		}
		if attempt == policy.MaxAttempts-1 {
			break
		}

		delay := policy.calculateDelay(attempt)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return ingesterrors.Wrap(lastErr, "", "operation failed after exhausting retries").WithHistory(history)
}

func (p RetryPolicy) calculateDelay(attempt int) time.Duration {
	backoff := float64(p.BaseDelay) * math.Pow(p.BackoffFactor, float64(attempt))
	jitter := backoff * p.JitterFactor * (rand.Float64() - 0.5) * 2
	delay := time.Duration(backoff + jitter)
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}
