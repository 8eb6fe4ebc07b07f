package txn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingestgraph/internal/ingesterrors"
)

func TestTx_RollsBackInReverseOrderOnFailure(t *testing.T) {
	var rolledBack []string

	tx := New()
	tx.AddStep("create-page",
		func(context.Context) error { return nil },
		func(context.Context) error { rolledBack = append(rolledBack, "create-page"); return nil })
	tx.AddStep("create-keywords",
		func(context.Context) error { return nil },
		func(context.Context) error { rolledBack = append(rolledBack, "create-keywords"); return nil })
	tx.AddStep("create-relationships",
		func(context.Context) error { return errors.New("boom") },
		nil)

	err := tx.Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"create-keywords", "create-page"}, rolledBack)
}

func TestTx_SucceedsWithNoRollback(t *testing.T) {
	calls := 0
	tx := New()
	tx.AddStep("a", func(context.Context) error { calls++; return nil }, nil)
	tx.AddStep("b", func(context.Context) error { calls++; return nil }, nil)

	require.NoError(t, tx.Execute(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestRetryWithBackoff_StopsOnNonRetryable(t *testing.T) {
	attempts := 0
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1, JitterFactor: 0}

	err := RetryWithBackoff(context.Background(), "tx-1", policy, func() error {
		attempts++
		return ingesterrors.Validation(string(ingesterrors.CodeValidationFailed), "bad input").Build()
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Nil(t, History(err), "a non-retryable failure does not exhaust retries, so carries no history")
}

func TestRetryWithBackoff_RetriesRetryableUntilSuccess(t *testing.T) {
	attempts := 0
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1, JitterFactor: 0}

	err := RetryWithBackoff(context.Background(), "tx-2", policy, func() error {
		attempts++
		if attempts < 3 {
			return ingesterrors.Store(string(ingesterrors.CodeStoreQueryTimeout), "transient").Build()
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_AttachesHistoryOnExhaustion(t *testing.T) {
	attempts := 0
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1, JitterFactor: 0}

	err := RetryWithBackoff(context.Background(), "tx-3", policy, func() error {
		attempts++
		return ingesterrors.Store(string(ingesterrors.CodeStoreQueryTimeout), "still failing").Build()
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)

	hist := History(err)
	require.NotNil(t, hist)
	assert.Equal(t, "tx-3", hist.TxID)
	assert.Equal(t, 3, hist.AttemptCount)
	assert.False(t, hist.FirstErrorAt.IsZero())
	assert.Equal(t, []string{
		string(ingesterrors.CodeStoreQueryTimeout),
		string(ingesterrors.CodeStoreQueryTimeout),
		string(ingesterrors.CodeStoreQueryTimeout),
	}, hist.ErrorCodes)
}

func TestNewBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	breaker := NewBreaker(BreakerConfig{Name: "test", MaxFailures: 2, ResetTimeout: time.Minute, HalfOpenMaxCalls: 1})

	for i := 0; i < 2; i++ {
		err := ExecuteWithBreaker(context.Background(), breaker, func() error {
			return errors.New("fail")
		})
		assert.Error(t, err)
	}

	err := ExecuteWithBreaker(context.Background(), breaker, func() error { return nil })
	require.Error(t, err)
	assert.True(t, ingesterrors.Is(err, ingesterrors.KindStore))
}
