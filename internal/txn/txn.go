// Package txn provides multi-step transaction support with rollback,
// retry-with-backoff and circuit breaking for the storage stage's writes
// into the graph store (spec.md §5).
//
// Grounded on the teacher's internal/repository/transaction.go
// (TransactionManager: ordered steps, rollback-in-reverse-order on failure)
// and internal/repository/retry.go (RetryWithBackoff, CircuitBreaker),
// retargeted from DynamoDB-specific repository operations to the ingestion
// pipeline's page/keyword/relationship writes.
package txn

import (
	"context"
	"fmt"

	"ingestgraph/internal/ingesterrors"
)

// Step is a single unit of a Tx: Execute performs the write, Rollback undoes
// it if a later step in the same Tx fails.
type Step struct {
	Name     string
	Execute  func(ctx context.Context) error
	Rollback func(ctx context.Context) error

	executed   bool
	rolledBack bool
}

// Tx runs an ordered sequence of steps, rolling back completed steps in
// reverse order the moment any step fails.
type Tx struct {
	steps []Step
}

// New constructs an empty Tx.
func New() *Tx {
	return &Tx{}
}

// AddStep appends a step. rollback may be nil for steps with no
// compensating action.
func (tx *Tx) AddStep(name string, execute, rollback func(ctx context.Context) error) {
	tx.steps = append(tx.steps, Step{Name: name, Execute: execute, Rollback: rollback})
}

// Execute runs every step in order. On failure it rolls back all executed
// steps in reverse order and returns a Store error wrapping both the
// original failure and any rollback failures.
func (tx *Tx) Execute(ctx context.Context) error {
	for i := range tx.steps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		step := &tx.steps[i]
		if err := step.Execute(ctx); err != nil {
			step.executed = true
			if rollbackErr := tx.rollback(ctx, i); rollbackErr != nil {
				return ingesterrors.InvalidTransaction(string(ingesterrors.CodeStoreInvalidTxn),
					fmt.Sprintf("step %q failed and rollback failed: %v", step.Name, rollbackErr)).
					WithCause(err).Build()
			}
			return ingesterrors.Store(string(ingesterrors.CodeStoreInvalidTxn),
				fmt.Sprintf("step %q failed", step.Name)).WithCause(err).Build()
		}
		step.executed = true
	}
	return nil
}

// rollback undoes every executed step at or before failedIndex, in reverse
// order (spec.md §5: partial storage failures must not leave a half-written
// page/keyword/relationship set).
func (tx *Tx) rollback(ctx context.Context, failedIndex int) error {
	var rollbackErr error
	for i := failedIndex; i >= 0; i-- {
		step := &tx.steps[i]
		if !step.executed || step.rolledBack {
			continue
		}
		if step.Rollback != nil {
			if err := step.Rollback(ctx); err != nil && rollbackErr == nil {
				rollbackErr = err
			}
		}
		step.rolledBack = true
	}
	return rollbackErr
}
