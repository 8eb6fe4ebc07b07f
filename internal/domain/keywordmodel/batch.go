package keywordmodel

import (
	"time"

	"ingestgraph/internal/domain/shared"
	"ingestgraph/internal/ingesterrors"
)

// BatchStatus tracks one processing batch's lifecycle.
type BatchStatus string

const (
	BatchRunning   BatchStatus = "running"
	BatchCompleted BatchStatus = "completed"
	BatchFailed    BatchStatus = "failed"
)

// BatchContext is created per ingest batch (spec.md §3) and threaded through
// the keyword engine so it can attribute emitted keywords and expose
// per-batch metrics.
type BatchContext struct {
	BatchID      string
	StartTime    time.Time
	EndTime      time.Time
	KeywordIDs   map[string]bool
	Status       BatchStatus
	ErrorMessage string

	// CoOccurrence tracks how many times two keywords (joined by "|", lower
	// id first) co-occurred anywhere in the batch, supplementing per-sentence
	// proximity with a batch-wide signal (SPEC_FULL.md §3.1).
	CoOccurrence map[string]int
}

// NewBatchContext starts a new batch.
func NewBatchContext(batchID string, now time.Time) *BatchContext {
	return &BatchContext{
		BatchID:      batchID,
		StartTime:    now,
		KeywordIDs:   make(map[string]bool),
		CoOccurrence: make(map[string]int),
		Status:       BatchRunning,
	}
}

// RecordKeyword attributes an emitted keyword id to this batch.
func (b *BatchContext) RecordKeyword(id shared.KeywordID) {
	b.KeywordIDs[id.String()] = true
}

// RecordCoOccurrence bumps the co-occurrence counter for an unordered pair
// of keyword ids.
func (b *BatchContext) RecordCoOccurrence(a, c shared.KeywordID) {
	key := coOccurrenceKey(a, c)
	b.CoOccurrence[key]++
}

// CoOccurrenceCount returns how many times the pair has co-occurred so far.
func (b *BatchContext) CoOccurrenceCount(a, c shared.KeywordID) int {
	return b.CoOccurrence[coOccurrenceKey(a, c)]
}

func coOccurrenceKey(a, c shared.KeywordID) string {
	x, y := a.String(), c.String()
	if x > y {
		x, y = y, x
	}
	return x + "|" + y
}

// Complete marks the batch finished successfully.
func (b *BatchContext) Complete(now time.Time) {
	b.EndTime = now
	b.Status = BatchCompleted
}

// Fail marks the batch finished with an error.
func (b *BatchContext) Fail(now time.Time, message string) {
	b.EndTime = now
	b.Status = BatchFailed
	b.ErrorMessage = message
}

// KeywordCount returns how many distinct keywords this batch has produced.
func (b *BatchContext) KeywordCount() int {
	return len(b.KeywordIDs)
}

// Validate checks the batch's structural invariants.
func (b *BatchContext) Validate() error {
	if b.BatchID == "" {
		return ingesterrors.Validation(string(ingesterrors.CodeMissingField), "batch id is required").Build()
	}
	if b.Status == BatchFailed && b.ErrorMessage == "" {
		return ingesterrors.Validation(string(ingesterrors.CodeValidationFailed), "failed batch requires an error message").Build()
	}
	return nil
}
