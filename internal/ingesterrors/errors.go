// Package ingesterrors provides a single unified error type for the ingestion
// pipeline, consolidating what would otherwise be separate error types per
// layer (domain, component, stage, store) into one structure that carries
// enough context for logging, retry decisions and HTTP responses alike.
package ingesterrors

import (
	"errors"
	"fmt"
	"runtime"
	"time"
)

// Kind classifies an error per the pipeline's error taxonomy.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindComponent  Kind = "COMPONENT"
	KindStage      Kind = "STAGE"
	KindTimeout    Kind = "TIMEOUT"
	KindStore      Kind = "STORE"
	KindSchema     Kind = "SCHEMA"
)

// StoreSubkind further classifies KindStore errors.
type StoreSubkind string

const (
	StoreQueryTimeout       StoreSubkind = "QUERY_TIMEOUT"
	StoreQueryExecution     StoreSubkind = "QUERY_EXECUTION"
	StoreInvalidTransaction StoreSubkind = "INVALID_TRANSACTION"
)

// Severity affects logging level and alerting.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Error is the single error type used across every layer of the pipeline.
type Error struct {
	Kind      Kind
	Subkind   StoreSubkind
	Code      string
	Message   string
	Details   string
	Stage     string // stage name, when the error originates in a stage
	Component string // component kind, when the error originates in a component
	Severity  Severity
	Retryable bool
	Cause     error

	// History is attached by the transaction layer when a retry loop
	// exhausts all attempts (spec.md §4.1): first-error time, attempt
	// count, and the error code seen on every attempt.
	History *RetryHistory

	File string
	Line int
}

// RetryHistory records one transaction's retry diagnostics, per spec.md
// §4.1's "per-transaction id, the layer records first-error time, attempt
// count, and error codes; on exhaustion it surfaces the last error with
// that history attached."
type RetryHistory struct {
	TxID         string
	FirstErrorAt time.Time
	AttemptCount int
	ErrorCodes   []string
}

// WithHistory attaches retry diagnostics to an already-built Error,
// returning e for chaining at the call site.
func (e *Error) WithHistory(h *RetryHistory) *Error {
	e.History = h
	return e
}

// CodeOf extracts the Code from err if it is (or wraps) an *Error, or ""
// otherwise. Used by the retry layer to build RetryHistory.ErrorCodes
// without caring whether the underlying cause is one of ours.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Subkind != "" {
		return fmt.Sprintf("[%s:%s:%s] %s", e.Kind, e.Subkind, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Code, e.Message)
}

// Unwrap allows errors.Is/errors.As to see through to the cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Builder constructs Error values fluently.
type Builder struct {
	err *Error
}

// New starts building an error of the given kind.
func New(kind Kind, code, message string) *Builder {
	_, file, line, _ := runtime.Caller(1)
	return &Builder{err: &Error{
		Kind:     kind,
		Code:     code,
		Message:  message,
		Severity: SeverityMedium,
		File:     file,
		Line:     line,
	}}
}

func (b *Builder) WithSubkind(s StoreSubkind) *Builder { b.err.Subkind = s; return b }
func (b *Builder) WithDetails(d string) *Builder       { b.err.Details = d; return b }
func (b *Builder) WithStage(s string) *Builder         { b.err.Stage = s; return b }
func (b *Builder) WithComponent(c string) *Builder     { b.err.Component = c; return b }
func (b *Builder) WithSeverity(s Severity) *Builder    { b.err.Severity = s; return b }
func (b *Builder) WithRetryable(r bool) *Builder       { b.err.Retryable = r; return b }
func (b *Builder) WithCause(c error) *Builder          { b.err.Cause = c; return b }

// Build returns the constructed *Error.
func (b *Builder) Build() *Error { return b.err }

// Convenience constructors, one per spec.md §7 kind.

func Validation(code, message string) *Builder {
	return New(KindValidation, code, message).WithSeverity(SeverityLow).WithRetryable(false)
}

func Component(code, message string) *Builder {
	return New(KindComponent, code, message).WithSeverity(SeverityMedium).WithRetryable(true)
}

func Stage(code, message string) *Builder {
	return New(KindStage, code, message).WithSeverity(SeverityMedium).WithRetryable(true)
}

func Timeout(code, message string) *Builder {
	return New(KindTimeout, code, message).WithSeverity(SeverityMedium).WithRetryable(true)
}

func Store(code, message string) *Builder {
	return New(KindStore, code, message).WithSeverity(SeverityHigh).WithRetryable(true)
}

func QueryTimeout(code, message string) *Builder {
	return Store(code, message).WithSubkind(StoreQueryTimeout)
}

func QueryExecution(code, message string) *Builder {
	return Store(code, message).WithSubkind(StoreQueryExecution)
}

func InvalidTransaction(code, message string) *Builder {
	return Store(code, message).WithSubkind(StoreInvalidTransaction).WithRetryable(false)
}

func Schema(code, message string) *Builder {
	return New(KindSchema, code, message).WithSeverity(SeverityHigh).WithRetryable(false)
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsRetryable reports whether err carries a retryable *Error, defaulting to
// false for anything that isn't one of ours.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// Wrap preserves an existing *Error's classification while attaching new
// context, or creates a component-level wrapper around a foreign error.
func Wrap(err error, stage, message string) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{
			Kind:      existing.Kind,
			Subkind:   existing.Subkind,
			Code:      existing.Code,
			Message:   message,
			Details:   existing.Message,
			Stage:     stage,
			Component: existing.Component,
			Severity:  existing.Severity,
			Retryable: existing.Retryable,
			Cause:     err,
			File:      existing.File,
			Line:      existing.Line,
		}
	}
	_, file, line, _ := runtime.Caller(1)
	return &Error{
		Kind:      KindComponent,
		Code:      "WRAPPED",
		Message:   message,
		Details:   err.Error(),
		Stage:     stage,
		Severity:  SeverityMedium,
		Retryable: false,
		Cause:     err,
		File:      file,
		Line:      line,
	}
}

// RetryAfter is a small helper struct for retry-policy code in internal/txn
// that needs to advise callers how long to wait, without ingesterrors taking
// a dependency on the retry package itself.
type RetryAfter struct {
	Duration time.Duration
}
