package stage

import "time"

// EventLevel classifies an event for logging/handler filtering.
type EventLevel string

const (
	LevelInfo  EventLevel = "info"
	LevelWarn  EventLevel = "warn"
	LevelError EventLevel = "error"
)

// Event is emitted by the orchestrator as a page advances through stages
// (spec.md §4.6), generalized from the teacher's SagaStarted/SagaCompleted/
// SagaFailed event trio into one shape carrying a discriminator.
type Event struct {
	Type      string // "stage-start", "stage-end", "stage-error", "complete", "error"
	Stage     Name
	Component ComponentKind
	Timestamp time.Time
	Level     EventLevel
	Message   string
	Metadata  map[string]interface{}
}

// Handler observes pipeline events. The orchestrator recovers a handler
// that panics, so the pipeline carries on; the panic is discarded without
// being logged.
type Handler func(Event)

func newEvent(eventType string, s Name, level EventLevel, message string, metadata map[string]interface{}, now time.Time) Event {
	return Event{
		Type:      eventType,
		Stage:     s,
		Timestamp: now,
		Level:     level,
		Message:   message,
		Metadata:  metadata,
	}
}

// NewStageStartEvent builds a "stage-start" event.
func NewStageStartEvent(s Name, metadata map[string]interface{}, now time.Time) Event {
	return newEvent("stage-start", s, LevelInfo, string(s)+" started", metadata, now)
}

// NewStageEndEvent builds a "stage-end" event, carrying the stage's duration
// in its metadata.
func NewStageEndEvent(s Name, duration time.Duration, metadata map[string]interface{}, now time.Time) Event {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metadata["duration_ms"] = duration.Milliseconds()
	return newEvent("stage-end", s, LevelInfo, string(s)+" completed", metadata, now)
}

// NewStageErrorEvent builds a "stage-error" event.
func NewStageErrorEvent(s Name, err error, metadata map[string]interface{}, now time.Time) Event {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return newEvent("stage-error", s, LevelError, msg, metadata, now)
}

// NewCompleteEvent builds the terminal "complete" event.
func NewCompleteEvent(metadata map[string]interface{}, now time.Time) Event {
	return newEvent("complete", Complete, LevelInfo, "pipeline completed", metadata, now)
}

// NewAbortEvent builds the terminal "error" event for an aborted run.
func NewAbortEvent(reason string, metadata map[string]interface{}, now time.Time) Event {
	return newEvent("error", Error, LevelError, reason, metadata, now)
}
