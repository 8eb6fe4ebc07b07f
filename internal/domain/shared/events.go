package shared

import "time"

// DomainEvent is an important business occurrence raised by an aggregate.
// Page and site lifecycle transitions are DomainEvents. Pipeline
// stage-start/stage-end/stage-error/complete events (spec.md §4.6) are the
// separate stage.Event type and do not implement this interface.
type DomainEvent interface {
	EventID() string
	EventType() string
	AggregateID() string
	Timestamp() time.Time
	Version() int
	EventData() map[string]interface{}
}

// BaseEvent supplies the bookkeeping fields common to every DomainEvent.
type BaseEvent struct {
	eventID     string
	eventType   string
	aggregateID string
	timestamp   time.Time
	version     int
}

func (e BaseEvent) EventID() string        { return e.eventID }
func (e BaseEvent) EventType() string      { return e.eventType }
func (e BaseEvent) AggregateID() string    { return e.aggregateID }
func (e BaseEvent) Timestamp() time.Time   { return e.timestamp }
func (e BaseEvent) Version() int           { return e.version }

// NewBaseEvent builds the common event fields. now is injected by callers
// (rather than taken from time.Now inside this package) so that
// orchestrator tests can produce deterministic event timestamps.
func NewBaseEvent(eventType, aggregateID string, version int, now time.Time, id string) BaseEvent {
	return BaseEvent{
		eventID:     id,
		eventType:   eventType,
		aggregateID: aggregateID,
		timestamp:   now,
		version:     version,
	}
}
