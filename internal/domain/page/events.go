package page

import (
	"time"

	"ingestgraph/internal/domain/shared"
)

// DiscoveredEvent fires when a page is first created for a submitted URL.
type DiscoveredEvent struct {
	shared.BaseEvent
	URL    string `json:"url"`
	Domain string `json:"domain"`
}

func newDiscoveredEvent(id shared.PageID, url, domain string, version shared.Version, now time.Time) *DiscoveredEvent {
	return &DiscoveredEvent{
		BaseEvent: shared.NewBaseEvent("PageDiscovered", id.String(), version.Int(), now, shared.NewPageID().String()),
		URL:       url,
		Domain:    domain,
	}
}

func (e *DiscoveredEvent) EventData() map[string]interface{} {
	return map[string]interface{}{"url": e.URL, "domain": e.Domain}
}

// ActivatedEvent fires when a page completes the pipeline successfully.
type ActivatedEvent struct {
	shared.BaseEvent
	KeywordCount int `json:"keyword_count"`
}

func newActivatedEvent(id shared.PageID, keywordCount int, version shared.Version, now time.Time) *ActivatedEvent {
	return &ActivatedEvent{
		BaseEvent:    shared.NewBaseEvent("PageActivated", id.String(), version.Int(), now, shared.NewPageID().String()),
		KeywordCount: keywordCount,
	}
}

func (e *ActivatedEvent) EventData() map[string]interface{} {
	return map[string]interface{}{"keyword_count": e.KeywordCount}
}

// ErroredEvent fires when a page terminates in the error state.
type ErroredEvent struct {
	shared.BaseEvent
	Reason string `json:"reason"`
}

func newErroredEvent(id shared.PageID, reason string, version shared.Version, now time.Time) *ErroredEvent {
	return &ErroredEvent{
		BaseEvent: shared.NewBaseEvent("PageErrored", id.String(), version.Int(), now, shared.NewPageID().String()),
		Reason:    reason,
	}
}

func (e *ErroredEvent) EventData() map[string]interface{} {
	return map[string]interface{}{"reason": e.Reason}
}
