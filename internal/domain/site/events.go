package site

import (
	"time"

	"ingestgraph/internal/domain/shared"
)

// CreatedEvent fires when a new site root is first created for a domain.
type CreatedEvent struct {
	shared.BaseEvent
	URL string `json:"url"`
}

func newCreatedEvent(id shared.SiteID, url string, version shared.Version, now time.Time) *CreatedEvent {
	return &CreatedEvent{
		BaseEvent: shared.NewBaseEvent("SiteCreated", id.String(), version.Int(), now, shared.NewSiteID().String()),
		URL:       url,
	}
}

func (e *CreatedEvent) EventData() map[string]interface{} {
	return map[string]interface{}{"url": e.URL}
}
