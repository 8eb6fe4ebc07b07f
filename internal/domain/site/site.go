// Package site implements the Site aggregate: a domain root that owns pages
// discovered under the same registrable domain (spec.md §3).
package site

import (
	"strings"
	"time"

	"ingestgraph/internal/domain/shared"
	"ingestgraph/internal/ingesterrors"
)

// Site is the domain root for all pages under one normalized scheme://domain.
// It is the teacher's rich-aggregate shape retargeted from notes/categories
// to site/page ownership, including the dual private/public field pattern.
type Site struct {
	id     shared.SiteID
	url    string // normalized scheme://domain
	title  string
	favicon string

	pageCount    int
	activePages  int
	totalVisits  int
	lastUpdated  time.Time

	version shared.Version

	ID          shared.SiteID `json:"id"`
	URL         string        `json:"url"`
	Title       string        `json:"title"`
	Favicon     string        `json:"favicon"`
	PageCount   int           `json:"page_count"`
	ActivePages int           `json:"active_pages"`
	TotalVisits int           `json:"total_visits"`
	LastUpdated time.Time     `json:"last_updated"`
	Version     int           `json:"version"`

	events []shared.DomainEvent
}

// NewSite creates a site root for a normalized scheme://domain URL.
func NewSite(url string, now time.Time) (*Site, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ingesterrors.Validation(string(ingesterrors.CodeMissingField), "site url is required").Build()
	}

	id := shared.NewSiteID()
	s := &Site{
		id: id, url: url, lastUpdated: now, version: shared.NewVersion(),
		ID: id, URL: url, LastUpdated: now, Version: 0,
	}
	s.addEvent(newCreatedEvent(id, url, s.version, now))
	return s, nil
}

// ReconstructSite rebuilds a site from persisted state without emitting events.
func ReconstructSite(id shared.SiteID, url, title, favicon string, pageCount, activePages, totalVisits int, lastUpdated time.Time, version shared.Version) *Site {
	return &Site{
		id: id, url: url, title: title, favicon: favicon,
		pageCount: pageCount, activePages: activePages, totalVisits: totalVisits,
		lastUpdated: lastUpdated, version: version,

		ID: id, URL: url, Title: title, Favicon: favicon,
		PageCount: pageCount, ActivePages: activePages, TotalVisits: totalVisits,
		LastUpdated: lastUpdated, Version: version.Int(),

		events: []shared.DomainEvent{},
	}
}

// SetMetadata records cosmetic domain-root metadata (supplemented field,
// SPEC_FULL.md §3.1 — harmless since Site is already a first-class aggregate).
func (s *Site) SetMetadata(title, favicon string) {
	s.title = title
	s.Title = title
	s.favicon = favicon
	s.Favicon = favicon
}

// RegisterPage accounts for a new page joined to this site via a CONTAINS
// edge; active indicates whether the page is already in StatusActive.
func (s *Site) RegisterPage(active bool, now time.Time) {
	s.pageCount++
	s.PageCount = s.pageCount
	if active {
		s.activePages++
		s.ActivePages = s.activePages
	}
	s.touch(now)
}

// PageActivated accounts for a page transitioning into StatusActive after
// having already been registered as discovered/in_progress.
func (s *Site) PageActivated(now time.Time) {
	s.activePages++
	s.ActivePages = s.activePages
	s.touch(now)
}

// RecordVisit increments the site-wide visit counter when one of its pages
// is visited (spec.md §4.7 step 4, aggregated up from Page.RecordVisit).
func (s *Site) RecordVisit(now time.Time) {
	s.totalVisits++
	s.TotalVisits = s.totalVisits
	s.touch(now)
}

// Validate checks the site's structural invariants.
func (s *Site) Validate() error {
	if s.id.IsEmpty() {
		return ingesterrors.Validation(string(ingesterrors.CodeMissingField), "site id is required").Build()
	}
	if s.url == "" {
		return ingesterrors.Validation(string(ingesterrors.CodeMissingField), "site url is required").Build()
	}
	if s.activePages > s.pageCount {
		return ingesterrors.Validation(string(ingesterrors.CodeValidationFailed), "active_pages cannot exceed page_count").Build()
	}
	return nil
}

func (s *Site) GetUncommittedEvents() []shared.DomainEvent { return s.events }
func (s *Site) MarkEventsAsCommitted()                     { s.events = []shared.DomainEvent{} }

func (s *Site) addEvent(event shared.DomainEvent) {
	s.events = append(s.events, event)
}

func (s *Site) touch(now time.Time) {
	s.lastUpdated = now
	s.LastUpdated = now
	s.version = s.version.Next()
	s.Version = s.version.Int()
}
