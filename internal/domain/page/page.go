// Package page implements the Page aggregate: the record the pipeline
// produces for one submitted URL (spec.md §3).
package page

import (
	"strings"
	"time"

	"ingestgraph/internal/domain/shared"
	"ingestgraph/internal/ingesterrors"
)

// Relationship is a lightweight outgoing-edge reference recorded on the page
// itself; the full Relationship aggregate (evidence, confidence) lives in
// keywordmodel and is keyed by this same id.
type Relationship struct {
	ID     string
	Type   string
	Target string
}

// Metrics holds the numeric signals tracked against a page over its life.
type Metrics struct {
	QualityScore    float64
	RelevanceScore  float64
	VisitCount      int
	ProcessingTime  time.Duration
	KeywordCount    int
}

// Page is the rich aggregate the pipeline advances through its stages.
//
// Like the teacher's aggregates, Page keeps private fields for invariant
// enforcement alongside public fields so the graphstore/pagestore layers can
// read and write without reaching into unexported state.
type Page struct {
	id     shared.PageID
	siteID shared.SiteID
	url    string
	domain string
	status Status

	rawContent string // transient: never persisted beyond the pipeline run
	title      string
	keywords   map[string]float64
	relations  []Relationship
	errs       []string

	discoveredAt    time.Time
	lastAccessed    time.Time
	metaQuality     float64
	browserContexts map[BrowserContext]bool
	tabID           string
	windowID        string
	bookmarkID      string
	language        string
	author          string
	wordCount       int
	readingMinutes  float64
	publishedDate   *time.Time
	modifiedDate    *time.Time
	sourceType      SourceType
	embeddingStatus EmbeddingStatus
	custom          map[string]interface{}

	metrics Metrics
	version shared.Version

	// Public fields, for repository/JSON compatibility.
	ID              shared.PageID          `json:"id"`
	SiteID          shared.SiteID          `json:"site_id"`
	URL             string                 `json:"url"`
	Domain          string                 `json:"domain"`
	Status          Status                 `json:"status"`
	Title           string                 `json:"title"`
	Keywords        map[string]float64     `json:"keywords"`
	Relationships   []Relationship         `json:"relationships"`
	Errors          []string               `json:"errors"`
	DiscoveredAt    time.Time              `json:"discovered_at"`
	LastAccessed    time.Time              `json:"last_accessed"`
	Custom          map[string]interface{} `json:"custom"`
	Version         int                    `json:"version"`

	events []shared.DomainEvent
}

// NewPage creates a freshly discovered page for a normalized URL and domain.
// Status starts at StatusDiscovered; the orchestrator moves it to
// StatusInProgress when it begins processing (spec.md §4.6 step 1).
func NewPage(url, domain string, now time.Time) (*Page, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ingesterrors.Validation(string(ingesterrors.CodeMissingField), "page url is required").Build()
	}

	id := shared.NewPageID()
	p := &Page{
		id:              id,
		url:             url,
		domain:          domain,
		status:          StatusDiscovered,
		keywords:        make(map[string]float64),
		browserContexts: make(map[BrowserContext]bool),
		custom:          make(map[string]interface{}),
		discoveredAt:    now,
		lastAccessed:    now,
		sourceType:      SourceUnknown,
		embeddingStatus: EmbeddingPending,
		version:         shared.NewVersion(),

		ID:           id,
		URL:          url,
		Domain:       domain,
		Status:       StatusDiscovered,
		Keywords:     make(map[string]float64),
		DiscoveredAt: now,
		LastAccessed: now,
		Custom:       make(map[string]interface{}),
		Version:      0,
	}
	p.addEvent(newDiscoveredEvent(id, url, domain, p.version, now))
	return p, nil
}

// ReconstructPage rebuilds a page from persisted state without emitting
// events (the teacher's ReconstructNode does the same for loaded aggregates).
func ReconstructPage(
	id shared.PageID, siteID shared.SiteID, url, domain string, status Status,
	title string, keywords map[string]float64, relations []Relationship, errs []string,
	discoveredAt, lastAccessed time.Time, metaQuality float64,
	browserContexts map[BrowserContext]bool, tabID, windowID, bookmarkID string,
	language, author string, wordCount int, readingMinutes float64,
	publishedDate, modifiedDate *time.Time, sourceType SourceType, embeddingStatus EmbeddingStatus,
	custom map[string]interface{}, metrics Metrics, version shared.Version,
) *Page {
	if keywords == nil {
		keywords = make(map[string]float64)
	}
	if browserContexts == nil {
		browserContexts = make(map[BrowserContext]bool)
	}
	if custom == nil {
		custom = make(map[string]interface{})
	}
	return &Page{
		id: id, siteID: siteID, url: url, domain: domain, status: status,
		title: title, keywords: keywords, relations: relations, errs: errs,
		discoveredAt: discoveredAt, lastAccessed: lastAccessed, metaQuality: metaQuality,
		browserContexts: browserContexts, tabID: tabID, windowID: windowID, bookmarkID: bookmarkID,
		language: language, author: author, wordCount: wordCount, readingMinutes: readingMinutes,
		publishedDate: publishedDate, modifiedDate: modifiedDate,
		sourceType: sourceType, embeddingStatus: embeddingStatus, custom: custom,
		metrics: metrics, version: version,

		ID: id, SiteID: siteID, URL: url, Domain: domain, Status: status, Title: title,
		Keywords: keywords, Relationships: relations, Errors: errs,
		DiscoveredAt: discoveredAt, LastAccessed: lastAccessed, Custom: custom,
		Version: version.Int(),

		events: []shared.DomainEvent{},
	}
}

// Getters

func (p *Page) StatusValue() Status              { return p.status }
func (p *Page) SiteIDValue() shared.SiteID       { return p.siteID }
func (p *Page) RawContent() string               { return p.rawContent }
func (p *Page) KeywordCount() int                { return len(p.keywords) }
func (p *Page) Metrics() Metrics                 { return p.metrics }
func (p *Page) TabID() string                    { return p.tabID }
func (p *Page) WindowID() string                 { return p.windowID }
func (p *Page) BookmarkID() string               { return p.bookmarkID }
func (p *Page) SourceType() SourceType           { return p.sourceType }
func (p *Page) EmbeddingStatus() EmbeddingStatus { return p.embeddingStatus }
func (p *Page) MetaQuality() float64             { return p.metaQuality }
func (p *Page) Language() string                 { return p.language }
func (p *Page) Author() string                   { return p.author }
func (p *Page) WordCount() int                   { return p.wordCount }
func (p *Page) ReadingMinutes() float64          { return p.readingMinutes }
func (p *Page) PublishedDate() *time.Time        { return p.publishedDate }
func (p *Page) ModifiedDate() *time.Time         { return p.modifiedDate }
func (p *Page) Relations() []Relationship        { return p.relations }

// AttachContent stores the raw fetched content transiently on the page; it is
// never written back out by the storage stage (spec.md §4.6 step 2).
func (p *Page) AttachContent(raw string, sourceType SourceType) {
	p.rawContent = raw
	p.sourceType = sourceType
}

// AdvanceTo moves the page into the in_progress state once the orchestrator
// has begun stage processing.
func (p *Page) AdvanceTo(status Status, now time.Time) {
	p.status = status
	p.Status = status
	p.touch(now)
}

// SetTitle records the extracted title (metadata stage).
func (p *Page) SetTitle(title string) {
	p.title = title
	p.Title = title
}

// SetKeywords replaces the keyword-score map produced by the analysis stage
// and keeps metrics.KeywordCount in sync (invariant: keyword_count == |keywords|).
func (p *Page) SetKeywords(keywords map[string]float64) {
	p.keywords = keywords
	p.Keywords = keywords
	p.metrics.KeywordCount = len(keywords)
}

// AddRelationship appends an outgoing relationship reference.
func (p *Page) AddRelationship(rel Relationship) {
	p.relations = append(p.relations, rel)
	p.Relationships = p.relations
}

// AddError appends an error string; callers are responsible for also calling
// MarkError so the status/errors invariant holds.
func (p *Page) AddError(msg string) {
	p.errs = append(p.errs, msg)
	p.Errors = p.errs
}

// MarkActive transitions a page to its terminal success state.
func (p *Page) MarkActive(now time.Time) {
	p.status = StatusActive
	p.Status = StatusActive
	p.touch(now)
	p.version = p.version.Next()
	p.Version = p.version.Int()
	p.addEvent(newActivatedEvent(p.id, len(p.keywords), p.version, now))
}

// MarkError transitions a page to its terminal failure state, appending the
// reason so the `status == error ⇒ errors non-empty` invariant always holds.
func (p *Page) MarkError(reason string, now time.Time) {
	p.AddError(reason)
	p.status = StatusError
	p.Status = StatusError
	p.touch(now)
	p.version = p.version.Next()
	p.Version = p.version.Int()
	p.addEvent(newErroredEvent(p.id, reason, p.version, now))
}

// SetMetadata records the non-content metadata fields extracted by the
// metadata-stage components.
func (p *Page) SetMetadata(language, author string, wordCount int, readingMinutes float64, published, modified *time.Time) {
	p.language = language
	p.author = author
	p.wordCount = wordCount
	p.readingMinutes = readingMinutes
	p.publishedDate = published
	p.modifiedDate = modified
}

// SetQualityScores sets the metadata-level and metric-level quality scores,
// which spec.md §6 persists under distinct property names.
func (p *Page) SetQualityScores(metadataQuality, metricQuality, relevance float64) {
	p.metaQuality = metadataQuality
	p.metrics.QualityScore = metricQuality
	p.metrics.RelevanceScore = relevance
}

// SetProcessingTime records total stage processing time for observability.
func (p *Page) SetProcessingTime(d time.Duration) {
	p.metrics.ProcessingTime = d
}

// SetEmbeddingStatus updates the (external) embedding subsystem's status.
func (p *Page) SetEmbeddingStatus(s EmbeddingStatus) {
	p.embeddingStatus = s
}

// SetCustom stores an arbitrary custom key (flattened to `custom_<key>` on
// persistence per spec.md §6).
func (p *Page) SetCustom(key string, value interface{}) {
	p.custom[key] = value
	p.Custom[key] = value
}

// SetSiteID records the owning site's id, established by the storage stage's
// get-or-create-site-by-domain step (spec.md §3's CONTAINS relationship).
func (p *Page) SetSiteID(id shared.SiteID) {
	p.siteID = id
	p.SiteID = id
}

// BeginReprocessing resets a page's per-run transient state (errors,
// recorded relationship refs) ahead of a fresh pass through the pipeline,
// while keeping its id, url, domain and discovery time intact. This is what
// makes resubmitting an already-known URL an update of the same Page rather
// than the creation of a second one (spec.md Testable Property 6, idempotent
// upsert).
func (p *Page) BeginReprocessing(now time.Time) {
	p.errs = nil
	p.Errors = nil
	p.relations = nil
	p.Relationships = nil
	p.touch(now)
}

// ApplyBrowserContext records a browser context for the current submission
// and its associated tab/window/bookmark identifiers. Enforces the
// invariant that active_tab/open_tab contexts carry tab_id and window_id.
func (p *Page) ApplyBrowserContext(ctx BrowserContext, tabID, windowID, bookmarkID string) error {
	if (ctx == ContextActiveTab || ctx == ContextOpenTab) && (tabID == "" || windowID == "") {
		return ingesterrors.Validation(string(ingesterrors.CodeValidationFailed),
			"active_tab/open_tab contexts require tab_id and window_id").Build()
	}
	p.browserContexts[ctx] = true
	if tabID != "" {
		p.tabID = tabID
	}
	if windowID != "" {
		p.windowID = windowID
	}
	if bookmarkID != "" {
		p.bookmarkID = bookmarkID
	}
	return nil
}

// BrowserContexts returns the set of contexts this page was seen under.
func (p *Page) BrowserContexts() []BrowserContext {
	out := make([]BrowserContext, 0, len(p.browserContexts))
	for c := range p.browserContexts {
		out = append(out, c)
	}
	return out
}

// RecordVisit increments the visit metric and refreshes last_accessed; the
// pipeline service calls this for active_tab/open_tab contexts (spec.md §4.7
// step 4).
func (p *Page) RecordVisit(now time.Time) {
	p.metrics.VisitCount++
	p.lastAccessed = now
	p.LastAccessed = now
}

// Validate checks invariants that must hold before the page is persisted.
func (p *Page) Validate() error {
	if p.id.IsEmpty() {
		return ingesterrors.Validation(string(ingesterrors.CodeMissingField), "page id is required").Build()
	}
	if p.url == "" {
		return ingesterrors.Validation(string(ingesterrors.CodeMissingField), "page url is required").Build()
	}
	if p.metrics.KeywordCount != len(p.keywords) {
		return ingesterrors.Validation(string(ingesterrors.CodeValidationFailed),
			"keyword_count must equal len(keywords)").Build()
	}
	if p.status == StatusError && len(p.errs) == 0 {
		return ingesterrors.Validation(string(ingesterrors.CodeValidationFailed),
			"status=error requires at least one error message").Build()
	}
	if (p.browserContexts[ContextActiveTab] || p.browserContexts[ContextOpenTab]) && (p.tabID == "" || p.windowID == "") {
		return ingesterrors.Validation(string(ingesterrors.CodeValidationFailed),
			"active_tab/open_tab browser contexts require tab_id and window_id").Build()
	}
	return nil
}

// Domain events

func (p *Page) GetUncommittedEvents() []shared.DomainEvent { return p.events }
func (p *Page) MarkEventsAsCommitted()                     { p.events = []shared.DomainEvent{} }

func (p *Page) addEvent(event shared.DomainEvent) {
	p.events = append(p.events, event)
}

func (p *Page) touch(now time.Time) {
	p.lastAccessed = now
	p.LastAccessed = now
}
