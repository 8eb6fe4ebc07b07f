package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingestgraph/internal/domain/keywordmodel"
	"ingestgraph/internal/domain/page"
	"ingestgraph/internal/domain/shared"
	"ingestgraph/internal/domain/site"
	"ingestgraph/internal/domain/stage"
	"ingestgraph/internal/domain/task"
	"ingestgraph/internal/graphstore"
)

// fakeStore is a minimal in-memory GraphStore, used to exercise the
// orchestrator's lookup-before-create path (spec.md Testable Property 6).
type fakeStore struct {
	pagesByURL map[string]*page.Page
}

func newFakeStore() *fakeStore {
	return &fakeStore{pagesByURL: map[string]*page.Page{}}
}

func (f *fakeStore) CreateOrUpdatePage(ctx context.Context, p *page.Page) error {
	f.pagesByURL[p.URL] = p
	return nil
}
func (f *fakeStore) CreateOrUpdateSite(ctx context.Context, s *site.Site) error { return nil }
func (f *fakeStore) GetPageByID(ctx context.Context, id shared.PageID) (*page.Page, error) {
	return nil, shared.ErrPageNotFound
}
func (f *fakeStore) GetPageByURL(ctx context.Context, url string) (*page.Page, error) {
	if p, ok := f.pagesByURL[url]; ok {
		return p, nil
	}
	return nil, shared.ErrPageNotFound
}
func (f *fakeStore) GetSiteByID(ctx context.Context, id shared.SiteID) (*site.Site, error) {
	return nil, shared.ErrSiteNotFound
}
func (f *fakeStore) GetSiteByURL(ctx context.Context, url string) (*site.Site, error) {
	return nil, shared.ErrSiteNotFound
}
func (f *fakeStore) QueryPages(ctx context.Context, query graphstore.PageQuery) ([]*page.Page, error) {
	return nil, nil
}
func (f *fakeStore) CreateRelationship(ctx context.Context, rel *keywordmodel.Relationship) error {
	return nil
}
func (f *fakeStore) BatchCreateRelationships(ctx context.Context, rels []*keywordmodel.Relationship) error {
	return nil
}
func (f *fakeStore) FindRelatedKeywords(ctx context.Context, id shared.KeywordID, query graphstore.RelatedKeywordsQuery) ([]*keywordmodel.Relationship, error) {
	return nil, nil
}
func (f *fakeStore) CreateOrUpdateTask(ctx context.Context, t *task.Task) error { return nil }
func (f *fakeStore) GetTaskByID(ctx context.Context, id shared.TaskID) (*task.Task, error) {
	return nil, shared.ErrTaskNotFound
}

var _ graphstore.GraphStore = (*fakeStore)(nil)

type fakeComponent struct {
	name      string
	kind      stage.ComponentKind
	processFn func(ctx context.Context, p *page.Page) error
	failCount int
}

func (c *fakeComponent) Kind() stage.ComponentKind { return c.kind }
func (c *fakeComponent) Name() string              { return c.name }
func (c *fakeComponent) Validate(ctx context.Context, p *page.Page) (bool, error) {
	return true, nil
}
func (c *fakeComponent) Process(ctx context.Context, p *page.Page) error {
	if c.failCount > 0 {
		c.failCount--
		return assert.AnError
	}
	if c.processFn != nil {
		return c.processFn(ctx, p)
	}
	return nil
}

func quickConfigs() map[stage.Name]stage.Config {
	configs := stage.DefaultConfigs()
	for name, cfg := range configs {
		cfg.TimeoutSeconds = 1
		cfg.Retry = stage.RetryConfig{MaxAttempts: 2, DelaySeconds: 0.001, MaxDelaySeconds: 0.01, ExponentialBackoff: true}
		configs[name] = cfg
	}
	return configs
}

func TestOrchestrator_HappyPath(t *testing.T) {
	registry := Registry{
		stage.Metadata: {&fakeComponent{name: "meta", kind: stage.KindMetadata}},
		stage.Analysis: {&fakeComponent{name: "kw", kind: stage.KindKeyword, processFn: func(ctx context.Context, p *page.Page) error {
			p.SetKeywords(map[string]float64{"graph": 0.9})
			return nil
		}}},
	}
	configs := quickConfigs()
	coordinator := NewCoordinator(registry, configs)

	var events []stage.Event
	orch := NewOrchestrator(coordinator, configs, nil, func(e stage.Event) { events = append(events, e) })

	p, err := orch.ProcessPage(context.Background(), "https://example.com/a", "Graph databases store graph data.")
	require.NoError(t, err)
	assert.Equal(t, page.StatusActive, p.StatusValue())
	assert.Equal(t, "example.com", p.Domain)
	assert.Equal(t, 1, p.KeywordCount())

	assert.Equal(t, "complete", events[len(events)-1].Type)
}

func TestOrchestrator_RequiredStageFailureMarksError(t *testing.T) {
	registry := Registry{
		stage.Content: {&fakeComponent{name: "content", kind: stage.KindContent, failCount: 99}},
	}
	configs := quickConfigs()
	coordinator := NewCoordinator(registry, configs)
	orch := NewOrchestrator(coordinator, configs, nil)

	p, err := orch.ProcessPage(context.Background(), "https://example.com/a", "x")
	require.Error(t, err)
	assert.Equal(t, page.StatusError, p.StatusValue())
	assert.NotEmpty(t, p.Errors)
}

func TestOrchestrator_StageTimeout(t *testing.T) {
	registry := Registry{
		stage.Analysis: {&fakeComponent{name: "slow", kind: stage.KindKeyword, processFn: func(ctx context.Context, p *page.Page) error {
			select {
			case <-time.After(2 * time.Second):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}}},
	}
	configs := quickConfigs()
	configs[stage.Analysis] = stage.Config{
		TimeoutSeconds: 0.05, Required: true, ConcurrentComponents: true, ValidationRequired: false,
		Retry: stage.RetryConfig{MaxAttempts: 1, DelaySeconds: 0.001, MaxDelaySeconds: 0.01},
	}
	coordinator := NewCoordinator(registry, configs)
	orch := NewOrchestrator(coordinator, configs, nil)

	p, err := orch.ProcessPage(context.Background(), "https://example.com/a", "x")
	require.Error(t, err)
	assert.Equal(t, page.StatusError, p.StatusValue())
}

func TestOrchestrator_ResubmitSameURLUpdatesExistingPage(t *testing.T) {
	registry := Registry{
		stage.Analysis: {&fakeComponent{name: "kw", kind: stage.KindKeyword, processFn: func(ctx context.Context, p *page.Page) error {
			p.SetKeywords(map[string]float64{"graph": 0.9})
			return nil
		}}},
	}
	configs := quickConfigs()
	coordinator := NewCoordinator(registry, configs)
	store := newFakeStore()
	orch := NewOrchestrator(coordinator, configs, store)

	first, err := orch.ProcessPage(context.Background(), "https://example.com/a", "first pass")
	require.NoError(t, err)
	require.NoError(t, store.CreateOrUpdatePage(context.Background(), first))

	second, err := orch.ProcessPage(context.Background(), "https://example.com/a", "second pass")
	require.NoError(t, err)

	assert.True(t, second.ID.Equals(first.ID), "resubmitting a known url must reuse its page id, not mint a new one")
	assert.Equal(t, 1, len(store.pagesByURL), "resubmission must update the same stored record, not add a second one")
}

func TestNormalizeURL_FileScheme(t *testing.T) {
	n, err := normalizeURL("file:///tmp/a.html")
	require.NoError(t, err)
	assert.Equal(t, "localhost", n.Domain)
}

func TestNormalizeURL_RegistrableDomain(t *testing.T) {
	n, err := normalizeURL("https://sub.example.co.uk/path")
	require.NoError(t, err)
	assert.Equal(t, "co.uk", n.Domain)
}
