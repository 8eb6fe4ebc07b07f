package pipelinesvc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ingestgraph/internal/domain/keywordmodel"
	"ingestgraph/internal/domain/page"
	"ingestgraph/internal/domain/shared"
	"ingestgraph/internal/domain/site"
	"ingestgraph/internal/domain/stage"
	"ingestgraph/internal/domain/task"
	"ingestgraph/internal/graphstore"
	"ingestgraph/internal/pipeline"
)

type fakeGraphStore struct {
	mu    sync.Mutex
	pages map[string]*page.Page
	tasks map[string]*task.Task
}

func newFakeGraphStore() *fakeGraphStore {
	return &fakeGraphStore{pages: map[string]*page.Page{}, tasks: map[string]*task.Task{}}
}

func (f *fakeGraphStore) CreateOrUpdatePage(ctx context.Context, p *page.Page) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[p.ID.String()] = p
	return nil
}
func (f *fakeGraphStore) CreateOrUpdateSite(ctx context.Context, s *site.Site) error { return nil }
func (f *fakeGraphStore) GetPageByID(ctx context.Context, id shared.PageID) (*page.Page, error) {
	return nil, shared.ErrPageNotFound
}
func (f *fakeGraphStore) GetPageByURL(ctx context.Context, url string) (*page.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pages {
		if p.URL == url {
			return p, nil
		}
	}
	return nil, shared.ErrPageNotFound
}
func (f *fakeGraphStore) GetSiteByID(ctx context.Context, id shared.SiteID) (*site.Site, error) {
	return nil, shared.ErrSiteNotFound
}
func (f *fakeGraphStore) GetSiteByURL(ctx context.Context, url string) (*site.Site, error) {
	return nil, shared.ErrSiteNotFound
}
func (f *fakeGraphStore) QueryPages(ctx context.Context, query graphstore.PageQuery) ([]*page.Page, error) {
	return nil, nil
}
func (f *fakeGraphStore) CreateRelationship(ctx context.Context, rel *keywordmodel.Relationship) error {
	return nil
}
func (f *fakeGraphStore) BatchCreateRelationships(ctx context.Context, rels []*keywordmodel.Relationship) error {
	return nil
}
func (f *fakeGraphStore) FindRelatedKeywords(ctx context.Context, id shared.KeywordID, query graphstore.RelatedKeywordsQuery) ([]*keywordmodel.Relationship, error) {
	return nil, nil
}
func (f *fakeGraphStore) CreateOrUpdateTask(ctx context.Context, t *task.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[t.ID.String()] = t
	return nil
}
func (f *fakeGraphStore) GetTaskByID(ctx context.Context, id shared.TaskID) (*task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tasks[id.String()]; ok {
		return t, nil
	}
	return nil, shared.ErrTaskNotFound
}

var _ graphstore.GraphStore = (*fakeGraphStore)(nil)

type fakeComponent struct {
	name string
	kind stage.ComponentKind
}

func (c *fakeComponent) Kind() stage.ComponentKind { return c.kind }
func (c *fakeComponent) Name() string              { return c.name }
func (c *fakeComponent) Validate(ctx context.Context, p *page.Page) (bool, error) {
	return true, nil
}
func (c *fakeComponent) Process(ctx context.Context, p *page.Page) error {
	p.SetKeywords(map[string]float64{"graph": 0.9, "database": 0.6})
	return nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.PopTimeout = 5 * time.Millisecond
	cfg.IdleSleep = 5 * time.Millisecond
	cfg.WorkerTimeout = time.Second
	cfg.EnqueueTxTimeout = time.Second
	return cfg
}

func newTestOrchestrator(store graphstore.GraphStore) *pipeline.Orchestrator {
	registry := pipeline.Registry{
		stage.Analysis: {&fakeComponent{name: "kw", kind: stage.KindKeyword}},
	}
	configs := stage.DefaultConfigs()
	for name, c := range configs {
		c.TimeoutSeconds = 2
		configs[name] = c
	}
	coordinator := pipeline.NewCoordinator(registry, configs)
	return pipeline.NewOrchestrator(coordinator, configs, store)
}

func TestService_EnqueueAndProcess(t *testing.T) {
	store := newFakeGraphStore()
	svc := NewService(testConfig(), newTestOrchestrator(store), store, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	result, err := svc.EnqueueURLs(context.Background(), []Submission{
		{URL: "https://example.com/a", Context: page.ContextActiveTab, TabID: "t1", WindowID: "w1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.URLsEnqueued)

	taskID, err := shared.ParseTaskID(result.TaskID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		tk, err := svc.GetStatus(context.Background(), taskID)
		return err == nil && tk.Status == task.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestService_GetStatus_UnknownTask(t *testing.T) {
	store := newFakeGraphStore()
	svc := NewService(testConfig(), newTestOrchestrator(store), store, zap.NewNop())

	_, err := svc.GetStatus(context.Background(), shared.NewTaskID())
	assert.ErrorIs(t, err, shared.ErrTaskNotFound)
}

func TestService_GetStatus_SlowPathRepopulatesMemory(t *testing.T) {
	store := newFakeGraphStore()
	now := time.Now()
	tk, err := task.NewTask([]string{"https://example.com/a"}, now)
	require.NoError(t, err)
	require.NoError(t, store.CreateOrUpdateTask(context.Background(), tk))

	svc := NewService(testConfig(), newTestOrchestrator(store), store, zap.NewNop())

	got, err := svc.GetStatus(context.Background(), tk.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusEnqueued, got.Status)
}
