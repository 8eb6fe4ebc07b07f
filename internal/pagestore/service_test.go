package pagestore

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
	"ingestgraph/internal/domain/task"
	"ingestgraph/internal/graphstore"
)

type fakeStore struct {
	pages map[string]*page.Page
	sites map[string]*site.Site
	tasks map[string]*task.Task
}

func newFakeStore() *fakeStore {
	return &fakeStore{pages: map[string]*page.Page{}, sites: map[string]*site.Site{}, tasks: map[string]*task.Task{}}
}

func (f *fakeStore) CreateOrUpdateTask(ctx context.Context, t *task.Task) error {
	f.tasks[t.ID.String()] = t
	return nil
}
func (f *fakeStore) GetTaskByID(ctx context.Context, id shared.TaskID) (*task.Task, error) {
	if t, ok := f.tasks[id.String()]; ok {
		return t, nil
	}
	return nil, shared.ErrTaskNotFound
}

func (f *fakeStore) CreateOrUpdatePage(ctx context.Context, p *page.Page) error {
	f.pages[p.ID.String()] = p
	return nil
}
func (f *fakeStore) CreateOrUpdateSite(ctx context.Context, s *site.Site) error {
	f.sites[s.ID.String()] = s
	return nil
}
func (f *fakeStore) GetPageByID(ctx context.Context, id shared.PageID) (*page.Page, error) {
	if p, ok := f.pages[id.String()]; ok {
		return p, nil
	}
	return nil, shared.ErrPageNotFound
}
func (f *fakeStore) GetPageByURL(ctx context.Context, url string) (*page.Page, error) {
	for _, p := range f.pages {
		if p.URL == url {
			return p, nil
		}
	}
	return nil, shared.ErrPageNotFound
}
func (f *fakeStore) GetSiteByID(ctx context.Context, id shared.SiteID) (*site.Site, error) {
	if s, ok := f.sites[id.String()]; ok {
		return s, nil
	}
	return nil, shared.ErrSiteNotFound
}
func (f *fakeStore) GetSiteByURL(ctx context.Context, url string) (*site.Site, error) {
	for _, s := range f.sites {
		if s.URL == url {
			return s, nil
		}
	}
	return nil, shared.ErrSiteNotFound
}
func (f *fakeStore) QueryPages(ctx context.Context, query graphstore.PageQuery) ([]*page.Page, error) {
	out := make([]*page.Page, 0, len(f.pages))
	for _, p := range f.pages {
		out = append(out, p)
	}
	return out, nil
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

var _ graphstore.GraphStore = (*fakeStore)(nil)

func TestService_SaveAndGetPage(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	now := time.Now()

	p, err := page.NewPage("https://example.com/a", "example.com", now)
	require.NoError(t, err)

	require.NoError(t, svc.SavePage(context.Background(), p))

	got, err := svc.GetPage(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.URL, got.URL)

	byURL, err := svc.GetPageByURL(context.Background(), p.URL)
	require.NoError(t, err)
	assert.True(t, byURL.ID.Equals(p.ID))
}

func TestService_GetPage_RequiresID(t *testing.T) {
	svc := NewService(newFakeStore())
	_, err := svc.GetPage(context.Background(), shared.PageID{})
	assert.Error(t, err)
}

func TestService_SavePage_RejectsInvalidPage(t *testing.T) {
	svc := NewService(newFakeStore())
	now := time.Now()
	invalid := page.ReconstructPage(
		shared.NewPageID(), shared.SiteID{}, "https://example.com/a", "example.com", page.StatusError,
		"", nil, nil, nil,
		now, now, 0,
		nil, "", "", "",
		"", "", 0, 0,
		nil, nil, page.SourceUnknown, page.EmbeddingPending,
		nil, page.Metrics{}, shared.NewVersion(),
	)

	err := svc.SavePage(context.Background(), invalid)
	assert.Error(t, err)
}
