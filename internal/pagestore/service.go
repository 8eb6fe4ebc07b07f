// Package pagestore is the read-model service atop graphstore: validate,
// then delegate. Grounded on the teacher's internal/service/category.Service
// (thin business-rule layer wrapping a single repository dependency),
// retargeted from category/memory operations to page/site/task lookups
// (spec.md §2 item 3).
package pagestore

import (
	"context"

	"ingestgraph/internal/domain/keywordmodel"
	"ingestgraph/internal/domain/page"
	"ingestgraph/internal/domain/shared"
	"ingestgraph/internal/domain/site"
	"ingestgraph/internal/graphstore"
	"ingestgraph/internal/ingesterrors"
)

// Service is the read-model surface the HTTP API and pipeline service
// consult for page/site lookups.
type Service interface {
	GetPage(ctx context.Context, id shared.PageID) (*page.Page, error)
	GetPageByURL(ctx context.Context, url string) (*page.Page, error)
	GetSite(ctx context.Context, id shared.SiteID) (*site.Site, error)
	GetSiteByURL(ctx context.Context, url string) (*site.Site, error)
	ListPages(ctx context.Context, query graphstore.PageQuery) ([]*page.Page, error)
	RelatedKeywords(ctx context.Context, id shared.KeywordID, query graphstore.RelatedKeywordsQuery) ([]*keywordmodel.Relationship, error)
	SavePage(ctx context.Context, p *page.Page) error
	SaveSite(ctx context.Context, s *site.Site) error
}

type service struct {
	store graphstore.GraphStore
}

// NewService creates a pagestore.Service backed by the given graph store.
func NewService(store graphstore.GraphStore) Service {
	return &service{store: store}
}

func (s *service) GetPage(ctx context.Context, id shared.PageID) (*page.Page, error) {
	if id.IsEmpty() {
		return nil, ingesterrors.Validation(string(ingesterrors.CodeMissingField), "page id is required").Build()
	}
	p, err := s.store.GetPageByID(ctx, id)
	if err != nil {
		return nil, ingesterrors.Wrap(err, "pagestore", "failed to get page")
	}
	return p, nil
}

func (s *service) GetPageByURL(ctx context.Context, url string) (*page.Page, error) {
	if url == "" {
		return nil, ingesterrors.Validation(string(ingesterrors.CodeMissingField), "url is required").Build()
	}
	p, err := s.store.GetPageByURL(ctx, url)
	if err != nil {
		return nil, ingesterrors.Wrap(err, "pagestore", "failed to get page by url")
	}
	return p, nil
}

func (s *service) GetSite(ctx context.Context, id shared.SiteID) (*site.Site, error) {
	if id.IsEmpty() {
		return nil, ingesterrors.Validation(string(ingesterrors.CodeMissingField), "site id is required").Build()
	}
	site_, err := s.store.GetSiteByID(ctx, id)
	if err != nil {
		return nil, ingesterrors.Wrap(err, "pagestore", "failed to get site")
	}
	return site_, nil
}

func (s *service) GetSiteByURL(ctx context.Context, url string) (*site.Site, error) {
	if url == "" {
		return nil, ingesterrors.Validation(string(ingesterrors.CodeMissingField), "url is required").Build()
	}
	site_, err := s.store.GetSiteByURL(ctx, url)
	if err != nil {
		return nil, ingesterrors.Wrap(err, "pagestore", "failed to get site by url")
	}
	return site_, nil
}

func (s *service) ListPages(ctx context.Context, query graphstore.PageQuery) ([]*page.Page, error) {
	pages, err := s.store.QueryPages(ctx, query)
	if err != nil {
		return nil, ingesterrors.Wrap(err, "pagestore", "failed to list pages")
	}
	return pages, nil
}

func (s *service) RelatedKeywords(ctx context.Context, id shared.KeywordID, query graphstore.RelatedKeywordsQuery) ([]*keywordmodel.Relationship, error) {
	rels, err := s.store.FindRelatedKeywords(ctx, id, query)
	if err != nil {
		return nil, ingesterrors.Wrap(err, "pagestore", "failed to find related keywords")
	}
	return rels, nil
}

func (s *service) SavePage(ctx context.Context, p *page.Page) error {
	if p == nil {
		return ingesterrors.Validation(string(ingesterrors.CodeMissingField), "page is required").Build()
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.store.CreateOrUpdatePage(ctx, p); err != nil {
		return ingesterrors.Wrap(err, "pagestore", "failed to save page")
	}
	return nil
}

func (s *service) SaveSite(ctx context.Context, site_ *site.Site) error {
	if site_ == nil {
		return ingesterrors.Validation(string(ingesterrors.CodeMissingField), "site is required").Build()
	}
	if err := site_.Validate(); err != nil {
		return err
	}
	if err := s.store.CreateOrUpdateSite(ctx, site_); err != nil {
		return ingesterrors.Wrap(err, "pagestore", "failed to save site")
	}
	return nil
}
