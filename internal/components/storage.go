package components

import (
	"context"
	"errors"
	"net/url"
	"time"

	"ingestgraph/internal/domain/keywordmodel"
	"ingestgraph/internal/domain/page"
	"ingestgraph/internal/domain/shared"
	"ingestgraph/internal/domain/site"
	"ingestgraph/internal/domain/stage"
	"ingestgraph/internal/graphstore"
)

// StorageComponent persists the page, its owning site, and the
// relationships the analysis stage derived (spec.md §4.4 storage stage,
// §4.2 create_or_update_node/create_relationship/batch_create_relationships).
type StorageComponent struct {
	store graphstore.GraphStore
	clock func() time.Time
}

// NewStorageComponent constructs a StorageComponent atop a GraphStore.
func NewStorageComponent(store graphstore.GraphStore, clock func() time.Time) *StorageComponent {
	if clock == nil {
		clock = time.Now
	}
	return &StorageComponent{store: store, clock: clock}
}

func (c *StorageComponent) Kind() stage.ComponentKind { return stage.KindStorage }
func (c *StorageComponent) Name() string              { return "graph_writer" }

func (c *StorageComponent) Validate(ctx context.Context, p *page.Page) (bool, error) {
	return p.Domain != "", nil
}

func (c *StorageComponent) Process(ctx context.Context, p *page.Page) error {
	now := c.clock()

	siteURL := p.Domain
	if u, err := url.Parse(p.URL); err == nil && u.Scheme != "" {
		siteURL = u.Scheme + "://" + p.Domain
	}
	site_, err := c.getOrCreateSite(ctx, siteURL, now)
	if err != nil {
		return err
	}
	site_.RegisterPage(false, now)
	if err := c.store.CreateOrUpdateSite(ctx, site_); err != nil {
		return err
	}
	p.SetSiteID(site_.ID)

	// relationshipsCustomKey only shuttles data from the analysis stage to
	// this one; it is never meant to be persisted on the page record itself
	// (keywordmodel.Relationship's endpoint ids have no exported internals
	// for attributevalue to marshal), so it comes back off Custom here.
	rels, _ := p.Custom[relationshipsCustomKey].([]*keywordmodel.Relationship)
	delete(p.Custom, relationshipsCustomKey)

	if err := c.store.CreateOrUpdatePage(ctx, p); err != nil {
		return err
	}

	if len(rels) > 0 {
		if err := c.store.BatchCreateRelationships(ctx, rels); err != nil {
			return err
		}
	}
	return nil
}

func (c *StorageComponent) getOrCreateSite(ctx context.Context, domain string, now time.Time) (*site.Site, error) {
	existing, err := c.store.GetSiteByURL(ctx, domain)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, shared.ErrSiteNotFound) {
		return nil, err
	}
	return site.NewSite(domain, now)
}
