// Package graphstore defines the storage-stage contract for persisting
// pages, sites and keyword relationships into a property-graph-shaped store
// (spec.md §5), with a single-table DynamoDB implementation under
// graphstore/dynamodb.
//
// Grounded on the teacher's internal/repository.Repository interface family
// (NodeReader/NodeWriter/EdgeReader/EdgeWriter), collapsed here into one
// GraphStore surface sized to the ingestion pipeline's write-heavy,
// read-light access pattern.
package graphstore

import (
	"context"

	"ingestgraph/internal/domain/keywordmodel"
	"ingestgraph/internal/domain/page"
	"ingestgraph/internal/domain/shared"
	"ingestgraph/internal/domain/site"
	"ingestgraph/internal/domain/task"
)

// PageQuery filters the result set for QueryPages.
type PageQuery struct {
	SiteID shared.SiteID
	Status page.Status
	Limit  int
}

// RelatedKeywordsQuery filters and bounds the result set for
// FindRelatedKeywords (spec.md §4.2's find_related_nodes(type, min_score,
// limit) contract). A zero Type matches every relationship type; a zero
// MinScore matches every confidence; a zero Limit leaves the result
// unbounded.
type RelatedKeywordsQuery struct {
	Type     keywordmodel.RelationshipType
	MinScore float64
	Limit    int
}

// GraphStore is the storage stage's view of the property-graph backend
// (spec.md §5: create_or_update_node, create_relationship, get_node_by_id,
// get_node_by_property, find_related_nodes, query_nodes,
// batch_create_relationships).
type GraphStore interface {
	CreateOrUpdatePage(ctx context.Context, p *page.Page) error
	CreateOrUpdateSite(ctx context.Context, s *site.Site) error

	GetPageByID(ctx context.Context, id shared.PageID) (*page.Page, error)
	GetPageByURL(ctx context.Context, url string) (*page.Page, error)
	GetSiteByID(ctx context.Context, id shared.SiteID) (*site.Site, error)
	GetSiteByURL(ctx context.Context, url string) (*site.Site, error)

	QueryPages(ctx context.Context, query PageQuery) ([]*page.Page, error)

	CreateRelationship(ctx context.Context, rel *keywordmodel.Relationship) error
	BatchCreateRelationships(ctx context.Context, rels []*keywordmodel.Relationship) error
	FindRelatedKeywords(ctx context.Context, id shared.KeywordID, query RelatedKeywordsQuery) ([]*keywordmodel.Relationship, error)

	CreateOrUpdateTask(ctx context.Context, t *task.Task) error
	GetTaskByID(ctx context.Context, id shared.TaskID) (*task.Task, error)
}
