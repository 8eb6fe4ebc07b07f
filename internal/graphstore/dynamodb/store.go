package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"ingestgraph/internal/domain/page"
	"ingestgraph/internal/domain/shared"
	"ingestgraph/internal/domain/site"
	"ingestgraph/internal/graphstore"
	"ingestgraph/internal/ingesterrors"
)

// Store is a single-table DynamoDB implementation of graphstore.GraphStore,
// grounded on the teacher's NodeRepository/EdgeRepository (composite PK/SK,
// optimistic-locking condition expressions, attributevalue marshaling).
type Store struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewStore constructs a Store against the given table.
func NewStore(client *dynamodb.Client, tableName string, logger *zap.Logger) *Store {
	return &Store{client: client, tableName: tableName, logger: logger}
}

var _ graphstore.GraphStore = (*Store)(nil)

// CreateOrUpdatePage upserts a page's metadata item, keyed by its own id
// (spec.md §5 create_or_update_node). When the page carries a SiteID it also
// writes the CONTAINS link item under the owning site's partition
// (PK=SITE#{siteID}, SK=PAGE#{pageID}, spec.md §3/§6's site->page edge),
// so QueryPages can list a site's pages with a Query instead of a full Scan.
func (s *Store) CreateOrUpdatePage(ctx context.Context, p *page.Page) error {
	item, err := toPageRecord(p)
	if err != nil {
		return ingesterrors.QueryExecution(string(ingesterrors.CodeStoreQueryExecution), "failed to marshal page").WithCause(err).Build()
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return s.wrapStoreError("PutItem page", err)
	}

	if p.SiteID.IsEmpty() {
		return nil
	}

	link := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		link[k] = v
	}
	link["PK"] = &types.AttributeValueMemberS{Value: BuildSitePK(p.SiteID.String())}
	link["SK"] = &types.AttributeValueMemberS{Value: BuildPageSK(p.ID.String())}
	link["EntityType"] = &types.AttributeValueMemberS{Value: entityTypeContains}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      link,
	})
	if err != nil {
		return s.wrapStoreError("PutItem site-page link", err)
	}
	return nil
}

// CreateOrUpdateSite upserts a site's metadata item.
func (s *Store) CreateOrUpdateSite(ctx context.Context, site_ *site.Site) error {
	item, err := toSiteRecord(site_)
	if err != nil {
		return ingesterrors.QueryExecution(string(ingesterrors.CodeStoreQueryExecution), "failed to marshal site").WithCause(err).Build()
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return s.wrapStoreError("PutItem site", err)
	}
	return nil
}

// GetPageByID retrieves a page's metadata item by id (spec.md §5
// get_node_by_id).
func (s *Store) GetPageByID(ctx context.Context, id shared.PageID) (*page.Page, error) {
	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: BuildPagePK(id.String())},
		"SK": &types.AttributeValueMemberS{Value: BuildMetaSK},
	}

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       key,
	})
	if err != nil {
		return nil, s.wrapStoreError("GetItem page", err)
	}
	if result.Item == nil {
		return nil, ingesterrors.Wrap(shared.ErrPageNotFound, "storage", "page not found")
	}
	return fromPageRecord(result.Item)
}

// GetPageByURL retrieves a page's metadata item by its unique url (spec.md
// §5 get_node_by_property; spec.md §4.2's Page.url uniqueness constraint).
func (s *Store) GetPageByURL(ctx context.Context, url string) (*page.Page, error) {
	keyEx := expression.Key("url").Equal(expression.Value(url))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, ingesterrors.QueryExecution(string(ingesterrors.CodeStoreQueryExecution), "failed to build url query").WithCause(err).Build()
	}

	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		IndexName:                 aws.String(urlIndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, s.wrapStoreError("Query page-by-url", err)
	}
	if len(result.Items) == 0 {
		return nil, ingesterrors.Wrap(shared.ErrPageNotFound, "storage", "page not found for url")
	}
	return fromPageRecord(result.Items[0])
}

// GetSiteByID retrieves a site's metadata item by id.
func (s *Store) GetSiteByID(ctx context.Context, id shared.SiteID) (*site.Site, error) {
	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: BuildSitePK(id.String())},
		"SK": &types.AttributeValueMemberS{Value: BuildMetaSK},
	}

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       key,
	})
	if err != nil {
		return nil, s.wrapStoreError("GetItem site", err)
	}
	if result.Item == nil {
		return nil, ingesterrors.Wrap(shared.ErrSiteNotFound, "storage", "site not found")
	}
	return fromSiteRecord(result.Item)
}

// GetSiteByURL retrieves a site by its unique scheme://domain url, using the
// same url-index GSI as GetPageByURL (spec.md §5 get_node_by_property).
func (s *Store) GetSiteByURL(ctx context.Context, url string) (*site.Site, error) {
	keyEx := expression.Key("url").Equal(expression.Value(url))
	filter := expression.Name("EntityType").Equal(expression.Value(entityTypeSite))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).WithFilter(filter).Build()
	if err != nil {
		return nil, ingesterrors.QueryExecution(string(ingesterrors.CodeStoreQueryExecution), "failed to build site url query").WithCause(err).Build()
	}

	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		IndexName:                 aws.String(urlIndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, s.wrapStoreError("Query site-by-url", err)
	}
	if len(result.Items) == 0 {
		return nil, ingesterrors.Wrap(shared.ErrSiteNotFound, "storage", "site not found for url")
	}
	return fromSiteRecord(result.Items[0])
}

// QueryPages lists pages, optionally scoped to a site and filtered by status
// (spec.md §5 query_nodes). When query.SiteID is set it Queries the CONTAINS
// link items under that site's partition (PK=SITE#{siteID}, SK begins_with
// PAGE#) instead of scanning the whole table.
func (s *Store) QueryPages(ctx context.Context, query graphstore.PageQuery) ([]*page.Page, error) {
	if !query.SiteID.IsEmpty() {
		return s.queryPagesBySite(ctx, query)
	}

	filter := expression.Name("EntityType").Equal(expression.Value(entityTypePage))
	if query.Status != "" {
		filter = filter.And(expression.Name("status").Equal(expression.Value(string(query.Status))))
	}

	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, ingesterrors.QueryExecution(string(ingesterrors.CodeStoreQueryExecution), "failed to build page query").WithCause(err).Build()
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(s.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if query.Limit > 0 {
		input.Limit = aws.Int32(int32(query.Limit))
	}

	result, err := s.client.Scan(ctx, input)
	if err != nil {
		return nil, s.wrapStoreError("Scan pages", err)
	}

	pages := make([]*page.Page, 0, len(result.Items))
	for _, item := range result.Items {
		p, err := fromPageRecord(item)
		if err != nil {
			s.logger.Warn("failed to unmarshal page", zap.Error(err))
			continue
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func (s *Store) queryPagesBySite(ctx context.Context, query graphstore.PageQuery) ([]*page.Page, error) {
	keyEx := expression.Key("PK").Equal(expression.Value(BuildSitePK(query.SiteID.String()))).
		And(expression.Key("SK").BeginsWith("PAGE#"))
	builder := expression.NewBuilder().WithKeyCondition(keyEx)
	if query.Status != "" {
		builder = builder.WithFilter(expression.Name("status").Equal(expression.Value(string(query.Status))))
	}

	expr, err := builder.Build()
	if err != nil {
		return nil, ingesterrors.QueryExecution(string(ingesterrors.CodeStoreQueryExecution), "failed to build site page query").WithCause(err).Build()
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if query.Limit > 0 {
		input.Limit = aws.Int32(int32(query.Limit))
	}

	result, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, s.wrapStoreError("Query site pages", err)
	}

	pages := make([]*page.Page, 0, len(result.Items))
	for _, item := range result.Items {
		p, err := fromPageRecord(item)
		if err != nil {
			s.logger.Warn("failed to unmarshal page", zap.Error(err))
			continue
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func (s *Store) wrapStoreError(op string, err error) error {
	return ingesterrors.QueryExecution(string(ingesterrors.CodeStoreQueryExecution), fmt.Sprintf("%s failed", op)).WithCause(err).Build()
}
