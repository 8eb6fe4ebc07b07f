package dynamodb

import (
	"context"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"ingestgraph/internal/domain/keywordmodel"
	"ingestgraph/internal/domain/shared"
	"ingestgraph/internal/graphstore"
	"ingestgraph/internal/ingesterrors"
)

// relationshipRecord is a keyword relationship stored under its source
// keyword's partition, sort-keyed by REL#{type}#{targetID} (spec.md §3's
// edge shape, canonicalized by keywordmodel.NewRelationship before it ever
// reaches this layer).
type relationshipRecord struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`

	ID         string    `dynamodbav:"id"`
	SourceID   string    `dynamodbav:"source_id"`
	TargetID   string    `dynamodbav:"target_id"`
	Type       string    `dynamodbav:"type"`
	Confidence float64   `dynamodbav:"confidence"`
	CreatedAt  time.Time `dynamodbav:"created_at"`

	EvidenceCount int      `dynamodbav:"evidence_count"`
	Methods       []string `dynamodbav:"evidence_methods"`
}

func toRelationshipRecord(rel *keywordmodel.Relationship) (map[string]types.AttributeValue, error) {
	methods := make([]string, 0, len(rel.Evidence))
	for _, e := range rel.Evidence {
		methods = append(methods, e.Method)
	}

	rec := relationshipRecord{
		PK:            BuildKeywordPK(rel.SourceID.String()),
		SK:            BuildRelationshipSK(string(rel.Type), rel.TargetID.String()),
		EntityType:    entityTypeRelationship,
		ID:            rel.ID,
		SourceID:      rel.SourceID.String(),
		TargetID:      rel.TargetID.String(),
		Type:          string(rel.Type),
		Confidence:    rel.Confidence,
		CreatedAt:     rel.CreatedAt,
		EvidenceCount: len(rel.Evidence),
		Methods:       methods,
	}
	return attributevalue.MarshalMap(rec)
}

func fromRelationshipRecord(item map[string]types.AttributeValue) (*keywordmodel.Relationship, error) {
	var rec relationshipRecord
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, err
	}

	sourceID, err := shared.NewKeywordID(rec.SourceID)
	if err != nil {
		return nil, err
	}
	targetID, err := shared.NewKeywordID(rec.TargetID)
	if err != nil {
		return nil, err
	}

	evidence := make([]keywordmodel.RelationshipEvidence, 0, rec.EvidenceCount)
	for i := 0; i < rec.EvidenceCount; i++ {
		method := ""
		if i < len(rec.Methods) {
			method = rec.Methods[i]
		}
		evidence = append(evidence, keywordmodel.RelationshipEvidence{Confidence: rec.Confidence, Method: method})
	}

	return &keywordmodel.Relationship{
		ID:         rec.ID,
		SourceID:   sourceID,
		TargetID:   targetID,
		Type:       keywordmodel.RelationshipType(rec.Type),
		Evidence:   evidence,
		Confidence: rec.Confidence,
		CreatedAt:  rec.CreatedAt,
	}, nil
}

// CreateRelationship writes one keyword edge (spec.md §5 create_relationship).
func (s *Store) CreateRelationship(ctx context.Context, rel *keywordmodel.Relationship) error {
	item, err := toRelationshipRecord(rel)
	if err != nil {
		return ingesterrors.QueryExecution(string(ingesterrors.CodeStoreQueryExecution), "failed to marshal relationship").WithCause(err).Build()
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return s.wrapStoreError("PutItem relationship", err)
	}
	return nil
}

// batchWriteChunkSize matches DynamoDB's 25-item BatchWriteItem limit
// (grounded on the teacher's batch-chunking convention).
const batchWriteChunkSize = 25

// BatchCreateRelationships writes multiple keyword edges in chunks of 25
// (spec.md §5 batch_create_relationships).
func (s *Store) BatchCreateRelationships(ctx context.Context, rels []*keywordmodel.Relationship) error {
	for start := 0; start < len(rels); start += batchWriteChunkSize {
		end := start + batchWriteChunkSize
		if end > len(rels) {
			end = len(rels)
		}
		if err := s.writeRelationshipChunk(ctx, rels[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeRelationshipChunk(ctx context.Context, rels []*keywordmodel.Relationship) error {
	writeRequests := make([]types.WriteRequest, 0, len(rels))
	for _, rel := range rels {
		item, err := toRelationshipRecord(rel)
		if err != nil {
			return ingesterrors.QueryExecution(string(ingesterrors.CodeStoreQueryExecution), "failed to marshal relationship").WithCause(err).Build()
		}
		writeRequests = append(writeRequests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: item},
		})
	}

	_, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{s.tableName: writeRequests},
	})
	if err != nil {
		return s.wrapStoreError("BatchWriteItem relationships", err)
	}
	return nil
}

// FindRelatedKeywords queries edges whose source is the given keyword,
// narrowed by relationship type and minimum confidence, sorted by
// descending confidence and capped at query.Limit (spec.md §4.2
// find_related_nodes(type, min_score, limit)).
func (s *Store) FindRelatedKeywords(ctx context.Context, id shared.KeywordID, query graphstore.RelatedKeywordsQuery) ([]*keywordmodel.Relationship, error) {
	sk := expression.Key("SK").BeginsWith("REL#")
	if query.Type != "" {
		sk = expression.Key("SK").BeginsWith(BuildRelationshipSK(string(query.Type), ""))
	}
	keyEx := expression.Key("PK").Equal(expression.Value(BuildKeywordPK(id.String()))).And(sk)
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, ingesterrors.QueryExecution(string(ingesterrors.CodeStoreQueryExecution), "failed to build relationship query").WithCause(err).Build()
	}

	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, s.wrapStoreError("Query relationships", err)
	}

	rels := make([]*keywordmodel.Relationship, 0, len(result.Items))
	for _, item := range result.Items {
		rel, err := fromRelationshipRecord(item)
		if err != nil {
			s.logger.Warn("failed to unmarshal relationship", zap.Error(err))
			continue
		}
		if rel.Confidence < query.MinScore {
			continue
		}
		rels = append(rels, rel)
	}

	sort.Slice(rels, func(i, j int) bool { return rels[i].Confidence > rels[j].Confidence })

	if query.Limit > 0 && len(rels) > query.Limit {
		rels = rels[:query.Limit]
	}
	return rels, nil
}
