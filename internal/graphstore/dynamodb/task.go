package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"ingestgraph/internal/domain/shared"
	"ingestgraph/internal/domain/task"
)

// taskURLRecord is the flat shape of one task.URLStatus entry.
type taskURLRecord struct {
	URL      string   `dynamodbav:"url"`
	Status   string   `dynamodbav:"status"`
	Progress float64  `dynamodbav:"progress"`
	Message  string   `dynamodbav:"message,omitempty"`
	Keywords []string `dynamodbav:"keywords,omitempty"`
	Sources  []string `dynamodbav:"sources,omitempty"`
}

// taskRecord is the flat, primitives-only shape spec.md §4.7 persists a Task
// as. Per-URL PART_OF entries are embedded as a list rather than modeled as
// separate graph nodes (see DESIGN.md).
type taskRecord struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`

	ID        string          `dynamodbav:"id"`
	URLs      []taskURLRecord `dynamodbav:"urls"`
	Status    string          `dynamodbav:"status"`
	Progress  float64         `dynamodbav:"progress"`
	Message   string          `dynamodbav:"message,omitempty"`
	CreatedAt time.Time       `dynamodbav:"created_at"`
	StartedAt *string         `dynamodbav:"started_at,omitempty"`
	Completed *string         `dynamodbav:"completed_at,omitempty"`
}

func toTaskRecord(t *task.Task) (map[string]types.AttributeValue, error) {
	urls := make([]taskURLRecord, 0, len(t.URLs))
	for _, u := range t.URLs {
		rec := taskURLRecord{URL: u.URL, Status: string(u.Status), Progress: u.Progress, Message: u.Message}
		if u.Result != nil {
			rec.Keywords = u.Result.Keywords
			rec.Sources = u.Result.Sources
		}
		urls = append(urls, rec)
	}

	rec := taskRecord{
		PK:         BuildTaskPK(t.ID.String()),
		SK:         BuildMetaSK,
		EntityType: entityTypeTask,
		ID:         t.ID.String(),
		URLs:       urls,
		Status:     string(t.Status),
		Progress:   t.Progress,
		Message:    t.Message,
		CreatedAt:  t.CreatedAt,
		StartedAt:  formatOptionalTime(t.StartedAt),
		Completed:  formatOptionalTime(t.CompletedAt),
	}
	return attributevalue.MarshalMap(rec)
}

func fromTaskRecord(item map[string]types.AttributeValue) (*task.Task, error) {
	var rec taskRecord
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, err
	}

	id, err := shared.ParseTaskID(rec.ID)
	if err != nil {
		return nil, err
	}

	urls := make([]task.URLStatus, 0, len(rec.URLs))
	for _, u := range rec.URLs {
		entry := task.URLStatus{URL: u.URL, Status: task.Status(u.Status), Progress: u.Progress, Message: u.Message}
		if len(u.Keywords) > 0 || len(u.Sources) > 0 {
			entry.Result = &task.Result{Keywords: u.Keywords, Sources: u.Sources}
		}
		urls = append(urls, entry)
	}

	return task.ReconstructTask(
		id, urls, task.Status(rec.Status), rec.Progress, rec.CreatedAt,
		parseOptionalTime(rec.StartedAt), parseOptionalTime(rec.Completed), rec.Message,
	), nil
}

// CreateOrUpdateTask upserts a task's lifecycle record.
func (s *Store) CreateOrUpdateTask(ctx context.Context, t *task.Task) error {
	item, err := toTaskRecord(t)
	if err != nil {
		return s.wrapStoreError("CreateOrUpdateTask", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return s.wrapStoreError("CreateOrUpdateTask", err)
	}
	return nil
}

// GetTaskByID fetches a task by id, translating a missing item into
// shared.ErrTaskNotFound (spec.md §4.7 get_status slow path).
func (s *Store) GetTaskByID(ctx context.Context, id shared.TaskID) (*task.Task, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: BuildTaskPK(id.String())},
			"SK": &types.AttributeValueMemberS{Value: BuildMetaSK},
		},
	})
	if err != nil {
		return nil, s.wrapStoreError("GetTaskByID", err)
	}
	if out.Item == nil {
		return nil, shared.ErrTaskNotFound
	}
	return fromTaskRecord(out.Item)
}
