package observability

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"ingestgraph/internal/domain/stage"
)

// eventBridgeBatchSize is EventBridge's PutEvents limit per call.
const eventBridgeBatchSize = 10

// EventBridgePublisher forwards pipeline events to an EventBridge bus,
// batching up to eventBridgeBatchSize entries per PutEvents call. Grounded
// on the teacher's infrastructure/messaging/eventbridge.EventBridgePublisher,
// generalized from domain events to stage.Event.
type EventBridgePublisher struct {
	client       *eventbridge.Client
	eventBusName string
	source       string
	logger       *zap.Logger

	buffer []stage.Event
}

// NewEventBridgePublisher constructs an EventBridgePublisher.
func NewEventBridgePublisher(client *eventbridge.Client, eventBusName string, logger *zap.Logger) *EventBridgePublisher {
	return &EventBridgePublisher{
		client:       client,
		eventBusName: eventBusName,
		source:       "ingestgraph.pipeline",
		logger:       logger,
	}
}

// Handler returns a stage.Handler that publishes each event to EventBridge
// individually. Handlers must never disturb the pipeline (spec.md §4.6), so
// publish failures are logged, not propagated.
func (p *EventBridgePublisher) Handler() stage.Handler {
	return func(e stage.Event) {
		if err := p.publish(context.Background(), []stage.Event{e}); err != nil {
			p.logger.Warn("failed to publish pipeline event", zap.Error(err), zap.String("type", e.Type))
		}
	}
}

// PublishBatch sends multiple events to EventBridge, chunked to the
// service's 10-entry-per-call limit.
func (p *EventBridgePublisher) PublishBatch(ctx context.Context, events []stage.Event) error {
	for i := 0; i < len(events); i += eventBridgeBatchSize {
		end := i + eventBridgeBatchSize
		if end > len(events) {
			end = len(events)
		}
		if err := p.publish(ctx, events[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (p *EventBridgePublisher) publish(ctx context.Context, events []stage.Event) error {
	entries := make([]types.PutEventsRequestEntry, 0, len(events))
	for _, e := range events {
		detail, err := json.Marshal(e)
		if err != nil {
			p.logger.Error("failed to marshal pipeline event", zap.Error(err), zap.String("type", e.Type))
			continue
		}
		entries = append(entries, types.PutEventsRequestEntry{
			EventBusName: aws.String(p.eventBusName),
			Source:       aws.String(p.source),
			DetailType:   aws.String(e.Type),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(e.Timestamp),
		})
	}
	if len(entries) == 0 {
		return nil
	}

	_, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	return err
}
