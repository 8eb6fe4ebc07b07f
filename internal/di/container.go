package di

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ingestgraph/internal/config"
	"ingestgraph/internal/graphstore"
	"ingestgraph/internal/httpapi"
	"ingestgraph/internal/observability"
	"ingestgraph/internal/pagestore"
	"ingestgraph/internal/pipeline"
	"ingestgraph/internal/pipelinesvc"
)

// Container holds every long-lived dependency a cmd/ entrypoint needs.
// Grounded on the teacher's di.Container (internal/di/container.go):
// one struct of already-constructed singletons, built once at startup by
// InitializeContainer and handed to main.
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Store        graphstore.GraphStore
	PageStore    pagestore.Service
	Metrics      *observability.Collector
	Orchestrator *pipeline.Orchestrator
	Pipeline     *pipelinesvc.Service
	Router       *httpapi.Router
}

// InitializeContainer builds every dependency in the order the graph
// requires, the hand-assembled equivalent of what `wire` would generate
// from wire.go's injector (this repo doesn't invoke the wire binary; the
// wiring below is the same provider set wire.go documents, called
// directly - see wire.go's header comment).
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	client, err := ProvideDynamoDBClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build dynamodb client: %w", err)
	}

	ebClient, err := ProvideEventBridgeClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build eventbridge client: %w", err)
	}

	store := ProvideGraphStore(client, cfg, logger)
	pageStore := ProvidePageStore(store)
	metrics := ProvideMetricsCollector()
	publisher := ProvideEventBridgePublisher(ebClient, cfg, logger)

	registry := ProvideComponentRegistry(store, cfg)
	orchestrator := ProvideOrchestrator(registry, store, cfg, logger, metrics, publisher)
	pipelineSvc := ProvidePipelineService(cfg, orchestrator, store, logger)
	router := ProvideRouter(pipelineSvc, metrics, logger)

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Store:        store,
		PageStore:    pageStore,
		Metrics:      metrics,
		Orchestrator: orchestrator,
		Pipeline:     pipelineSvc,
		Router:       router,
	}, nil
}

// Close releases the container's resources. The pipeline service must
// already have been stopped (Container.Pipeline.Stop()) by the caller
// before Close flushes the logger, matching spec.md §5's shutdown
// ordering ("the store connection is closed last").
func (c *Container) Close() error {
	return c.Logger.Sync()
}
