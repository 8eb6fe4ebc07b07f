// Package di assembles the application's dependency graph: config, logger,
// the DynamoDB client/store, the keyword engine, the component registry,
// the pipeline orchestrator, the pipelinesvc worker pool, and the HTTP
// router. Grounded on the teacher's internal/di (providers.go's
// Provide*-per-dependency style, wire.go's wireinject injector) and
// infrastructure/di/cold_start.go's InitializeContainer entrypoint used by
// every cmd/ binary.
package di

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"ingestgraph/internal/components"
	"ingestgraph/internal/config"
	"ingestgraph/internal/domain/stage"
	"ingestgraph/internal/graphstore"
	ingestdynamo "ingestgraph/internal/graphstore/dynamodb"
	"ingestgraph/internal/httpapi"
	"ingestgraph/internal/keywordengine"
	"ingestgraph/internal/logging"
	"ingestgraph/internal/observability"
	"ingestgraph/internal/pagestore"
	"ingestgraph/internal/pipeline"
	"ingestgraph/internal/pipelinesvc"
)

// ProvideLogger builds the application logger (internal/logging.New).
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Environment, cfg.Logging)
}

// ProvideDynamoDBClient loads the default AWS config and constructs a
// DynamoDB client, mirroring the teacher's wire.go ProvideDynamoDBClient.
func ProvideDynamoDBClient(ctx context.Context, cfg *config.Config) (*awsdynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Store.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return awsdynamodb.NewFromConfig(awsCfg), nil
}

// ProvideEventBridgeClient constructs an EventBridge client for pipeline
// event fan-out, mirroring the teacher's ProvideEventBridgeClient.
func ProvideEventBridgeClient(ctx context.Context, cfg *config.Config) (*eventbridge.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Store.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return eventbridge.NewFromConfig(awsCfg), nil
}

// ProvideGraphStore wraps the DynamoDB client in the single-table
// GraphStore implementation (spec.md §4.2).
func ProvideGraphStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) graphstore.GraphStore {
	return ingestdynamo.NewStore(client, cfg.Store.TableName, logger)
}

// ProvidePageStore builds the read-model service atop the graph store.
func ProvidePageStore(store graphstore.GraphStore) pagestore.Service {
	return pagestore.NewService(store)
}

// ProvideKeywordEngine wires the normalizer/variant-manager/processor/
// relationship-manager chain (spec.md §4.3), threading the keyword-engine
// config surface (spec.md §6: max_variants, min_keyword_score) into the
// variant manager and processor instead of relying on hardcoded defaults.
func ProvideKeywordEngine(cfg *config.Config) (*keywordengine.KeywordProcessor, *keywordengine.RelationshipManager) {
	normalizer := keywordengine.NewNormalizer()
	variants := keywordengine.NewVariantManager(normalizer, cfg.Keywords.MaxVariants)
	validator := keywordengine.NewValidator()
	processor := keywordengine.NewKeywordProcessor(variants, validator, cfg.Keywords.MinKeywordScore, nil)
	segmenter := keywordengine.NewSimpleSentenceSegmenter()
	relationships := keywordengine.NewRelationshipManager(segmenter, nil)
	return processor, relationships
}

// ProvideComponentRegistry builds the pipeline.Registry: the concrete
// components registered per stage (spec.md §4.4). There is deliberately no
// KindBrowser component here; browser-context application is a worker-level
// post-processing step (pipelinesvc.processURL), not a pipeline stage.
// initialize has no registered components: the orchestrator itself creates
// the Page and transitions it to in_progress before the stage loop begins
// (spec.md §4.6 step 1).
func ProvideComponentRegistry(store graphstore.GraphStore, cfg *config.Config) pipeline.Registry {
	processor, relationships := ProvideKeywordEngine(cfg)
	extractors := []components.Extractor{components.NewFrequencyExtractor(
		cfg.Keywords.Extractor.MinChars,
		cfg.Keywords.Extractor.MinFrequency,
		cfg.Keywords.Extractor.ScoreThreshold,
	)}

	return pipeline.Registry{
		stage.Metadata: {components.NewMetadataComponent(nil)},
		stage.Content: {components.NewContentComponent(
			cfg.Keywords.MinContentLength,
			cfg.Keywords.SkipDomains,
			cfg.Keywords.ComplexDOMThreshold,
			cfg.Keywords.MaxJSScripts,
		)},
		stage.Analysis: {components.NewKeywordComponent(extractors, processor, relationships, cfg.Keywords.RelationshipConfidenceThreshold, nil)},
		stage.Storage:  {components.NewStorageComponent(store, nil)},
	}
}

// ProvideEventBridgePublisher wraps the EventBridge client for pipeline
// event fan-out (spec.md §4.6), or nil if event logging is disabled.
func ProvideEventBridgePublisher(client *eventbridge.Client, cfg *config.Config, logger *zap.Logger) *observability.EventBridgePublisher {
	if !cfg.Pipeline.EventLoggingEnabled {
		return nil
	}
	return observability.NewEventBridgePublisher(client, cfg.Pipeline.EventBusName, logger)
}

// ProvideOrchestrator wires the coordinator and orchestrator over the
// component registry and per-stage configuration, with logging, metrics and
// (when enabled) EventBridge handlers attached (spec.md §4.5, §4.6). The
// graph store is threaded through so the orchestrator can look a url up
// before minting a new Page (spec.md Testable Property 6, idempotent
// upsert).
func ProvideOrchestrator(registry pipeline.Registry, store graphstore.GraphStore, cfg *config.Config, logger *zap.Logger, collector *observability.Collector, publisher *observability.EventBridgePublisher) *pipeline.Orchestrator {
	configs := make(map[stage.Name]stage.Config, len(cfg.Pipeline.Stages))
	for name, sc := range cfg.Pipeline.Stages {
		configs[name] = sc.ToDomain()
	}
	coordinator := pipeline.NewCoordinator(registry, configs)

	handlers := []stage.Handler{
		observability.LoggingHandler(logger),
		observability.MetricsHandler(collector),
	}
	if publisher != nil {
		handlers = append(handlers, publisher.Handler())
	}
	return pipeline.NewOrchestrator(coordinator, configs, store, handlers...)
}

// ProvidePipelineService builds the bounded queue + worker pool
// (spec.md §4.7).
func ProvidePipelineService(cfg *config.Config, orchestrator *pipeline.Orchestrator, store graphstore.GraphStore, logger *zap.Logger) *pipelinesvc.Service {
	svcCfg := pipelinesvc.DefaultConfig()
	svcCfg.MaxConcurrent = cfg.Pipeline.MaxConcurrentPages
	return pipelinesvc.NewService(svcCfg, orchestrator, store, logger)
}

// ProvideMetricsCollector builds the prometheus collector (spec.md §9
// observability surface).
func ProvideMetricsCollector() *observability.Collector {
	return observability.NewCollector("ingestgraph")
}

// ProvideRouter builds the Submission API's HTTP handler (spec.md §6).
func ProvideRouter(svc *pipelinesvc.Service, collector *observability.Collector, logger *zap.Logger) *httpapi.Router {
	return httpapi.NewRouter(svc, collector, logger)
}
