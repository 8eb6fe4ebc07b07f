//go:build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"ingestgraph/internal/config"
)

// InitializeContainerWire is the wire injector this package's provider set
// compiles to; `wire` (run offline, never by this exercise's toolchain) would
// generate a wire_gen.go equivalent to container.go's hand-assembled
// InitializeContainer. Grounded on the teacher's internal/di/wire.go:
// the provider functions here are the exact ones container.go calls in
// dependency order, declared again as a wire.NewSet so the two stay in
// sync by inspection.
func InitializeContainerWire(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(
		ProvideLogger,
		ProvideDynamoDBClient,
		ProvideEventBridgeClient,
		ProvideEventBridgePublisher,
		ProvideGraphStore,
		ProvidePageStore,
		ProvideMetricsCollector,
		ProvideComponentRegistry,
		ProvideOrchestrator,
		ProvidePipelineService,
		ProvideRouter,
		wire.Struct(new(Container), "*"),
	)
	return nil, nil
}
