package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"ingestgraph/internal/domain/stage"
)

// TracerProvider wraps the otel tracer provider this service registers
// globally. Grounded on the teacher's internal/infrastructure/tracing.
// TracerProvider (InitTracing), trimmed to an OTLP/gRPC exporter and a
// single always-on sampler ratio knob.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// InitTracing builds and globally registers an otel TracerProvider exporting
// via OTLP/gRPC to endpoint.
func InitTracing(serviceName, environment, endpoint string, sampleRatio float64) (*TracerProvider, error) {
	exporter, err := otlptrace.New(
		context.Background(),
		otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithInsecure(),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			attribute.String("service.name", serviceName),
			attribute.String("deployment.environment", environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(sampleRatio)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return &TracerProvider{provider: tp, tracer: tp.Tracer(serviceName)}, nil
}

// Shutdown flushes and stops the tracer provider.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	return tp.provider.Shutdown(ctx)
}

// StartStageSpan starts a span for one component's execution within a
// stage, tagging it with the stage name and component kind so traces line
// up with the component_timings bookkeeping the coordinator already
// records (spec.md §4.5).
func (tp *TracerProvider) StartStageSpan(ctx context.Context, s stage.Name, component stage.ComponentKind) (context.Context, trace.Span) {
	return tp.tracer.Start(ctx, string(s)+"."+string(component),
		trace.WithAttributes(
			attribute.String("pipeline.stage", string(s)),
			attribute.String("pipeline.component", string(component)),
		),
	)
}
