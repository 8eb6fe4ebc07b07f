package observability

import (
	"time"

	"go.uber.org/zap"

	"ingestgraph/internal/domain/stage"
)

// MetricsHandler returns a stage.Handler that feeds pipeline events into a
// Collector: stage durations from "stage-end" events, error counts from
// "stage-error", and completion counters from "complete"/"error". Handlers
// must never disturb the pipeline (spec.md §4.6), so this one only updates
// its own Collector's metrics and never returns an error to the orchestrator.
func MetricsHandler(c *Collector) stage.Handler {
	return func(e stage.Event) {
		switch e.Type {
		case "stage-end":
			if ms, ok := e.Metadata["duration_ms"].(int64); ok {
				c.ObserveStageDuration(string(e.Stage), time.Duration(ms)*time.Millisecond)
			}
		case "stage-error":
			c.StageErrors.WithLabelValues(string(e.Stage)).Inc()
		case "complete":
			c.PagesComplete.Inc()
		case "error":
			c.PagesFailed.Inc()
		}
	}
}

// LoggingHandler returns a stage.Handler that logs every pipeline event at
// a level derived from its stage.EventLevel, the way the teacher's saga
// event handlers log SagaStarted/SagaCompleted/SagaFailed.
func LoggingHandler(logger *zap.Logger) stage.Handler {
	return func(e stage.Event) {
		fields := []zap.Field{
			zap.String("type", e.Type),
			zap.String("stage", string(e.Stage)),
		}
		switch e.Level {
		case stage.LevelError:
			logger.Error(e.Message, fields...)
		case stage.LevelWarn:
			logger.Warn(e.Message, fields...)
		default:
			logger.Info(e.Message, fields...)
		}
	}
}
