// Package stage defines the pipeline's fixed stage sequence, the
// per-stage configuration knobs, the Component contract pluggable units
// implement, and the events the orchestrator emits as a page advances
// (spec.md §4.4–§4.6).
//
// Components are represented as a capability set behind an interface rather
// than via inheritance (spec.md §9 design note), grounded on the teacher's
// SagaStep interface (internal/domain/services/saga.go): Execute/Compensate/
// Name generalizes directly to Process/Validate/Kind.
package stage

import "time"

// Name identifies one step of the pipeline.
type Name string

const (
	Initialize Name = "initialize"
	Metadata   Name = "metadata"
	Content    Name = "content"
	Analysis   Name = "analysis"
	Storage    Name = "storage"
	Complete   Name = "complete"
	Error      Name = "error"
)

// Sequence is the fixed, ordered list of stages the orchestrator drives a
// page through (spec.md §4.4); Complete/Error are terminal and not part of
// the driven sequence.
var Sequence = []Name{Initialize, Metadata, Content, Analysis, Storage}

// ComponentKind classifies a component for observability only (spec.md §4.4).
type ComponentKind string

const (
	KindMetadata ComponentKind = "metadata"
	KindContent  ComponentKind = "content"
	KindKeyword  ComponentKind = "keyword"
	KindBrowser  ComponentKind = "browser"
	KindStorage  ComponentKind = "storage"
	KindCustom   ComponentKind = "custom"
)

// RetryConfig configures a stage's or component's retry policy.
type RetryConfig struct {
	MaxAttempts       int
	DelaySeconds      float64
	MaxDelaySeconds   float64
	ExponentialBackoff bool
}

// DefaultRetryConfig mirrors the transaction layer's defaults (spec.md §4.1)
// for components that don't override it.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, DelaySeconds: 1, MaxDelaySeconds: 8, ExponentialBackoff: true}
}

// Config is the per-stage configuration (spec.md §4.4).
type Config struct {
	TimeoutSeconds       float64
	Required             bool
	ConcurrentComponents bool
	ValidationRequired   bool
	Retry                RetryConfig
}

// Timeout returns TimeoutSeconds as a time.Duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}

// DefaultConfigs returns the spec.md §4.4 default StageConfig for each stage
// in Sequence: timeouts 5s, 30s, 60s, 120s, 30s respectively, all required,
// concurrent, and validated by default.
func DefaultConfigs() map[Name]Config {
	defaults := []float64{5, 30, 60, 120, 30}
	out := make(map[Name]Config, len(Sequence))
	for i, name := range Sequence {
		out[name] = Config{
			TimeoutSeconds:       defaults[i],
			Required:             true,
			ConcurrentComponents: true,
			ValidationRequired:   true,
			Retry:                DefaultRetryConfig(),
		}
	}
	return out
}
