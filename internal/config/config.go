// Package config provides the application's configuration surface: server
// and store settings, the pipeline's per-stage policies, and the keyword
// engine's tunables. Grounded on the teacher's internal/config/config.go
// (struct-tag validation via go-playground/validator, yaml-tagged nested
// structs, environment-keyed defaults).
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"ingestgraph/internal/domain/stage"
)

// Environment is the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config is the complete application configuration (spec.md §6).
type Config struct {
	Environment Environment `yaml:"environment" json:"environment" validate:"required,oneof=development staging production"`
	Server      Server      `yaml:"server" json:"server" validate:"required,dive"`
	Store       Store       `yaml:"store" json:"store" validate:"required,dive"`
	Pipeline    Pipeline    `yaml:"pipeline" json:"pipeline" validate:"required,dive"`
	Keywords    Keywords    `yaml:"keywords" json:"keywords" validate:"required,dive"`
	Logging     Logging     `yaml:"logging" json:"logging" validate:"dive"`
	Tracing     Tracing     `yaml:"tracing" json:"tracing" validate:"dive"`

	LoadedFrom []string `yaml:"-" json:"-"`
}

// Server contains the HTTP surface's listen settings.
type Server struct {
	Port            int           `yaml:"port" json:"port" validate:"required,min=1,max=65535"`
	Host            string        `yaml:"host" json:"host" validate:"required,hostname|ip"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout" validate:"required,min=1s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout" validate:"required,min=1s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" validate:"required,min=1s"`
}

// Store contains the property-graph backend's connection settings
// (spec.md §6: uri, username, password, max_connection_pool_size,
// connection_timeout, transaction retry policy).
type Store struct {
	TableName             string        `yaml:"table_name" json:"table_name" validate:"required,min=3,max=255"`
	URLIndexName          string        `yaml:"url_index_name" json:"url_index_name" validate:"required"`
	Region                string        `yaml:"region" json:"region" validate:"required"`
	MaxConnectionPoolSize int           `yaml:"max_connection_pool_size" json:"max_connection_pool_size" validate:"min=1,max=200"`
	ConnectionTimeout     time.Duration `yaml:"connection_timeout" json:"connection_timeout" validate:"required,min=1s"`
	Transaction           TxnPolicy     `yaml:"transaction" json:"transaction" validate:"required,dive"`
}

// TxnPolicy mirrors the transaction layer's retry policy (spec.md §4.1).
type TxnPolicy struct {
	MaxRetries       int           `yaml:"max_retries" json:"max_retries" validate:"min=0,max=10"`
	InitialRetryDelay time.Duration `yaml:"initial_retry_delay" json:"initial_retry_delay" validate:"required"`
	MaxRetryDelay     time.Duration `yaml:"max_retry_delay" json:"max_retry_delay" validate:"required"`
	BackoffFactor     float64       `yaml:"backoff_factor" json:"backoff_factor" validate:"min=1"`
}

// Pipeline contains the orchestrator's worker pool and per-stage settings
// (spec.md §6: max_concurrent_pages, default_timeout, event_logging_enabled,
// plus a StageConfig per stage).
type Pipeline struct {
	MaxConcurrentPages  int                         `yaml:"max_concurrent_pages" json:"max_concurrent_pages" validate:"required,min=1,max=1000"`
	DefaultTimeout      time.Duration               `yaml:"default_timeout" json:"default_timeout" validate:"required,min=1s"`
	EventLoggingEnabled bool                        `yaml:"event_logging_enabled" json:"event_logging_enabled"`
	EventBusName        string                      `yaml:"event_bus_name" json:"event_bus_name" validate:"required_with=EventLoggingEnabled"`
	Stages              map[stage.Name]StageConfig `yaml:"stages" json:"stages" validate:"required,dive"`
}

// StageConfig mirrors stage.Config with yaml/validate tags for the config
// layer; ToDomain converts it to the domain type the coordinator consumes.
type StageConfig struct {
	TimeoutSeconds       float64           `yaml:"timeout_seconds" json:"timeout_seconds" validate:"required,min=0"`
	Required             bool              `yaml:"required" json:"required"`
	ConcurrentComponents bool              `yaml:"concurrent_components" json:"concurrent_components"`
	ValidationRequired   bool              `yaml:"validation_required" json:"validation_required"`
	Retry                StageRetryConfig  `yaml:"retry" json:"retry" validate:"required,dive"`
}

// StageRetryConfig mirrors stage.RetryConfig.
type StageRetryConfig struct {
	MaxAttempts        int     `yaml:"max_attempts" json:"max_attempts" validate:"min=1,max=20"`
	DelaySeconds       float64 `yaml:"delay_seconds" json:"delay_seconds" validate:"min=0"`
	MaxDelaySeconds    float64 `yaml:"max_delay_seconds" json:"max_delay_seconds" validate:"min=0"`
	ExponentialBackoff bool    `yaml:"exponential_backoff" json:"exponential_backoff"`
}

// ToDomain converts the config-layer StageConfig to stage.Config.
func (c StageConfig) ToDomain() stage.Config {
	return stage.Config{
		TimeoutSeconds:       c.TimeoutSeconds,
		Required:             c.Required,
		ConcurrentComponents: c.ConcurrentComponents,
		ValidationRequired:   c.ValidationRequired,
		Retry: stage.RetryConfig{
			MaxAttempts:        c.Retry.MaxAttempts,
			DelaySeconds:       c.Retry.DelaySeconds,
			MaxDelaySeconds:    c.Retry.MaxDelaySeconds,
			ExponentialBackoff: c.Retry.ExponentialBackoff,
		},
	}
}

// Keywords contains the keyword engine's tunables (spec.md §6's keyword-engine
// configuration surface, SPEC_FULL.md §6 expansion).
type Keywords struct {
	MinConfidence     float64 `yaml:"min_confidence" json:"min_confidence" validate:"min=0,max=1"`
	MinKeywordLength  int     `yaml:"min_keyword_length" json:"min_keyword_length" validate:"min=1"`
	SimilarityEnabled bool    `yaml:"similarity_enabled" json:"similarity_enabled"`

	// MinContentLength is the content stage's minimum accepted raw-content
	// length in bytes (spec.md Scenario S2 content-length validation).
	MinContentLength int `yaml:"min_content_length" json:"min_content_length" validate:"min=0"`

	MinKeywordScore                 float64 `yaml:"min_keyword_score" json:"min_keyword_score" validate:"min=0,max=1"`
	MaxVariants                     int     `yaml:"max_variants" json:"max_variants" validate:"min=1"`
	RelationshipConfidenceThreshold float64 `yaml:"relationship_confidence_threshold" json:"relationship_confidence_threshold" validate:"min=0,max=1"`

	Extractor KeywordExtractor `yaml:"extractor" json:"extractor" validate:"required,dive"`

	SkipDomains         []string `yaml:"skip_domains" json:"skip_domains"`
	ComplexDOMThreshold int      `yaml:"complex_dom_threshold" json:"complex_dom_threshold" validate:"min=0"`
	MaxJSScripts        int      `yaml:"max_js_scripts" json:"max_js_scripts" validate:"min=0"`
}

// KeywordExtractor holds the thresholds of components.FrequencyExtractor
// (min_chars, min_frequency, score_threshold). MaxWords is loaded and
// validated but nothing reads it.
type KeywordExtractor struct {
	MinChars       int     `yaml:"min_chars" json:"min_chars" validate:"min=1"`
	MaxWords       int     `yaml:"max_words" json:"max_words" validate:"min=1"`
	MinFrequency   int     `yaml:"min_frequency" json:"min_frequency" validate:"min=1"`
	ScoreThreshold float64 `yaml:"score_threshold" json:"score_threshold" validate:"min=0"`
}

// Logging mirrors the teacher's zap-backed logging knobs.
type Logging struct {
	Level      string `yaml:"level" json:"level" validate:"required,oneof=debug info warn error"`
	Format     string `yaml:"format" json:"format" validate:"required,oneof=json console"`
	OutputPath string `yaml:"output_path" json:"output_path"`
}

// Tracing mirrors the teacher's otel tracing knobs.
type Tracing struct {
	Enabled     bool    `yaml:"enabled" json:"enabled"`
	ServiceName string  `yaml:"service_name" json:"service_name" validate:"required_if=Enabled true"`
	Endpoint    string  `yaml:"endpoint" json:"endpoint" validate:"required_if=Enabled true"`
	SampleRatio float64 `yaml:"sample_ratio" json:"sample_ratio" validate:"min=0,max=1"`
}

// Validate runs struct-tag validation over the whole configuration tree.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	for name, sc := range c.Pipeline.Stages {
		if sc.Retry.MaxDelaySeconds < sc.Retry.DelaySeconds {
			return fmt.Errorf("stage %q: max_delay_seconds must be >= delay_seconds", name)
		}
	}
	return nil
}
