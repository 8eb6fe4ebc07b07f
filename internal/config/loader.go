package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ingestgraph/internal/domain/stage"
)

// Loader loads configuration from layered sources: defaults, a base.yaml
// file, an environment-specific overlay, and environment variables, in
// ascending priority order. Grounded on the teacher's internal/config.Loader
// (internal/config/loader.go), trimmed to this repo's single yaml format.
type Loader struct {
	basePath    string
	environment Environment
	sources     []string
}

// NewLoader constructs a Loader rooted at basePath (default "config").
func NewLoader(basePath string, env Environment) *Loader {
	if basePath == "" {
		basePath = "config"
	}
	return &Loader{basePath: basePath, environment: env}
}

// Load builds a Config from defaults, overlaid by base.yaml, an
// environment-specific file, and environment variables.
func (l *Loader) Load() (*Config, error) {
	cfg := l.defaultConfig()
	l.sources = append(l.sources, "defaults")

	if err := l.loadFile("base.yaml", cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load base config: %w", err)
	}

	envFile := strings.ToLower(string(l.environment)) + ".yaml"
	if err := l.loadFile(envFile, cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	l.loadEnvironmentVariables(cfg)
	l.sources = append(l.sources, "environment")
	cfg.LoadedFrom = l.sources

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) loadFile(name string, cfg *Config) error {
	path := filepath.Join(l.basePath, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	l.sources = append(l.sources, path)
	return nil
}

func (l *Loader) loadEnvironmentVariables(cfg *Config) {
	if val := os.Getenv("SERVER_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = port
		}
	}
	if val := os.Getenv("SERVER_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("STORE_TABLE_NAME"); val != "" {
		cfg.Store.TableName = val
	}
	if val := os.Getenv("AWS_REGION"); val != "" {
		cfg.Store.Region = val
	}
	if val := os.Getenv("MAX_CONCURRENT_PAGES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Pipeline.MaxConcurrentPages = n
		}
	}
	if val := os.Getenv("EVENT_LOGGING_ENABLED"); val != "" {
		cfg.Pipeline.EventLoggingEnabled = val == "true" || val == "1"
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
}

// defaultConfig returns a configuration with spec.md §4.4/§6's documented
// defaults, so the service runs without any config file present.
func (l *Loader) defaultConfig() *Config {
	stages := make(map[stage.Name]StageConfig, len(stage.Sequence))
	for name, sc := range stage.DefaultConfigs() {
		stages[name] = StageConfig{
			TimeoutSeconds:       sc.TimeoutSeconds,
			Required:             sc.Required,
			ConcurrentComponents: sc.ConcurrentComponents,
			ValidationRequired:   sc.ValidationRequired,
			Retry: StageRetryConfig{
				MaxAttempts:        sc.Retry.MaxAttempts,
				DelaySeconds:       sc.Retry.DelaySeconds,
				MaxDelaySeconds:    sc.Retry.MaxDelaySeconds,
				ExponentialBackoff: sc.Retry.ExponentialBackoff,
			},
		}
	}

	return &Config{
		Environment: l.environment,
		Server: Server{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: Store{
			TableName:             "ingestgraph-" + strings.ToLower(string(l.environment)),
			URLIndexName:          "url-index",
			Region:                "us-east-1",
			MaxConnectionPoolSize: 10,
			ConnectionTimeout:     10 * time.Second,
			Transaction: TxnPolicy{
				MaxRetries:        3,
				InitialRetryDelay: time.Second,
				MaxRetryDelay:     8 * time.Second,
				BackoffFactor:     2,
			},
		},
		Pipeline: Pipeline{
			MaxConcurrentPages:  10,
			DefaultTimeout:      60 * time.Second,
			EventLoggingEnabled: true,
			EventBusName:        "ingestgraph-pipeline-events",
			Stages:              stages,
		},
		Keywords: Keywords{
			MinConfidence:                   0.5,
			MinKeywordLength:                3,
			SimilarityEnabled:               false,
			MinContentLength:                0,
			MinKeywordScore:                 0.3,
			MaxVariants:                     5,
			RelationshipConfidenceThreshold: 0.5,
			Extractor: KeywordExtractor{
				MinChars:       3,
				MaxWords:       5,
				MinFrequency:   1,
				ScoreThreshold: 0,
			},
			SkipDomains:         nil,
			ComplexDOMThreshold: 500,
			MaxJSScripts:        20,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
		Tracing: Tracing{
			Enabled:     false,
			SampleRatio: 0.1,
		},
	}
}
