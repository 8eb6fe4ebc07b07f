// Package logging constructs the application's zap.Logger. Grounded on the
// teacher's internal/di/providers.go provideLogger, which selects between
// zap.NewProduction/zap.NewDevelopment by environment; callers always
// receive a constructed *zap.Logger rather than reaching for a package
// global, matching the teacher's constructor-injection pattern throughout
// internal/di.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ingestgraph/internal/config"
)

// New builds a *zap.Logger appropriate for the given environment and
// format/level overrides from Config.Logging.
func New(env config.Environment, cfg config.Logging) (*zap.Logger, error) {
	var zapCfg zap.Config
	switch env {
	case config.Production, config.Staging:
		zapCfg = zap.NewProductionConfig()
	default:
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.Format == "console" {
		zapCfg.Encoding = "console"
	} else if cfg.Format == "json" {
		zapCfg.Encoding = "json"
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	if cfg.OutputPath != "" {
		zapCfg.OutputPaths = []string{cfg.OutputPath}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
