package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingestgraph/internal/config"
)

func TestLoader_DefaultsAreValid(t *testing.T) {
	loader := config.NewLoader(t.TempDir(), config.Development)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Pipeline.MaxConcurrentPages)
	assert.True(t, cfg.Pipeline.EventLoggingEnabled)
	assert.Len(t, cfg.Pipeline.Stages, 5)
}

func TestLoader_EnvironmentVariablesOverrideDefaults(t *testing.T) {
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("MAX_CONCURRENT_PAGES", "25")
	defer os.Unsetenv("SERVER_PORT")
	defer os.Unsetenv("MAX_CONCURRENT_PAGES")

	loader := config.NewLoader(t.TempDir(), config.Development)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Pipeline.MaxConcurrentPages)
}

func TestLoader_BaseFileOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte("server:\n  port: 7000\n  host: 0.0.0.0\n"), 0o644))

	loader := config.NewLoader(dir, config.Development)
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestConfig_Validate_RejectsBadStageRetry(t *testing.T) {
	loader := config.NewLoader(t.TempDir(), config.Development)
	cfg, err := loader.Load()
	require.NoError(t, err)

	stages := cfg.Pipeline.Stages
	for name, sc := range stages {
		sc.Retry.MaxDelaySeconds = 0
		sc.Retry.DelaySeconds = 5
		stages[name] = sc
		break
	}

	assert.Error(t, cfg.Validate())
}
