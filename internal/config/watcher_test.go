package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ingestgraph/internal/config"
)

func TestWatcher_DisabledInProduction(t *testing.T) {
	dir := t.TempDir()
	loader := config.NewLoader(dir, config.Production)
	cfg, err := loader.Load()
	require.NoError(t, err)

	watcher, err := config.NewWatcher(cfg, loader, zap.NewNop())
	require.NoError(t, err)
	defer watcher.Close()

	assert.Same(t, cfg, watcher.Current())
}

func TestWatcher_DisabledWhenBasePathMissing(t *testing.T) {
	loader := config.NewLoader(filepath.Join(t.TempDir(), "does-not-exist"), config.Development)
	cfg, err := loader.Load()
	require.NoError(t, err)

	watcher, err := config.NewWatcher(cfg, loader, zap.NewNop())
	require.NoError(t, err)
	defer watcher.Close()
}

func TestWatcher_ReloadsOnFileWrite(t *testing.T) {
	dir := t.TempDir()
	loader := config.NewLoader(dir, config.Development)
	cfg, err := loader.Load()
	require.NoError(t, err)

	watcher, err := config.NewWatcher(cfg, loader, zap.NewNop())
	require.NoError(t, err)
	defer watcher.Close()

	reloaded := make(chan *config.Config, 1)
	watcher.OnChange(func(c *config.Config) { reloaded <- c })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte("server:\n  port: 9999\n"), 0o644))

	select {
	case c := <-reloaded:
		assert.Equal(t, 9999, c.Server.Port)
		assert.Equal(t, 9999, watcher.Current().Server.Port)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}
