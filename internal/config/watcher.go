package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

var osStat = os.Stat

// Watcher watches the config directory and, on change, reloads the whole
// Config and passes it to registered callbacks. Grounded on the teacher's
// internal/config.ConfigWatcher (internal/config/watcher.go). It applies
// the reloaded values nowhere itself; that is left to the callbacks.
type Watcher struct {
	mu        sync.RWMutex
	current   *Config
	loader    *Loader
	callbacks []func(*Config)
	logger    *zap.Logger
	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
}

// NewWatcher constructs a Watcher and starts watching basePath for changes.
// Only enabled outside Production, matching the teacher's
// development-only hot-reload gate.
func NewWatcher(initial *Config, loader *Loader, logger *zap.Logger) (*Watcher, error) {
	w := &Watcher{current: initial, loader: loader, logger: logger, stopCh: make(chan struct{})}

	if initial.Environment == Production {
		logger.Info("config hot reload disabled", zap.String("environment", string(initial.Environment)))
		return w, nil
	}

	if _, err := osStat(loader.basePath); err != nil {
		logger.Info("config hot reload disabled: base path not found", zap.String("path", loader.basePath))
		return w, nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(loader.basePath); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", loader.basePath, err)
	}
	w.fsWatcher = fsw
	go w.watchLoop()
	logger.Info("config hot reload enabled", zap.String("path", loader.basePath))
	return w, nil
}

// OnChange registers a callback invoked with the newly reloaded Config.
func (w *Watcher) OnChange(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Current returns the most recently loaded Config.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := w.loader.Load()
	if err != nil {
		w.logger.Warn("config reload failed, keeping previous configuration", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = cfg
	callbacks := append([]func(*Config){}, w.callbacks...)
	w.mu.Unlock()

	w.logger.Info("configuration reloaded", zap.Strings("sources", cfg.LoadedFrom))
	for _, cb := range callbacks {
		cb(cfg)
	}
}

// Close stops the watcher's goroutine and releases the underlying
// filesystem watch.
func (w *Watcher) Close() error {
	if w.fsWatcher == nil {
		return nil
	}
	close(w.stopCh)
	return w.fsWatcher.Close()
}
