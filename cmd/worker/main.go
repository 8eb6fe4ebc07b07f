// cmd/worker runs the pipeline service with no HTTP surface: a standalone
// process that drains whatever is already queued (or, once wired to a
// shared queue backend, submissions enqueued by a separate cmd/server),
// matching spec.md §1's "single-process pipeline" scope. Grounded on the
// teacher's cmd/worker/main.go: load config, build the container, start the
// background workers, wait on a signal, shut down in order.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"ingestgraph/internal/config"
	"ingestgraph/internal/di"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env := config.Environment(os.Getenv("APP_ENV"))
	if env == "" {
		env = config.Development
	}

	cfg, err := config.NewLoader(os.Getenv("CONFIG_PATH"), env).Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize container: %v", err)
	}

	container.Pipeline.Start(ctx)
	container.Logger.Info("pipeline worker started",
		zap.Int("max_concurrent_pages", cfg.Pipeline.MaxConcurrentPages),
		zap.String("environment", string(cfg.Environment)))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	container.Logger.Info("shutting down pipeline worker")
	cancel()
	container.Pipeline.Stop()

	if err := container.Close(); err != nil {
		log.Printf("failed to sync logger: %v", err)
	}
}
