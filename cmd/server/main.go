package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
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

	watcher, err := config.NewWatcher(cfg, config.NewLoader(os.Getenv("CONFIG_PATH"), env), container.Logger)
	if err != nil {
		log.Fatalf("failed to start config watcher: %v", err)
	}
	watcher.OnChange(func(reloaded *config.Config) {
		container.Logger.Info("configuration change observed; restart the process to apply it",
			zap.Strings("sources", reloaded.LoadedFrom))
	})
	defer watcher.Close()

	container.Pipeline.Start(ctx)

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      container.Router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		container.Logger.Info("starting submission api",
			zap.String("address", srv.Addr),
			zap.String("environment", string(cfg.Environment)))

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	container.Logger.Info("shutting down submission api")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("server shutdown error", zap.Error(err))
	}

	// Pipeline shutdown cancels the dispatcher and awaits every in-flight
	// worker before the store connection may be considered closed
	// (spec.md §5).
	container.Pipeline.Stop()

	if err := container.Close(); err != nil {
		log.Printf("failed to sync logger: %v", err)
	}
}
