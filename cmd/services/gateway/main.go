package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keyscope/keyscope/internal/config"
	"github.com/keyscope/keyscope/internal/logging"
	"github.com/keyscope/keyscope/internal/queue"
	"github.com/keyscope/keyscope/internal/recorder"
	"github.com/keyscope/keyscope/internal/router"
	"github.com/keyscope/keyscope/internal/services"
	"github.com/keyscope/keyscope/internal/store"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		logger = logging.NewProduction()
		logger.Warn("Falling back to stdout logger", "output", cfg.Logging.OutputPath, "error", err)
	}
	logging.SetGlobal(logger)
	logger.Info("Gateway starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	// Execution history
	logger.Info("Opening recorder", "backend", cfg.Recorder.Backend, "compression", cfg.Recorder.Compression)
	rec, err := recorder.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open recorder", "error", err)
	}
	defer func() { _ = rec.Close() }()

	// Execution events
	logger.Info("Connecting to Queue", "type", cfg.Queue.Type, "url", cfg.Queue.URL)
	publisher, err := queue.NewPublisher(cfg.Queue)
	if err != nil {
		logger.Fatal("Failed to connect to Queue", "error", err)
	}
	defer func() { _ = publisher.Close() }()

	// Store connections are opened lazily per node
	registry := store.NewRegistry(cfg.Databases, cfg.Store, logger)
	defer registry.Close()
	for _, db := range cfg.Databases {
		logger.Info("Database registered",
			"database_id", db.ID, "address", db.Address(), "cluster", db.Cluster)
	}
	if len(cfg.Databases) == 0 {
		logger.Warn("No databases configured")
	}

	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	app := router.New(logger, router.Dependencies{
		Deployments: services.DeploymentsFromRegistry(registry),
		Recorder:    rec,
		Publisher:   publisher,
	}, *cfg)

	go func() {
		addr := cfg.ServerAddress()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
