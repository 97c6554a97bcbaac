// Kestrel - LLM-backed fraud risk scoring that deploys in 60 seconds.
// Copyright (c) 2025 opensource.finance
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opensource-finance/kestrel/internal/alert"
	"github.com/opensource-finance/kestrel/internal/api"
	"github.com/opensource-finance/kestrel/internal/bus"
	"github.com/opensource-finance/kestrel/internal/cache"
	"github.com/opensource-finance/kestrel/internal/domain"
	"github.com/opensource-finance/kestrel/internal/inference"
	"github.com/opensource-finance/kestrel/internal/metrics"
	"github.com/opensource-finance/kestrel/internal/scoring"
	"github.com/opensource-finance/kestrel/internal/store"
	"github.com/opensource-finance/kestrel/internal/velocity"
	"github.com/opensource-finance/kestrel/internal/worker"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("KESTREL_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("starting kestrel",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	// Load configuration
	cfg := domain.DefaultConfig()

	// Check for Pro tier via environment
	if os.Getenv("KESTREL_TIER") == "pro" {
		cfg = domain.ProConfig()
		slog.Info("running in Pro tier mode")
	}

	applyEnvOverrides(cfg)

	slog.Info("configuration loaded",
		"tier", cfg.Tier,
		"store", cfg.Store.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
		"inference_provider", cfg.Inference.Provider,
		"model_id", cfg.Inference.ModelID,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize RecordStore
	records, err := store.New(cfg.Store)
	if err != nil {
		slog.Error("failed to initialize record store", "error", err)
		os.Exit(1)
	}
	defer records.Close()
	slog.Info("record store initialized", "driver", cfg.Store.Driver)

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize Inference Client
	client, err := inference.New(cfg.Inference)
	if err != nil {
		slog.Error("failed to initialize inference client", "error", err)
		os.Exit(1)
	}
	defer client.Close()
	slog.Info("inference client initialized",
		"provider", cfg.Inference.Provider,
		"model_id", client.ModelID(),
	)

	// Wire the scoring pipeline
	recorder := metrics.NewRecorder()
	alerts := alert.NewPublisher(busImpl)
	scorer := scoring.New(client, records, alerts, recorder)
	velocitySvc := velocity.New(cacheImpl, records)
	slog.Info("scoring pipeline initialized")

	// Start async worker for the event-triggered entry point
	asyncWorker := worker.NewWorker(busImpl, scorer)
	if err := asyncWorker.Start(); err != nil {
		slog.Error("failed to start async worker", "error", err)
		os.Exit(1)
	}

	// Initialize Server
	srv := api.NewServer(cfg.Server, scorer, records, cacheImpl, busImpl, velocitySvc, recorder.Handler(), Version)

	// Start Server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("kestrel is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	// Stop async worker first so no new scorings start
	asyncWorker.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("kestrel shutdown complete")
}

// applyEnvOverrides applies KESTREL_* environment overrides on top of
// the tier defaults.
func applyEnvOverrides(cfg *domain.Config) {
	if v := os.Getenv("KESTREL_INFERENCE_PROVIDER"); v != "" {
		cfg.Inference.Provider = domain.InferenceProvider(v)
	}
	if v := os.Getenv("KESTREL_MODEL_ID"); v != "" {
		cfg.Inference.ModelID = v
	}
	if v := os.Getenv("KESTREL_INFERENCE_ENDPOINT"); v != "" {
		cfg.Inference.Endpoint = v
	}
	if v := os.Getenv("KESTREL_INFERENCE_API_KEY"); v != "" {
		cfg.Inference.APIKey = v
	}
	if v := os.Getenv("KESTREL_SQLITE_PATH"); v != "" {
		cfg.Store.SQLitePath = v
	}
	if v := os.Getenv("KESTREL_POSTGRES_HOST"); v != "" {
		cfg.Store.PostgresHost = v
	}
	if v := os.Getenv("KESTREL_POSTGRES_USER"); v != "" {
		cfg.Store.PostgresUser = v
	}
	if v := os.Getenv("KESTREL_POSTGRES_PASSWORD"); v != "" {
		cfg.Store.PostgresPassword = v
	}
	if v := os.Getenv("KESTREL_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("KESTREL_NATS_URL"); v != "" {
		cfg.EventBus.NATSUrl = v
	}
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════╗")
	fmt.Println("  ║               🪶 KESTREL                  ║")
	fmt.Println("  ║       Fraud Risk Scoring Engine           ║")
	fmt.Println("  ║     Small model, sharp eyesight.          ║")
	fmt.Println("  ╚═══════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Tier:     %s\n", cfg.Tier)
	fmt.Printf("  Model:    %s (%s)\n", cfg.Inference.ModelID, cfg.Inference.Provider)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /score             - Score a transaction")
	fmt.Println("    GET  /transactions/{id} - Get scored transaction by ID")
	fmt.Println("    GET  /stats             - Aggregate scoring statistics")
	fmt.Println("    GET  /metrics           - Prometheus metrics")
	fmt.Println("    GET  /health            - Health check")
	fmt.Println("    GET  /ready             - Readiness check")
	fmt.Println()
}
