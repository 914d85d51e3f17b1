// MediLint - Medical advertising compliance checks in seconds.
// Copyright (c) 2025 medilint
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/medilint/medilint/internal/api"
	"github.com/medilint/medilint/internal/bus"
	"github.com/medilint/medilint/internal/cache"
	"github.com/medilint/medilint/internal/domain"
	"github.com/medilint/medilint/internal/enrich"
	"github.com/medilint/medilint/internal/report"
	"github.com/medilint/medilint/internal/repository"
	"github.com/medilint/medilint/internal/rules"
	"github.com/medilint/medilint/internal/usage"
	"github.com/medilint/medilint/internal/worker"
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
	if os.Getenv("MEDILINT_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("starting medilint",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	// Load configuration
	cfg := domain.DefaultConfig()

	// Check for Pro tier via environment
	if os.Getenv("MEDILINT_TIER") == "pro" {
		cfg = domain.ProConfig()
		slog.Info("running in Pro tier mode")
	}

	// Optional enrichment credentials
	if url := os.Getenv("MEDILINT_ENRICH_URL"); url != "" {
		cfg.Enrichment.Endpoint = url
	}
	if key := os.Getenv("MEDILINT_ENRICH_KEY"); key != "" {
		cfg.Enrichment.APIKey = key
	}

	slog.Info("configuration loaded",
		"tier", cfg.Tier,
		"repository", cfg.Repository.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
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

	// Initialize Repository
	repo, err := repository.New(cfg.Repository)
	if err != nil {
		slog.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("repository initialized", "driver", cfg.Repository.Driver)

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

	// Seed the builtin rule set on first start so rules are editable
	// through the API from day one.
	if err := rules.SeedBuiltins(ctx, repo, api.GlobalTenantID); err != nil {
		slog.Warn("failed to seed builtin rules", "error", err)
	}

	// Initialize Rule Engine from the database; missing categories fall
	// back to the builtin rules and keywords.
	engine, err := rules.NewEngine()
	if err != nil {
		slog.Error("failed to initialize rule engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	ruleSet, keywords := rules.LoadFromRepository(ctx, repo, api.GlobalTenantID)
	if err := engine.LoadRules(ruleSet, keywords); err != nil {
		slog.Error("failed to load rules", "error", err)
		os.Exit(1)
	}
	slog.Info("rule engine initialized", "rules_count", engine.RulesCount())

	// Initialize the optional enrichment client
	enricher := enrich.New(cfg.Enrichment)
	slog.Info("enrichment initialized", "enabled", enricher.Enabled())

	// Initialize Report Processor
	processor := report.NewProcessor(enricher, cfg.Enrichment.MaxSuggestions)
	slog.Info("report processor initialized", "max_suggestions", cfg.Enrichment.MaxSuggestions)

	// Initialize Usage Tracking
	usageSvc := usage.NewService(repo, cacheImpl)
	slog.Info("usage service initialized")

	// Initialize async Worker (Pro tier)
	var asyncWorker *worker.Worker
	if cfg.Tier == domain.TierPro || os.Getenv("MEDILINT_ASYNC_WORKER") == "true" {
		asyncWorker = worker.NewWorker(busImpl, repo, engine, processor)

		var tenantIDs []string
		if envTenants := os.Getenv("MEDILINT_TENANTS"); envTenants != "" {
			for _, id := range strings.Split(envTenants, ",") {
				if id = strings.TrimSpace(id); id != "" {
					tenantIDs = append(tenantIDs, id)
				}
			}
		}

		workerCfg := worker.Config{
			TenantIDs:   tenantIDs,
			WorkerCount: 5,
		}

		if err := asyncWorker.Start(workerCfg); err != nil {
			slog.Error("failed to start async worker", "error", err)
		} else {
			slog.Info("async worker started", "tenant_count", len(tenantIDs))
		}
	}

	// Initialize Server
	srv := api.NewServer(cfg.Server, repo, cacheImpl, busImpl, engine, processor, usageSvc, Version)

	// Start Server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("medilint is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	// Stop async worker first
	if asyncWorker != nil {
		if err := asyncWorker.Stop(); err != nil {
			slog.Error("failed to stop async worker", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("medilint shutdown complete")
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  ==============================================")
	fmt.Println("                 MEDILINT")
	fmt.Println("     Medical Advertising Compliance Engine")
	fmt.Println("      Every claim, checked before it runs.")
	fmt.Println("  ==============================================")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Tier:     %s\n", cfg.Tier)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /analyze            - Analyze advertisement text")
	fmt.Println("    GET  /analyses/{id}      - Get analysis by ID")
	fmt.Println("    GET  /rules              - List all rules")
	fmt.Println("    GET  /rules/{category}   - Get rule by category")
	fmt.Println("    POST /rules              - Create a new rule")
	fmt.Println("    POST /rules/reload       - Hot-reload rules from database")
	fmt.Println("    GET  /stats              - Per-tenant usage statistics")
	fmt.Println("    GET  /health             - Health check")
	fmt.Println("    GET  /ready              - Readiness check")
	fmt.Println()
}
