// Package main is the entry point for the NFT swap engine daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/fd1az/nftswap-engine/business/factory"
	factoryDI "github.com/fd1az/nftswap-engine/business/factory/di"
	"github.com/fd1az/nftswap-engine/business/feed"
	"github.com/fd1az/nftswap-engine/business/router"
	"github.com/fd1az/nftswap-engine/internal/apm"
	"github.com/fd1az/nftswap-engine/internal/config"
	"github.com/fd1az/nftswap-engine/internal/health"
	"github.com/fd1az/nftswap-engine/internal/logger"
	"github.com/fd1az/nftswap-engine/internal/metrics"
	"github.com/fd1az/nftswap-engine/internal/monolith"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Parse flags
	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("nftswapd %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	// Run application
	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	log := logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
	log.Info(ctx, "starting NFT swap engine",
		"version", version,
		"environment", cfg.App.Environment,
	)

	// Initialize observability if enabled
	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		// Set service name env var for OTEL
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}
		if cfg.Telemetry.OTLPHeaders != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_HEADERS", cfg.Telemetry.OTLPHeaders)
		}

		traceProvider = apm.NewTraceProvider(log,
			apm.WithProvider(apm.Provider(cfg.Telemetry.TraceProvider), log))
		log.Info(ctx, "tracing initialized", "provider", cfg.Telemetry.TraceProvider)

		// Initialize metrics with Prometheus
		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.NewPrometheusConfig()),
		)

		// Start Prometheus metrics server in background
		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	// Start health check server
	healthServer := health.NewServer(cfg.Telemetry.HealthPort, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", cfg.Telemetry.HealthPort)
	}
	defer healthServer.Stop(ctx)

	// Create monolith (application container)
	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	// Define modules in dependency order
	modules := []monolith.Module{
		&feed.Module{},    // Must be first - provides the engine event sink
		&factory.Module{}, // Depends on feed for the sink
		&router.Module{},  // Depends on factory for pair lookup
	}

	// Register all module services
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	// Start modules
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	// Engine liveness: GetFactory panics if the module never registered,
	// so reaching the message means the engine is up.
	healthServer.RegisterCheck("factory", func(ctx context.Context) (bool, string) {
		f := factoryDI.GetFactory(mono.Services())
		return true, fmt.Sprintf("%d pairs registered", len(f.Pairs()))
	})

	log.Info(ctx, "all modules started, engine ready")

	// Wait for shutdown
	<-ctx.Done()
	log.Info(ctx, "shutting down")

	return nil
}
