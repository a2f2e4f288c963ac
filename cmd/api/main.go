package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/clinic-tools/cmd/mainconfig"
	"github.com/wolfman30/clinic-tools/internal/api/router"
	"github.com/wolfman30/clinic-tools/internal/appointments"
	"github.com/wolfman30/clinic-tools/internal/archive"
	appconfig "github.com/wolfman30/clinic-tools/internal/config"
	"github.com/wolfman30/clinic-tools/internal/healthrecord"
	"github.com/wolfman30/clinic-tools/internal/http/handlers"
	"github.com/wolfman30/clinic-tools/internal/mcpserver"
	"github.com/wolfman30/clinic-tools/internal/messaging"
	"github.com/wolfman30/clinic-tools/internal/observability/metrics"
	"github.com/wolfman30/clinic-tools/internal/tools"
	"github.com/wolfman30/clinic-tools/pkg/logging"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-tools server",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"version", version,
	)

	handler, err := buildHandler(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// SSE streams stay open; no write timeout.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildHandler wires the tool registry and every transport that exposes it.
func buildHandler(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (http.Handler, error) {
	metricsHandler, toolMetrics := setupToolMetrics()

	sender, reason := messaging.BuildSender(messaging.ProviderConfig{
		TwilioAccountSID: cfg.TwilioAccountSID,
		TwilioAuthToken:  cfg.TwilioAuthToken,
		TwilioFromNumber: cfg.TwilioFromNumber,
		TwilioBaseURL:    cfg.TwilioBaseURL,
		Timeout:          cfg.TwilioTimeout,
		BreakerFailures:  uint32(max(cfg.SMSBreakerFailures, 0)),
		BreakerCooldown:  cfg.SMSBreakerCooldown,
	}, logger)
	if sender == nil {
		logger.Warn("sms transport not configured; send_appointment_sms will report errors", "reason", reason)
	}
	notifier := messaging.NewNotifier(sender, reason, messaging.PhoneOptions{
		DefaultCountryCode: cfg.PhoneDefaultCountryCode,
		Permissive:         cfg.PhonePermissive,
	}, logger)

	archiver, err := setupArchive(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	svc := tools.NewService(tools.ServiceConfig{
		Recorder:  appointments.NewRecorder(cfg.AppointmentsPath, logger),
		Notifier:  notifier,
		Generator: healthrecord.NewGenerator(cfg.HealthRecordPath, logger),
		Archiver:  archiver,
		Metrics:   toolMetrics,
		Logger:    logger,
	})
	registry := tools.NewRegistry(svc.Descriptors()...)

	mcpServer, err := mcpserver.New(registry, version, logger)
	if err != nil {
		return nil, fmt.Errorf("mcp server: %w", err)
	}

	logger.Info("tools registered",
		"count", len(registry.Descriptors()),
		"appointments_path", cfg.AppointmentsPath,
		"health_record_path", cfg.HealthRecordPath,
	)

	return router.New(&router.Config{
		Logger:         logger,
		ToolsHandler:   handlers.NewToolsHandler(registry, logger),
		MCPHandler:     mcpserver.NewSSEHandler(mcpServer, router.MCPBasePath),
		MetricsHandler: metricsHandler,
		JWTSecret:      cfg.ToolsJWTSecret,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}), nil
}

func setupToolMetrics() (http.Handler, *metrics.ToolMetrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	toolMetrics := metrics.NewToolMetrics(registry)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), toolMetrics
}

// setupArchive returns nil when no bucket is configured.
func setupArchive(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (tools.Archiver, error) {
	if cfg.ArchiveBucket == "" {
		return nil, nil
	}
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	store := archive.NewStore(mainconfig.NewS3Client(awsCfg, cfg), cfg.ArchiveBucket, logger)
	logger.Info("artifact archive enabled", "bucket", cfg.ArchiveBucket)
	return store, nil
}
