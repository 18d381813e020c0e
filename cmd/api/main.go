// Package main is the entry point for the sipwatch API server.
//
// It loads configuration, builds the scoring engine and alert dispatcher
// from the optional model file, wires the configured alert sinks, and
// serves the HTTP API with graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"sipwatch/internal/alerting"
	"sipwatch/internal/api"
	"sipwatch/internal/config"
	"sipwatch/internal/external"
	"sipwatch/internal/scoring"
	"sipwatch/internal/security"
	"sipwatch/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on
// error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("sipwatch API starting",
		"environment", cfg.Environment,
		"port", cfg.Server.Port,
		"model_path", cfg.Model.Path,
	)

	model, err := config.LoadModel(cfg.Model.Path)
	if err != nil {
		return fmt.Errorf("loading scoring model: %w", err)
	}

	clock := types.RealClock{}
	engine, err := scoring.NewEngine(model.EngineConfig(clock))
	if err != nil {
		return fmt.Errorf("building scoring engine: %w", err)
	}

	libLogger := types.NewSlogLogger(logger)

	ctx := context.Background()
	sink, err := buildSink(ctx, cfg, clock, libLogger)
	if err != nil {
		return fmt.Errorf("building alert sink: %w", err)
	}

	metrics, err := buildMetrics(ctx, cfg, libLogger)
	if err != nil {
		return fmt.Errorf("building metrics: %w", err)
	}

	cooldown := cfg.Alerting.Cooldown
	if model.Cooldown() > 0 {
		cooldown = model.Cooldown()
	}
	dispatcher, err := alerting.NewDispatcher(alerting.DispatcherConfig{
		Sink:       sink,
		Thresholds: model.DispatchThresholds(),
		Cooldown:   cooldown,
		Clock:      clock,
		Logger:     libLogger,
		Metrics:    metrics,
	})
	if err != nil {
		return fmt.Errorf("building dispatcher: %w", err)
	}

	srv, err := api.NewServer(api.ServerDeps{
		Logger:     logger,
		Engine:     engine,
		Dispatcher: dispatcher,
		Clock:      clock,
	})
	if err != nil {
		return fmt.Errorf("building API server: %w", err)
	}

	return runHTTPServer(srv.Handler(), cfg, logger)
}

// runHTTPServer serves until a shutdown signal or a listener error.
func runHTTPServer(handler http.Handler, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// buildSink assembles the configured sink chain. The log sink is always
// present; SQS and webhook sinks join the fanout when configured.
func buildSink(ctx context.Context, cfg *config.Config, clock types.Clock, logger types.Logger) (types.AlertSink, error) {
	sinks := []types.AlertSink{alerting.NewLogSink(logger)}

	if cfg.AWS.AlertQueue != "" {
		sqsClient, err := newSQSClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, alerting.NewSQSSink(sqsClient, cfg.AWS.AlertQueue, logger))
	}

	if cfg.Alerting.WebhookURL != "" {
		if err := security.ValidateWebhookURL(cfg.Alerting.WebhookURL); err != nil {
			return nil, fmt.Errorf("webhook URL rejected: %w", err)
		}
		httpClient, err := security.NewSafeHTTPClient(cfg.Alerting.WebhookWait, 3)
		if err != nil {
			return nil, err
		}
		webhookClient := external.NewBaseClient(
			httpClient,
			"alert-webhook",
			external.DefaultRetryPolicy(),
			"sipwatch-api/1.0",
		)
		sinks = append(sinks, alerting.NewWebhookSink(
			webhookClient,
			cfg.Alerting.WebhookURL,
			cfg.Alerting.WebhookSecret.Unmask(),
			clock,
			logger,
		))
	}

	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return alerting.NewFanoutSink(sinks...), nil
}

// buildMetrics returns a CloudWatch publisher when enabled, NopMetrics
// otherwise.
func buildMetrics(ctx context.Context, cfg *config.Config, logger types.Logger) (alerting.AlertMetrics, error) {
	if !cfg.AWS.MetricsEnabled {
		return alerting.NopMetrics{}, nil
	}
	cwClient, err := newCloudWatchClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return alerting.NewCloudWatchMetrics(cwClient, logger), nil
}

// newLogger creates a structured slog.Logger configured for the given level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// loadAWSConfig loads the SDK config honoring the optional LocalStack
// endpoint override.
func loadAWSConfig(ctx context.Context, cfg *config.Config) (awsCfgResult, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWS.Region),
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return awsCfgResult{}, fmt.Errorf("loading AWS SDK config: %w", err)
	}
	return awsCfgResult{cfg: awsCfg, endpoint: cfg.AWS.EndpointURL}, nil
}
