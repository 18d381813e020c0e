// Package main is the entry point for the sipwatch monitor.
//
// The monitor polls live weather for one configured site, scores each
// reading, and dispatches cooldown-gated alerts to the configured sinks.
// Dispatched alerts are persisted to Postgres when DATABASE_URL is set, and
// the in-memory history is flushed to a compressed snapshot at shutdown
// when ARCHIVE_DIR is set.
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

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"sipwatch/internal/alerting"
	"sipwatch/internal/archive"
	"sipwatch/internal/config"
	"sipwatch/internal/db"
	"sipwatch/internal/external"
	"sipwatch/internal/monitor"
	"sipwatch/internal/scoring"
	"sipwatch/internal/types"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("sipwatch monitor starting",
		"environment", cfg.Environment,
		"location", cfg.Weather.Location,
		"poll_interval", cfg.Weather.PollInterval.String(),
	)
	libLogger := types.NewSlogLogger(logger)
	clock := types.RealClock{}

	model, err := config.LoadModel(cfg.Model.Path)
	if err != nil {
		return fmt.Errorf("loading scoring model: %w", err)
	}
	engine, err := scoring.NewEngine(model.EngineConfig(clock))
	if err != nil {
		return fmt.Errorf("building scoring engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Resolve the monitored site up front; a typo'd location should fail
	// startup, not the first tick.
	meteo := external.NewOpenMeteoClient(
		external.NewBaseClient(
			&http.Client{Timeout: cfg.Weather.RequestTimeout},
			"open-meteo",
			external.DefaultRetryPolicy(),
			"sipwatch-monitor/1.0",
		),
		libLogger,
	)
	coords, err := meteo.Geocode(ctx, cfg.Weather.Location)
	if err != nil {
		return fmt.Errorf("resolving location %q: %w", cfg.Weather.Location, err)
	}
	source := external.NewWeatherSource(meteo, external.Site{
		Name:              coords.Name,
		Latitude:          coords.Latitude,
		Longitude:         coords.Longitude,
		LocationType:      types.LocationType(cfg.Weather.LocationType),
		HasClimateControl: cfg.Weather.HasClimateControl,
	}, clock)

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

	var store monitor.AlertStore
	if url := cfg.Database.URL.Unmask(); url != "" {
		pool, err := pgxpool.New(ctx, url)
		if err != nil {
			return fmt.Errorf("creating database pool: %w", err)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("pinging database: %w", err)
		}
		store = db.NewAlertRepository(pool)
		logger.Info("alert persistence enabled")
	}

	runner, err := monitor.NewRunner(monitor.RunnerConfig{
		Source:     source,
		Engine:     engine,
		Dispatcher: dispatcher,
		Store:      store,
		Interval:   cfg.Weather.PollInterval,
		Logger:     libLogger,
	})
	if err != nil {
		return fmt.Errorf("building monitor runner: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runner.Run(gctx)
	})

	err = g.Wait()

	// Flush the alert history before exiting, whatever stopped the loop.
	if cfg.Archive.Dir != "" {
		if flushErr := flushHistory(cfg.Archive.Dir, dispatcher, clock, libLogger); flushErr != nil {
			logger.Error("failed to flush alert history", "error", flushErr)
		}
	}
	return err
}

// flushHistory writes the dispatcher's history to a snapshot file.
func flushHistory(dir string, dispatcher *alerting.Dispatcher, clock types.Clock, logger types.Logger) error {
	w, err := archive.NewWriter(dir, clock, logger)
	if err != nil {
		return err
	}
	_, err = w.Snapshot(dispatcher.History())
	return err
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
