// Package monitor runs the periodic observe-score-dispatch loop: it pulls
// observations from a source, evaluates them, and feeds the results to the
// alert dispatcher, optionally persisting dispatched alerts.
package monitor

import (
	"context"
	"errors"
	"time"

	"sipwatch/internal/alerting"
	"sipwatch/internal/scoring"
	"sipwatch/internal/types"
)

// DefaultInterval is the polling interval when none is configured.
const DefaultInterval = 10 * time.Minute

// AlertStore persists dispatched alert records. It is satisfied by
// db.AlertRepository.
type AlertStore interface {
	Insert(ctx context.Context, rec *types.AlertRecord) error
}

// RunnerConfig holds the dependencies of a Runner. Source, Engine, and
// Dispatcher are required; Store is optional.
type RunnerConfig struct {
	Source     types.ObservationSource
	Engine     *scoring.Engine
	Dispatcher *alerting.Dispatcher
	Store      AlertStore
	Interval   time.Duration
	Logger     types.Logger
}

// Runner drives the monitoring loop. Ticks are strictly sequential: a slow
// upstream call delays the next tick rather than overlapping it.
type Runner struct {
	source     types.ObservationSource
	engine     *scoring.Engine
	dispatcher *alerting.Dispatcher
	store      AlertStore
	interval   time.Duration
	logger     types.Logger
}

// NewRunner builds a Runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Source == nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "monitor: source is required", nil)
	}
	if cfg.Engine == nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "monitor: engine is required", nil)
	}
	if cfg.Dispatcher == nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "monitor: dispatcher is required", nil)
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}

	return &Runner{
		source:     cfg.Source,
		engine:     cfg.Engine,
		dispatcher: cfg.Dispatcher,
		store:      cfg.Store,
		interval:   interval,
		logger:     logger,
	}, nil
}

// TickResult summarizes one pass of the loop.
type TickResult struct {
	Evaluation *types.Evaluation
	Alert      *types.AlertRecord
}

// Tick performs one observe-score-dispatch pass. A nil observation from the
// source is a quiet no-op. Sink and store failures are logged and returned
// alongside the partial result; the loop keeps running on them.
func (r *Runner) Tick(ctx context.Context) (*TickResult, error) {
	obs, err := r.source.Next(ctx)
	if err != nil {
		return nil, err
	}
	if obs == nil {
		return &TickResult{}, nil
	}

	eval, err := r.engine.Evaluate(*obs)
	if err != nil {
		return nil, err
	}
	result := &TickResult{Evaluation: eval}

	rec, dispatchErr := r.dispatcher.Dispatch(ctx, eval)
	result.Alert = rec
	if rec != nil && r.store != nil {
		if storeErr := r.store.Insert(ctx, rec); storeErr != nil {
			r.logger.Error("failed to persist alert record",
				"alert_id", rec.ID, "error", storeErr)
			dispatchErr = errors.Join(dispatchErr, storeErr)
		}
	}
	return result, dispatchErr
}

// Run ticks once immediately, then on every interval until the context is
// cancelled. Upstream and delivery errors are logged, not fatal; only
// context cancellation stops the loop.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("monitor loop started", "interval", r.interval.String())

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.runTick(ctx)

		select {
		case <-ctx.Done():
			r.logger.Info("monitor loop stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Runner) runTick(ctx context.Context) {
	result, err := r.Tick(ctx)
	if err != nil {
		r.logger.Error("monitor tick failed", "error", err)
		return
	}
	if result.Evaluation == nil {
		return
	}

	fields := []any{
		"score", result.Evaluation.Composite.PurchaseScore,
		"tier", string(result.Evaluation.Composite.Tier),
		"heat_index_c", result.Evaluation.Factors.HeatIndexC,
	}
	if result.Alert != nil {
		fields = append(fields, "alert_id", result.Alert.ID, "level", string(result.Alert.Level))
	}
	r.logger.Info("observation evaluated", fields...)
}
