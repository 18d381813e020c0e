package alerting

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"sipwatch/internal/types"
)

// DefaultCooldown is the minimum interval between two successful
// dispatches. The gate is global per dispatcher instance, not per level or
// per location: a critical alert can be suppressed by a very recent
// low-level dispatch. Run separate dispatcher instances for finer
// granularity.
const DefaultCooldown = 300 * time.Second

// DispatcherConfig holds the dependencies and optional overrides for a
// Dispatcher. Sink is required; everything else has a default.
type DispatcherConfig struct {
	Sink       types.AlertSink
	Thresholds *Thresholds
	Cooldown   time.Duration
	Clock      types.Clock
	Logger     types.Logger
	Metrics    AlertMetrics
}

// Dispatcher classifies evaluations and emits cooldown-gated alerts.
//
// Each instance owns its own cooldown clock and append-only history, so
// multiple independently-configured monitors can coexist in one process.
// All state transitions happen under a single mutex: concurrent producers
// cannot race two alerts past the cooldown gate, and history order always
// matches dispatch order.
type Dispatcher struct {
	thresholds Thresholds
	cooldown   time.Duration
	clock      types.Clock
	sink       types.AlertSink
	logger     types.Logger
	metrics    AlertMetrics

	mu          sync.Mutex
	lastAlertAt *time.Time
	history     []types.AlertRecord
}

// NewDispatcher builds a Dispatcher, validating the thresholds up front.
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	if cfg.Sink == nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "dispatcher: sink is required", nil)
	}

	thresholds := DefaultThresholds()
	if cfg.Thresholds != nil {
		thresholds = *cfg.Thresholds
	}
	if err := thresholds.Validate(); err != nil {
		return nil, types.NewAppError(types.ErrCodeValidationInvalidModel, err.Error(), err)
	}

	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.RealClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NopMetrics{}
	}

	return &Dispatcher{
		thresholds: thresholds,
		cooldown:   cooldown,
		clock:      clock,
		sink:       cfg.Sink,
		logger:     logger,
		metrics:    metrics,
	}, nil
}

// Dispatch classifies the evaluation and, when the cooldown gate allows,
// builds an alert record, appends it to history, and delivers it to the
// sink.
//
// Return values:
//   - (nil, nil): no alert (score below the low threshold, or suppressed
//     by the cooldown). Suppression is a silent no-op, not an error.
//   - (rec, nil): alert dispatched and acknowledged by the sink.
//   - (rec, err): alert recorded but sink delivery failed. Cooldown state
//     and history are updated regardless of sink acknowledgment
//     (at-most-once delivery, no retry); the error is reportable but
//     non-fatal.
func (d *Dispatcher) Dispatch(ctx context.Context, eval *types.Evaluation) (*types.AlertRecord, error) {
	level := d.thresholds.Classify(eval.Composite.PurchaseScore)
	if level == types.AlertNone {
		d.metrics.RecordSuppressed(ctx, types.SuppressReasonBelowThreshold)
		return nil, nil
	}

	rec, suppressed := d.commit(level, eval)
	if suppressed {
		d.metrics.RecordSuppressed(ctx, types.SuppressReasonCooldown)
		d.logger.Info("alert suppressed by cooldown",
			"level", string(level),
			"score", eval.Composite.PurchaseScore,
		)
		return nil, nil
	}

	d.metrics.RecordDispatch(ctx, level)
	d.logger.Info("alert dispatched",
		"alert_id", rec.ID,
		"level", string(rec.Level),
		"score", rec.Score,
		"location", rec.LocationName,
		"sink", string(d.sink.Type()),
	)

	if err := d.sink.Deliver(ctx, rec); err != nil {
		d.metrics.RecordSinkFailure(ctx, d.sink.Type())
		d.logger.Error("alert sink delivery failed",
			"alert_id", rec.ID,
			"sink", string(d.sink.Type()),
			"error", err.Error(),
		)
		return rec, types.NewAppError(types.ErrCodeSinkDeliveryFailed,
			"alert recorded but sink delivery failed", err)
	}

	return rec, nil
}

// commit performs the cooldown check, the history append, and the
// lastAlertAt update as a single critical section. It returns the new
// record, or suppressed=true when the cooldown has not elapsed.
func (d *Dispatcher) commit(level types.AlertLevel, eval *types.Evaluation) (*types.AlertRecord, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	if d.lastAlertAt != nil && now.Sub(*d.lastAlertAt) < d.cooldown {
		return nil, true
	}

	obs := eval.Observation
	rec := types.AlertRecord{
		ID:                  uuid.New().String(),
		Timestamp:           now,
		Level:               level,
		Score:               eval.Composite.PurchaseScore,
		Message:             messageFor(level, eval),
		LocationName:        obs.LocationName,
		LocationType:        obs.LocationType,
		TemperatureC:        obs.TemperatureC,
		HeatIndexC:          eval.Factors.HeatIndexC,
		HumidityPct:         obs.HumidityPct,
		HasClimateControl:   obs.HasClimateControl,
		ArrivedFromOutdoors: obs.ArrivedFromOutdoors,
		Beverage:            eval.Composite.Beverage,
	}

	d.history = append(d.history, rec)
	d.lastAlertAt = &now
	return &rec, false
}

// History returns a copy of the alert history in dispatch order.
func (d *Dispatcher) History() []types.AlertRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]types.AlertRecord, len(d.history))
	copy(out, d.history)
	return out
}

// LastAlertAt returns the time of the most recent dispatch, or nil if no
// alert has been dispatched yet.
func (d *Dispatcher) LastAlertAt() *time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lastAlertAt == nil {
		return nil
	}
	t := *d.lastAlertAt
	return &t
}
