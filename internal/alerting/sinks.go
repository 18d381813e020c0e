package alerting

import (
	"context"
	"errors"

	"sipwatch/internal/types"
)

// LogSink writes dispatched alerts to the structured log. It is the
// default sink for local runs and never fails.
type LogSink struct {
	logger types.Logger
}

// NewLogSink creates a LogSink writing to the given logger.
func NewLogSink(logger types.Logger) *LogSink {
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &LogSink{logger: logger}
}

// Type returns the sink type identifier.
func (s *LogSink) Type() types.SinkType { return types.SinkLog }

// Deliver logs the alert record.
func (s *LogSink) Deliver(ctx context.Context, rec *types.AlertRecord) error {
	s.logger.Warn("beverage demand alert",
		"alert_id", rec.ID,
		"level", string(rec.Level),
		"score", rec.Score,
		"message", rec.Message,
		"location", rec.LocationName,
		"location_type", string(rec.LocationType),
		"temperature_c", rec.TemperatureC,
		"heat_index_c", rec.HeatIndexC,
		"humidity_pct", rec.HumidityPct,
		"beverage", string(rec.Beverage),
	)
	return nil
}

// FanoutSink delivers a record to every configured sink. Delivery is
// attempted on all sinks even when an earlier one fails; the joined error
// is returned so the dispatcher reports partial failures.
type FanoutSink struct {
	sinks []types.AlertSink
}

// NewFanoutSink creates a FanoutSink over the given sinks.
func NewFanoutSink(sinks ...types.AlertSink) *FanoutSink {
	return &FanoutSink{sinks: sinks}
}

// Type returns the sink type identifier of the fanout itself.
func (s *FanoutSink) Type() types.SinkType { return "fanout" }

// Deliver attempts delivery on every sink and joins any errors.
func (s *FanoutSink) Deliver(ctx context.Context, rec *types.AlertRecord) error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Deliver(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
