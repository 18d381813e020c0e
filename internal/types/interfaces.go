package types

import (
	"context"
	"log/slog"
	"time"
)

// Validator is implemented by entities to self-validate.
type Validator interface {
	Validate() error
}

// Clock abstracts time for testability. The dispatcher's cooldown gate is
// the only place the engine reads a clock.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system time (always UTC).
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time { return time.Now().UTC() }

// AlertSink is the external collaborator that receives a fully-populated
// alert record. The dispatcher attempts delivery at most once and does not
// inspect the sink beyond success/failure.
type AlertSink interface {
	// Type returns the sink type identifier for logging and metrics.
	Type() SinkType

	// Deliver transmits the record. Failure is surfaced to the dispatcher's
	// caller as a reportable, non-fatal error; it never triggers a retry.
	Deliver(ctx context.Context, rec *AlertRecord) error
}

// ObservationSource produces observations for the monitoring loop. The
// core requires only the Observation field set, not the producing
// mechanism (sensors, a historical dataset, or live weather lookups).
type ObservationSource interface {
	// Next returns the next observation to score. It returns (nil, nil)
	// when no observation is currently available.
	Next(ctx context.Context) (*Observation, error)
}

// Logger defines the structured logging interface used by library packages.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	With(args ...any) Logger
}

// slogLogger adapts *slog.Logger to the Logger interface.
type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps an *slog.Logger in the Logger interface. A nil
// argument falls back to slog.Default().
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return &slogLogger{l: l}
}

func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) With(args ...any) Logger       { return &slogLogger{l: s.l.With(args...)} }

// NopLogger discards all log output. Useful as a default in constructors.
type NopLogger struct{}

func (NopLogger) Info(msg string, args ...any)  {}
func (NopLogger) Error(msg string, args ...any) {}
func (NopLogger) Warn(msg string, args ...any)  {}
func (n NopLogger) With(args ...any) Logger     { return n }
