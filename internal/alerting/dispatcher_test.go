package alerting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sipwatch/internal/types"
)

// mockClock is a manually-advanced clock for cooldown tests.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock(start time.Time) *mockClock {
	return &mockClock{now: start}
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// captureSink records delivered alerts and optionally fails every delivery.
type captureSink struct {
	mu        sync.Mutex
	delivered []*types.AlertRecord
	failWith  error
}

func (s *captureSink) Type() types.SinkType { return "capture" }

func (s *captureSink) Deliver(ctx context.Context, rec *types.AlertRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered = append(s.delivered, rec)
	return s.failWith
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delivered)
}

func evalWithScore(score float64) *types.Evaluation {
	return &types.Evaluation{
		Observation: types.Observation{
			TemperatureC: 32,
			HumidityPct:  70,
			Weather:      types.WeatherClear,
			Hour:         12,
			LocationType: types.LocationStation,
			LocationName: "shinagawa-east",
		},
		Factors: types.FactorScores{
			Thermal:    1.0,
			Weather:    1.0,
			Time:       0.9,
			Location:   0.9,
			HeatIndexC: 40.4,
		},
		Composite: types.CompositeResult{
			PurchaseScore: score,
			Tier:          types.TierStrong,
			Beverage:      types.BeverageCold,
		},
	}
}

func newTestDispatcher(t *testing.T, clock types.Clock, sink types.AlertSink) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(DispatcherConfig{
		Sink:  sink,
		Clock: clock,
	})
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	return d
}

func TestNewDispatcher_Validation(t *testing.T) {
	if _, err := NewDispatcher(DispatcherConfig{}); err == nil {
		t.Error("NewDispatcher should reject a nil sink")
	}

	bad := Thresholds{Low: 0.9, Medium: 0.5, High: 0.7, Critical: 0.85}
	if _, err := NewDispatcher(DispatcherConfig{Sink: &captureSink{}, Thresholds: &bad}); err == nil {
		t.Error("NewDispatcher should reject unordered thresholds")
	}
}

func TestDispatch_BelowThresholdIsSilent(t *testing.T) {
	sink := &captureSink{}
	d := newTestDispatcher(t, newMockClock(time.Now()), sink)

	rec, err := d.Dispatch(context.Background(), evalWithScore(0.39))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if rec != nil {
		t.Errorf("below-threshold score should yield no record, got %+v", rec)
	}
	if got := len(d.History()); got != 0 {
		t.Errorf("history length = %d, want 0", got)
	}
	if sink.count() != 0 {
		t.Errorf("sink received %d deliveries, want 0", sink.count())
	}
	if d.LastAlertAt() != nil {
		t.Error("below-threshold dispatch must not touch the cooldown clock")
	}
}

func TestDispatch_RecordFields(t *testing.T) {
	sink := &captureSink{}
	start := time.Date(2025, 7, 18, 12, 0, 0, 0, time.UTC)
	d := newTestDispatcher(t, newMockClock(start), sink)

	rec, err := d.Dispatch(context.Background(), evalWithScore(0.94))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a dispatched record")
	}
	if rec.ID == "" {
		t.Error("record ID should be populated")
	}
	if rec.Level != types.AlertCritical {
		t.Errorf("level = %s, want critical", rec.Level)
	}
	if rec.Score != 0.94 {
		t.Errorf("score = %v, want 0.94", rec.Score)
	}
	if !rec.Timestamp.Equal(start) {
		t.Errorf("timestamp = %v, want %v", rec.Timestamp, start)
	}
	if rec.LocationName != "shinagawa-east" {
		t.Errorf("location name = %q", rec.LocationName)
	}
	if rec.HeatIndexC != 40.4 {
		t.Errorf("heat index = %v, want 40.4", rec.HeatIndexC)
	}
	if rec.Beverage != types.BeverageCold {
		t.Errorf("beverage = %s, want cold", rec.Beverage)
	}
	if rec.Message == "" {
		t.Error("message should be populated")
	}
	if sink.count() != 1 {
		t.Errorf("sink received %d deliveries, want 1", sink.count())
	}
}

func TestDispatch_CooldownSuppressesSecondAlert(t *testing.T) {
	sink := &captureSink{}
	clock := newMockClock(time.Date(2025, 7, 18, 12, 0, 0, 0, time.UTC))
	d := newTestDispatcher(t, clock, sink)

	first, err := d.Dispatch(context.Background(), evalWithScore(0.75))
	if err != nil || first == nil {
		t.Fatalf("first dispatch: rec=%v err=%v", first, err)
	}

	clock.Advance(10 * time.Second)

	second, err := d.Dispatch(context.Background(), evalWithScore(0.75))
	if err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if second != nil {
		t.Errorf("dispatch 10s after an alert should be suppressed, got %+v", second)
	}
	if got := len(d.History()); got != 1 {
		t.Errorf("history length = %d, want exactly 1", got)
	}
	if sink.count() != 1 {
		t.Errorf("sink received %d deliveries, want 1", sink.count())
	}
}

func TestDispatch_CooldownElapsedAllowsSecondAlert(t *testing.T) {
	sink := &captureSink{}
	clock := newMockClock(time.Date(2025, 7, 18, 12, 0, 0, 0, time.UTC))
	d := newTestDispatcher(t, clock, sink)

	if rec, err := d.Dispatch(context.Background(), evalWithScore(0.75)); err != nil || rec == nil {
		t.Fatalf("first dispatch: rec=%v err=%v", rec, err)
	}

	clock.Advance(301 * time.Second)

	rec, err := d.Dispatch(context.Background(), evalWithScore(0.75))
	if err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if rec == nil {
		t.Fatal("dispatch 301s after an alert should not be suppressed")
	}
	if got := len(d.History()); got != 2 {
		t.Errorf("history length = %d, want 2", got)
	}
}

func TestDispatch_ExactCooldownBoundary(t *testing.T) {
	// Elapsed == cooldown is not "within" the window: the alert goes out.
	clock := newMockClock(time.Date(2025, 7, 18, 12, 0, 0, 0, time.UTC))
	d := newTestDispatcher(t, clock, &captureSink{})

	if _, err := d.Dispatch(context.Background(), evalWithScore(0.75)); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	clock.Advance(DefaultCooldown)

	rec, err := d.Dispatch(context.Background(), evalWithScore(0.75))
	if err != nil {
		t.Fatalf("boundary dispatch: %v", err)
	}
	if rec == nil {
		t.Error("dispatch at exactly the cooldown interval should be allowed")
	}
}

func TestDispatch_CooldownIsGlobalAcrossLevels(t *testing.T) {
	// A critical alert arriving shortly after a low alert is still
	// suppressed; the gate does not discriminate by level.
	clock := newMockClock(time.Date(2025, 7, 18, 12, 0, 0, 0, time.UTC))
	d := newTestDispatcher(t, clock, &captureSink{})

	if rec, _ := d.Dispatch(context.Background(), evalWithScore(0.45)); rec == nil {
		t.Fatal("low alert should dispatch")
	}
	clock.Advance(30 * time.Second)

	rec, err := d.Dispatch(context.Background(), evalWithScore(0.95))
	if err != nil {
		t.Fatalf("critical dispatch: %v", err)
	}
	if rec != nil {
		t.Error("critical alert inside the cooldown window should be suppressed")
	}
}

func TestDispatch_SuppressionDoesNotExtendCooldown(t *testing.T) {
	clock := newMockClock(time.Date(2025, 7, 18, 12, 0, 0, 0, time.UTC))
	d := newTestDispatcher(t, clock, &captureSink{})

	if _, err := d.Dispatch(context.Background(), evalWithScore(0.75)); err != nil {
		t.Fatal(err)
	}
	last := d.LastAlertAt()

	clock.Advance(100 * time.Second)
	if rec, _ := d.Dispatch(context.Background(), evalWithScore(0.75)); rec != nil {
		t.Fatal("should be suppressed at +100s")
	}
	if got := d.LastAlertAt(); !got.Equal(*last) {
		t.Errorf("suppressed dispatch moved lastAlertAt from %v to %v", last, got)
	}

	// The window still keys off the first alert, so +300s total succeeds.
	clock.Advance(200 * time.Second)
	if rec, _ := d.Dispatch(context.Background(), evalWithScore(0.75)); rec == nil {
		t.Error("dispatch 300s after the original alert should be allowed")
	}
}

func TestDispatch_SinkFailureStillRecordsAlert(t *testing.T) {
	sinkErr := errors.New("connection refused")
	sink := &captureSink{failWith: sinkErr}
	clock := newMockClock(time.Date(2025, 7, 18, 12, 0, 0, 0, time.UTC))
	d := newTestDispatcher(t, clock, sink)

	rec, err := d.Dispatch(context.Background(), evalWithScore(0.75))
	if rec == nil {
		t.Fatal("record should be returned even when the sink fails")
	}
	if err == nil {
		t.Fatal("sink failure should surface as an error")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error should be an AppError, got %T", err)
	}
	if appErr.Code != types.ErrCodeSinkDeliveryFailed {
		t.Errorf("error code = %s, want %s", appErr.Code, types.ErrCodeSinkDeliveryFailed)
	}
	if !errors.Is(err, sinkErr) {
		t.Error("underlying sink error should be wrapped")
	}

	// At-most-once: the record stays in history and the cooldown holds.
	if got := len(d.History()); got != 1 {
		t.Errorf("history length = %d, want 1", got)
	}
	clock.Advance(10 * time.Second)
	if rec, _ := d.Dispatch(context.Background(), evalWithScore(0.75)); rec != nil {
		t.Error("cooldown should apply even after a failed delivery")
	}
}

func TestDispatch_HistoryIsACopy(t *testing.T) {
	clock := newMockClock(time.Date(2025, 7, 18, 12, 0, 0, 0, time.UTC))
	d := newTestDispatcher(t, clock, &captureSink{})

	if _, err := d.Dispatch(context.Background(), evalWithScore(0.75)); err != nil {
		t.Fatal(err)
	}

	hist := d.History()
	hist[0].Message = "tampered"

	if got := d.History()[0].Message; got == "tampered" {
		t.Error("mutating the returned slice must not affect dispatcher state")
	}
}

func TestDispatch_ConcurrentProducersSingleAlert(t *testing.T) {
	// With a fixed clock, concurrent dispatches race for one cooldown slot;
	// exactly one may win.
	clock := newMockClock(time.Date(2025, 7, 18, 12, 0, 0, 0, time.UTC))
	sink := &captureSink{}
	d := newTestDispatcher(t, clock, sink)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Dispatch(context.Background(), evalWithScore(0.9)) //nolint:errcheck
		}()
	}
	wg.Wait()

	if got := len(d.History()); got != 1 {
		t.Errorf("history length = %d, want exactly 1", got)
	}
	if sink.count() != 1 {
		t.Errorf("sink received %d deliveries, want 1", sink.count())
	}
}

func TestDispatch_CustomCooldown(t *testing.T) {
	clock := newMockClock(time.Date(2025, 7, 18, 12, 0, 0, 0, time.UTC))
	d, err := NewDispatcher(DispatcherConfig{
		Sink:     &captureSink{},
		Cooldown: 5 * time.Second,
		Clock:    clock,
	})
	if err != nil {
		t.Fatal(err)
	}

	if rec, _ := d.Dispatch(context.Background(), evalWithScore(0.75)); rec == nil {
		t.Fatal("first dispatch should succeed")
	}
	clock.Advance(6 * time.Second)
	if rec, _ := d.Dispatch(context.Background(), evalWithScore(0.75)); rec == nil {
		t.Error("dispatch after custom cooldown should succeed")
	}
}
