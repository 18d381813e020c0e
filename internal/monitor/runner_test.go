package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sipwatch/internal/alerting"
	"sipwatch/internal/scoring"
	"sipwatch/internal/types"
)

type mockClock struct {
	mu  sync.Mutex
	now time.Time
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

// fakeSource replays a fixed queue of observations, then returns nil.
type fakeSource struct {
	mu    sync.Mutex
	queue []*types.Observation
	err   error
}

func (s *fakeSource) Next(_ context.Context) (*types.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if len(s.queue) == 0 {
		return nil, nil
	}
	obs := s.queue[0]
	s.queue = s.queue[1:]
	return obs, nil
}

type memStore struct {
	mu      sync.Mutex
	records []types.AlertRecord
	err     error
}

func (s *memStore) Insert(_ context.Context, rec *types.AlertRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, *rec)
	return nil
}

func hotObservation() *types.Observation {
	return &types.Observation{
		TemperatureC:      36,
		HumidityPct:       75,
		Weather:           types.WeatherClear,
		Hour:              12,
		LocationType:      types.LocationStation,
		HasClimateControl: false,
		LocationName:      "shinagawa-east",
	}
}

func mildObservation() *types.Observation {
	return &types.Observation{
		TemperatureC:      12,
		HumidityPct:       30,
		Weather:           types.WeatherRain,
		Hour:              3,
		LocationType:      types.LocationResidential,
		HasClimateControl: true,
	}
}

func newTestRunner(t *testing.T, source types.ObservationSource, store AlertStore) (*Runner, *alerting.Dispatcher, *mockClock) {
	t.Helper()
	clock := &mockClock{now: time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)}

	engine, err := scoring.NewEngine(scoring.EngineConfig{Clock: clock})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	dispatcher, err := alerting.NewDispatcher(alerting.DispatcherConfig{
		Sink:  alerting.NewLogSink(types.NopLogger{}),
		Clock: clock,
	})
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	runner, err := NewRunner(RunnerConfig{
		Source:     source,
		Engine:     engine,
		Dispatcher: dispatcher,
		Store:      store,
		Interval:   time.Minute,
	})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return runner, dispatcher, clock
}

func TestNewRunner_RequiredDeps(t *testing.T) {
	if _, err := NewRunner(RunnerConfig{}); err == nil {
		t.Fatal("NewRunner should reject a nil source")
	}
}

func TestTick_DispatchesAndPersists(t *testing.T) {
	source := &fakeSource{queue: []*types.Observation{hotObservation()}}
	store := &memStore{}
	runner, dispatcher, _ := newTestRunner(t, source, store)

	result, err := runner.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if result.Evaluation == nil {
		t.Fatal("expected an evaluation")
	}
	if result.Alert == nil {
		t.Fatal("expected a dispatched alert for a hot uncontrolled station")
	}
	if got := len(dispatcher.History()); got != 1 {
		t.Errorf("history length = %d, want 1", got)
	}
	if got := len(store.records); got != 1 {
		t.Fatalf("persisted records = %d, want 1", got)
	}
	if store.records[0].ID != result.Alert.ID {
		t.Errorf("persisted ID = %q, want %q", store.records[0].ID, result.Alert.ID)
	}
}

func TestTick_MildObservationNoAlert(t *testing.T) {
	source := &fakeSource{queue: []*types.Observation{mildObservation()}}
	store := &memStore{}
	runner, dispatcher, _ := newTestRunner(t, source, store)

	result, err := runner.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if result.Evaluation == nil {
		t.Fatal("expected an evaluation")
	}
	if result.Alert != nil {
		t.Errorf("unexpected alert: %+v", result.Alert)
	}
	if len(dispatcher.History()) != 0 || len(store.records) != 0 {
		t.Error("nothing should be recorded for a mild observation")
	}
}

func TestTick_EmptySourceIsQuiet(t *testing.T) {
	runner, _, _ := newTestRunner(t, &fakeSource{}, nil)

	result, err := runner.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if result.Evaluation != nil || result.Alert != nil {
		t.Errorf("empty source should produce an empty result: %+v", result)
	}
}

func TestTick_SourceErrorPropagates(t *testing.T) {
	upstream := errors.New("weather api down")
	runner, _, _ := newTestRunner(t, &fakeSource{err: upstream}, nil)

	if _, err := runner.Tick(context.Background()); !errors.Is(err, upstream) {
		t.Fatalf("err = %v, want wrapped source error", err)
	}
}

func TestTick_StoreFailureKeepsAlert(t *testing.T) {
	source := &fakeSource{queue: []*types.Observation{hotObservation()}}
	store := &memStore{err: errors.New("db unavailable")}
	runner, dispatcher, _ := newTestRunner(t, source, store)

	result, err := runner.Tick(context.Background())
	if err == nil {
		t.Fatal("expected the store error to surface")
	}
	if result == nil || result.Alert == nil {
		t.Fatal("alert should still be dispatched when persistence fails")
	}
	if got := len(dispatcher.History()); got != 1 {
		t.Errorf("history length = %d, want 1", got)
	}
}

func TestTick_CooldownSuppressesSecondAlert(t *testing.T) {
	source := &fakeSource{queue: []*types.Observation{hotObservation(), hotObservation()}}
	store := &memStore{}
	runner, _, clock := newTestRunner(t, source, store)

	ctx := context.Background()
	if _, err := runner.Tick(ctx); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	clock.Advance(10 * time.Second)
	result, err := runner.Tick(ctx)
	if err != nil {
		t.Fatalf("second tick: %v", err)
	}
	if result.Alert != nil {
		t.Error("second alert should be suppressed inside the cooldown")
	}
	if got := len(store.records); got != 1 {
		t.Errorf("persisted records = %d, want 1", got)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	source := &fakeSource{queue: []*types.Observation{mildObservation()}}
	runner, _, _ := newTestRunner(t, source, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
