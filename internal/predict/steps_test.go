package predict

import (
	"math"
	"testing"
	"time"
)

func TestDayTypeOf(t *testing.T) {
	tests := []struct {
		date time.Time
		want DayType
	}{
		{time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC), DayMonday},
		{time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC), DayFriday},
		{time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC), DaySaturday},
		{time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC), DaySunday},
		// Jan 1 2025 is a Wednesday but classifies as a holiday.
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), DayHoliday},
		{time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC), DayHoliday},
	}
	for _, tt := range tests {
		if got := DayTypeOf(tt.date); got != tt.want {
			t.Errorf("DayTypeOf(%s) = %s, want %s", tt.date.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestPredictSteps_DefaultWeights(t *testing.T) {
	m := NewWeekdayStepModel()

	friday := time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC)
	if got := m.PredictSteps(friday, 8000); got != 7200 {
		t.Errorf("Friday prediction = %d, want 7200 (8000 * 0.9)", got)
	}

	saturday := time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC)
	if got := m.PredictSteps(saturday, 8000); got != 10400 {
		t.Errorf("Saturday prediction = %d, want 10400 (8000 * 1.3)", got)
	}

	holiday := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := m.PredictSteps(holiday, 8000); got != 5600 {
		t.Errorf("holiday prediction = %d, want 5600 (8000 * 0.7)", got)
	}

	// Zero base falls back to the default.
	if got := m.PredictSteps(friday, 0); got != 7200 {
		t.Errorf("default-base Friday prediction = %d, want 7200", got)
	}
}

func TestWeight_BlendsObservedData(t *testing.T) {
	m := NewWeekdayStepModel()
	m.AddSample(time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC), 12000) // monday
	m.AddSample(time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC), 8000)  // tuesday

	// Monday's observed ratio is 12000/10000 = 1.2, averaged with the
	// default 1.2 it stays 1.2.
	if got := m.Weight(DayMonday); math.Abs(got-1.2) > 1e-9 {
		t.Errorf("monday weight = %v, want 1.2", got)
	}

	// Tuesday: (1.1 + 8000/10000) / 2 = 0.95.
	if got := m.Weight(DayTuesday); math.Abs(got-0.95) > 1e-9 {
		t.Errorf("tuesday weight = %v, want 0.95", got)
	}

	// A bucket with no samples keeps its default.
	if got := m.Weight(DaySunday); math.Abs(got-0.8) > 1e-9 {
		t.Errorf("sunday weight = %v, want default 0.8", got)
	}
}

func TestWeeklyForecast(t *testing.T) {
	m := NewWeekdayStepModel()
	start := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC) // Monday

	forecast := m.WeeklyForecast(start, 8000)
	if len(forecast) != 7 {
		t.Fatalf("forecast length = %d, want 7", len(forecast))
	}

	if forecast[0].DayType != DayMonday || forecast[6].DayType != DaySunday {
		t.Errorf("forecast spans %s..%s, want monday..sunday",
			forecast[0].DayType, forecast[6].DayType)
	}
	for i, p := range forecast {
		if p.PredictedSteps <= 0 {
			t.Errorf("day %d predicted steps = %d, want positive", i, p.PredictedSteps)
		}
		if !p.Date.Equal(start.AddDate(0, 0, i)) {
			t.Errorf("day %d date = %s", i, p.Date)
		}
	}
}
