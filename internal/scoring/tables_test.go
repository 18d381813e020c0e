package scoring

import (
	"testing"

	"sipwatch/internal/types"
)

func TestScoreTable_LookupIsCaseInsensitive(t *testing.T) {
	table, err := NewScoreTable(DefaultWeatherScores(), unknownLabelScore)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := table.Lookup("Clear"); got != 0.9 {
		t.Errorf("Lookup(Clear) = %v, want 0.9", got)
	}
	if got := table.Lookup("CLEAR-SKY"); got != 1.0 {
		t.Errorf("Lookup(CLEAR-SKY) = %v, want 1.0", got)
	}
	if got := table.Lookup("  heavy-rain "); got != 0.2 {
		t.Errorf("Lookup with whitespace = %v, want 0.2", got)
	}
}

func TestScoreTable_UnknownLabelFallsBack(t *testing.T) {
	table, err := NewScoreTable(DefaultWeatherScores(), unknownLabelScore)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := table.Lookup("hail"); got != 0.5 {
		t.Errorf("Lookup(hail) = %v, want default 0.5", got)
	}
}

func TestScoreTable_RejectsOutOfRangeScore(t *testing.T) {
	if _, err := NewScoreTable(map[string]float64{"clear": 1.2}, 0.5); err == nil {
		t.Error("expected error for score > 1")
	}
	if _, err := NewScoreTable(map[string]float64{"clear": -0.1}, 0.5); err == nil {
		t.Error("expected error for score < 0")
	}
	if _, err := NewScoreTable(map[string]float64{"clear": 0.9}, 1.5); err == nil {
		t.Error("expected error for out-of-range fallback")
	}
}

func TestScoreTable_RejectsDuplicateAfterNormalization(t *testing.T) {
	_, err := NewScoreTable(map[string]float64{"Clear": 0.9, "clear": 0.8}, 0.5)
	if err == nil {
		t.Error("expected duplicate label error")
	}
}

func TestDefaultLocationScores(t *testing.T) {
	table, err := NewScoreTable(DefaultLocationScores(), unknownLabelScore)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := map[types.LocationType]float64{
		types.LocationStation:        0.9,
		types.LocationOffice:         0.7,
		types.LocationPark:           0.8,
		types.LocationRetail:         0.6,
		types.LocationResidential:    0.4,
		types.LocationSchool:         0.8,
		types.LocationHospital:       0.5,
		types.LocationSportsFacility: 0.9,
		types.LocationTouristSite:    0.8,
		types.LocationOther:          0.5, // unmatched -> default
	}
	for loc, want := range cases {
		if got := table.Lookup(string(loc)); got != want {
			t.Errorf("Lookup(%s) = %v, want %v", loc, got, want)
		}
	}
}

func TestHourSchedule_DefaultBands(t *testing.T) {
	sched, err := NewHourSchedule(DefaultHourBands(), offBandHourScore)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := map[int]float64{
		6: 0.8, 9: 0.8, // morning commute
		11: 0.9, 13: 0.9, // lunch
		15: 0.7, 17: 0.7, // afternoon break
		19: 0.6, 21: 0.6, // evening
		0: 0.3, 5: 0.3, 10: 0.3, 14: 0.3, 18: 0.3, 22: 0.3, 23: 0.3,
	}
	for hour, want := range cases {
		if got := sched.Score(hour); got != want {
			t.Errorf("Score(%d) = %v, want %v", hour, got, want)
		}
	}
}

func TestHourSchedule_RejectsOverlappingBands(t *testing.T) {
	_, err := NewHourSchedule([]HourBand{
		{Start: 6, End: 10, Score: 0.8},
		{Start: 10, End: 13, Score: 0.9},
	}, 0.3)
	if err == nil {
		t.Error("expected overlap error")
	}
}

func TestHourSchedule_RejectsOutOfRangeBand(t *testing.T) {
	if _, err := NewHourSchedule([]HourBand{{Start: 20, End: 24, Score: 0.5}}, 0.3); err == nil {
		t.Error("expected range error for End=24")
	}
	if _, err := NewHourSchedule([]HourBand{{Start: 9, End: 6, Score: 0.5}}, 0.3); err == nil {
		t.Error("expected range error for inverted band")
	}
}
