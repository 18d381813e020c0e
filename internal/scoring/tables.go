package scoring

import (
	"fmt"
	"sort"
	"strings"

	"sipwatch/internal/types"
)

// ScoreTable is a finite label-to-score mapping with a single documented
// default for unmatched labels. Lookups are case-insensitive. Tables are
// validated at construction so call sites never see an out-of-range score.
type ScoreTable struct {
	scores   map[string]float64
	fallback float64
}

// NewScoreTable builds a validated ScoreTable. Every score, including the
// fallback, must be within [0,1]. Keys are normalized to lower case.
func NewScoreTable(scores map[string]float64, fallback float64) (*ScoreTable, error) {
	if fallback < 0 || fallback > 1 {
		return nil, fmt.Errorf("score table: fallback %v out of [0,1]", fallback)
	}
	normalized := make(map[string]float64, len(scores))
	for label, score := range scores {
		if score < 0 || score > 1 {
			return nil, fmt.Errorf("score table: %q score %v out of [0,1]", label, score)
		}
		key := strings.ToLower(strings.TrimSpace(label))
		if key == "" {
			return nil, fmt.Errorf("score table: empty label")
		}
		if _, dup := normalized[key]; dup {
			return nil, fmt.Errorf("score table: duplicate label %q after normalization", key)
		}
		normalized[key] = score
	}
	return &ScoreTable{scores: normalized, fallback: fallback}, nil
}

// Lookup returns the score for the label, or the fallback when the label
// is unknown. Matching is case-insensitive.
func (t *ScoreTable) Lookup(label string) float64 {
	if score, ok := t.scores[strings.ToLower(strings.TrimSpace(label))]; ok {
		return score
	}
	return t.fallback
}

// Fallback returns the table's default score for unmatched labels.
func (t *ScoreTable) Fallback() float64 { return t.fallback }

// unknownLabelScore is the documented default for labels absent from the
// weather and location tables.
const unknownLabelScore = 0.5

// DefaultWeatherScores returns the built-in weather condition table.
func DefaultWeatherScores() map[string]float64 {
	return map[string]float64{
		string(types.WeatherClear):         0.9,
		string(types.WeatherCloudy):        0.6,
		string(types.WeatherRain):          0.3,
		string(types.WeatherSnow):          0.2,
		string(types.WeatherStorm):         0.1,
		string(types.WeatherClearSky):      1.0,
		string(types.WeatherLightOvercast): 0.7,
		string(types.WeatherLightRain):     0.4,
		string(types.WeatherHeavyRain):     0.2,
	}
}

// DefaultLocationScores returns the built-in location type table.
func DefaultLocationScores() map[string]float64 {
	return map[string]float64{
		string(types.LocationStation):        0.9,
		string(types.LocationOffice):         0.7,
		string(types.LocationPark):           0.8,
		string(types.LocationRetail):         0.6,
		string(types.LocationResidential):    0.4,
		string(types.LocationSchool):         0.8,
		string(types.LocationHospital):       0.5,
		string(types.LocationSportsFacility): 0.9,
		string(types.LocationTouristSite):    0.8,
	}
}

// HourBand is a closed hour range [Start,End] with an associated score.
type HourBand struct {
	Start int     `yaml:"start" json:"start"`
	End   int     `yaml:"end" json:"end"`
	Score float64 `yaml:"score" json:"score"`
}

// HourSchedule maps an hour of day to a time-of-day desirability score via
// a fixed set of non-overlapping bands plus a default for off-band hours.
type HourSchedule struct {
	bands    []HourBand
	fallback float64
}

// NewHourSchedule validates and builds an HourSchedule. Bands must lie in
// [0,23], carry scores in [0,1], and must not overlap.
func NewHourSchedule(bands []HourBand, fallback float64) (*HourSchedule, error) {
	if fallback < 0 || fallback > 1 {
		return nil, fmt.Errorf("hour schedule: fallback %v out of [0,1]", fallback)
	}
	sorted := make([]HourBand, len(bands))
	copy(sorted, bands)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	for i, b := range sorted {
		if b.Start < 0 || b.End > 23 || b.Start > b.End {
			return nil, fmt.Errorf("hour schedule: band [%d,%d] out of range", b.Start, b.End)
		}
		if b.Score < 0 || b.Score > 1 {
			return nil, fmt.Errorf("hour schedule: band [%d,%d] score %v out of [0,1]", b.Start, b.End, b.Score)
		}
		if i > 0 && b.Start <= sorted[i-1].End {
			return nil, fmt.Errorf("hour schedule: band [%d,%d] overlaps [%d,%d]",
				b.Start, b.End, sorted[i-1].Start, sorted[i-1].End)
		}
	}
	return &HourSchedule{bands: sorted, fallback: fallback}, nil
}

// Score returns the score for the given hour of day.
func (s *HourSchedule) Score(hour int) float64 {
	for _, b := range s.bands {
		if hour >= b.Start && hour <= b.End {
			return b.Score
		}
	}
	return s.fallback
}

// Bands returns a copy of the schedule's bands in ascending order.
func (s *HourSchedule) Bands() []HourBand {
	out := make([]HourBand, len(s.bands))
	copy(out, s.bands)
	return out
}

// offBandHourScore is the default score for hours outside every band.
const offBandHourScore = 0.3

// DefaultHourBands returns the built-in time-of-day bands: morning commute,
// lunch, afternoon break, and evening.
func DefaultHourBands() []HourBand {
	return []HourBand{
		{Start: 6, End: 9, Score: 0.8},
		{Start: 11, End: 13, Score: 0.9},
		{Start: 15, End: 17, Score: 0.7},
		{Start: 19, End: 21, Score: 0.6},
	}
}
