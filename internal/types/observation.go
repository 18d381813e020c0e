package types

import (
	"math"
	"time"
)

// Observation is a single environmental reading to be scored. It is
// immutable for the duration of an evaluation.
//
// Timestamp and LocationName are passthrough metadata: they are echoed into
// alert records but never used by the scoring model.
type Observation struct {
	TemperatureC float64          `json:"temperature_c"`
	HumidityPct  float64          `json:"humidity_pct"`
	Weather      WeatherCondition `json:"weather"`
	Hour         int              `json:"hour"`
	LocationType LocationType     `json:"location_type"`

	// Context flags for the indoor adjustment. HasClimateControl defaults
	// to true at the API boundary when the caller omits it.
	HasClimateControl   bool `json:"has_climate_control"`
	ArrivedFromOutdoors bool `json:"arrived_from_outdoors"`

	Timestamp    time.Time `json:"timestamp,omitempty"`
	LocationName string    `json:"location_name,omitempty"`
}

// Validate checks the required numeric fields. Unknown weather or location
// labels are NOT errors (they degrade to the table default score); missing
// or non-finite numerics have no sensible default and fail fast.
func (o *Observation) Validate() error {
	if math.IsNaN(o.TemperatureC) || math.IsInf(o.TemperatureC, 0) {
		return NewAppError(ErrCodeValidationInvalidTemperature, "temperature_c must be a finite number", nil)
	}
	if math.IsNaN(o.HumidityPct) || math.IsInf(o.HumidityPct, 0) {
		return NewAppError(ErrCodeValidationInvalidHumidity, "humidity_pct must be a finite number", nil)
	}
	if o.HumidityPct < 0 || o.HumidityPct > 100 {
		return NewAppError(ErrCodeValidationInvalidHumidity, "humidity_pct must be within [0,100]", nil)
	}
	if o.Hour < 0 || o.Hour > 23 {
		return NewAppError(ErrCodeValidationInvalidHour, "hour must be within [0,23]", nil)
	}
	return nil
}

// FactorScores holds the four normalized [0,1] factor scores plus the heat
// index they were derived from. Location is the context-adjusted value.
type FactorScores struct {
	Thermal    float64 `json:"thermal"`
	Weather    float64 `json:"weather"`
	Time       float64 `json:"time"`
	Location   float64 `json:"location"`
	HeatIndexC float64 `json:"heat_index_c"`
}

// CompositeResult is the output of the purchase score engine for one
// observation.
type CompositeResult struct {
	PurchaseScore float64            `json:"purchase_score"`
	Tier          RecommendationTier `json:"recommendation"`
	Beverage      BeverageCategory   `json:"beverage_suggestion"`
}

// Evaluation bundles everything derived from a single observation. It is
// the unit handed to the alert dispatcher.
type Evaluation struct {
	Observation Observation     `json:"observation"`
	Factors     FactorScores    `json:"factors"`
	Composite   CompositeResult `json:"composite"`
	EvaluatedAt time.Time       `json:"evaluated_at"`
}

// AlertRecord is an immutable record of a dispatched alert. Records are
// created by the dispatcher on a successful cooldown-gated dispatch and
// appended to its in-memory history; they are never mutated afterwards.
type AlertRecord struct {
	ID        string     `json:"id"`
	Timestamp time.Time  `json:"timestamp"`
	Level     AlertLevel `json:"level"`
	Score     float64    `json:"score"`
	Message   string     `json:"message"`

	// Echoed observation summary.
	LocationName        string           `json:"location_name,omitempty"`
	LocationType        LocationType     `json:"location_type"`
	TemperatureC        float64          `json:"temperature_c"`
	HeatIndexC          float64          `json:"heat_index_c"`
	HumidityPct         float64          `json:"humidity_pct"`
	HasClimateControl   bool             `json:"has_climate_control"`
	ArrivedFromOutdoors bool             `json:"arrived_from_outdoors"`
	Beverage            BeverageCategory `json:"beverage_suggestion"`
}
