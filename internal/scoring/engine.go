package scoring

import (
	"fmt"
	"math"

	"sipwatch/internal/types"
)

// thermalFloorC and thermalCeilC bound the linear thermal mapping:
// an apparent temperature of 10°C scores 0, 40°C scores 1, saturating
// outside that band.
const (
	thermalFloorC = 10.0
	thermalCeilC  = 40.0
)

// ThermalScore maps a heat index in Celsius to a [0,1] desirability score.
func ThermalScore(heatIndexC float64) float64 {
	score := (heatIndexC - thermalFloorC) / (thermalCeilC - thermalFloorC)
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Weights are the convex-combination coefficients for the four factor
// scores. They must be non-negative and sum to 1, which keeps the
// composite score inside [0,1] for any valid observation.
type Weights struct {
	Thermal  float64 `yaml:"thermal" json:"thermal"`
	Weather  float64 `yaml:"weather" json:"weather"`
	Time     float64 `yaml:"time" json:"time"`
	Location float64 `yaml:"location" json:"location"`
}

// weightSumTolerance absorbs float rounding when weights come from a
// config file.
const weightSumTolerance = 1e-9

// Validate checks the convex-combination invariant.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"thermal": w.Thermal, "weather": w.Weather, "time": w.Time, "location": w.Location,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("weights: %s must be non-negative, got %v", name, v)
		}
	}
	sum := w.Thermal + w.Weather + w.Time + w.Location
	if math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("weights: must sum to 1.0, got %v", sum)
	}
	return nil
}

// DefaultWeights returns the fixed production weights.
func DefaultWeights() Weights {
	return Weights{Thermal: 0.4, Weather: 0.3, Time: 0.2, Location: 0.1}
}

// EngineConfig holds the optional overrides for building an Engine. Zero
// values fall back to the built-in defaults.
type EngineConfig struct {
	Weights        *Weights
	WeatherScores  map[string]float64
	LocationScores map[string]float64
	HourBands      []HourBand
	Clock          types.Clock
}

// Engine combines the four factor scores into the composite purchase score
// and derives the recommendation tier and beverage suggestion. An Engine is
// immutable after construction and safe for concurrent use.
type Engine struct {
	weights  Weights
	weather  *ScoreTable
	location *ScoreTable
	hours    *HourSchedule
	clock    types.Clock
}

// NewEngine builds an Engine, validating every table and the weights at
// construction time.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	weights := DefaultWeights()
	if cfg.Weights != nil {
		weights = *cfg.Weights
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	weatherScores := cfg.WeatherScores
	if weatherScores == nil {
		weatherScores = DefaultWeatherScores()
	}
	weather, err := NewScoreTable(weatherScores, unknownLabelScore)
	if err != nil {
		return nil, fmt.Errorf("weather %w", err)
	}

	locationScores := cfg.LocationScores
	if locationScores == nil {
		locationScores = DefaultLocationScores()
	}
	location, err := NewScoreTable(locationScores, unknownLabelScore)
	if err != nil {
		return nil, fmt.Errorf("location %w", err)
	}

	bands := cfg.HourBands
	if bands == nil {
		bands = DefaultHourBands()
	}
	hours, err := NewHourSchedule(bands, offBandHourScore)
	if err != nil {
		return nil, err
	}

	clock := cfg.Clock
	if clock == nil {
		clock = types.RealClock{}
	}

	return &Engine{
		weights:  weights,
		weather:  weather,
		location: location,
		hours:    hours,
		clock:    clock,
	}, nil
}

// Evaluate scores a single observation. It is side-effect-free: the only
// state it touches is the injected clock for the evaluation timestamp.
func (e *Engine) Evaluate(obs types.Observation) (*types.Evaluation, error) {
	if err := obs.Validate(); err != nil {
		return nil, err
	}

	heatIndex := HeatIndexC(obs.TemperatureC, obs.HumidityPct)

	locationBase := e.location.Lookup(string(obs.LocationType))
	factors := types.FactorScores{
		Thermal:    ThermalScore(heatIndex),
		Weather:    e.weather.Lookup(string(obs.Weather)),
		Time:       e.hours.Score(obs.Hour),
		Location:   AdjustLocationScore(locationBase, obs.LocationType, obs.HasClimateControl, obs.ArrivedFromOutdoors),
		HeatIndexC: heatIndex,
	}

	score := e.weights.Thermal*factors.Thermal +
		e.weights.Weather*factors.Weather +
		e.weights.Time*factors.Time +
		e.weights.Location*factors.Location

	return &types.Evaluation{
		Observation: obs,
		Factors:     factors,
		Composite: types.CompositeResult{
			PurchaseScore: score,
			Tier:          TierForScore(score),
			Beverage:      BeverageForHeatIndex(heatIndex),
		},
		EvaluatedAt: e.clock.Now(),
	}, nil
}

// TierForScore maps a composite score to a recommendation tier. Bands are
// right-open and evaluated high to low.
func TierForScore(score float64) types.RecommendationTier {
	switch {
	case score >= 0.8:
		return types.TierStrong
	case score >= 0.6:
		return types.TierModerate
	case score >= 0.4:
		return types.TierSlight
	default:
		return types.TierNone
	}
}

// BeverageForHeatIndex suggests a beverage category from the heat index
// alone, independent of the purchase score.
func BeverageForHeatIndex(heatIndexC float64) types.BeverageCategory {
	switch {
	case heatIndexC >= 30:
		return types.BeverageCold
	case heatIndexC >= 20:
		return types.BeverageAmbientOrCold
	case heatIndexC >= 10:
		return types.BeverageAmbient
	default:
		return types.BeverageHot
	}
}
