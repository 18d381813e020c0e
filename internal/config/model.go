// model.go loads the scoring model file: the tunable numbers of the engine
// (factor weights, label tables, hour bands, alert thresholds) kept apart
// from process configuration so operators can adjust scoring without
// touching the environment.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"sipwatch/internal/alerting"
	"sipwatch/internal/scoring"
	"sipwatch/internal/types"
)

// ScoringModel mirrors the model file layout. Nil or empty sections fall
// back to the built-in defaults, so a partial file only overrides what it
// names.
type ScoringModel struct {
	Weights        *scoring.Weights     `yaml:"weights"`
	WeatherScores  map[string]float64   `yaml:"weather_scores"`
	LocationScores map[string]float64   `yaml:"location_scores"`
	HourBands      []scoring.HourBand   `yaml:"hour_bands"`
	Thresholds     *alerting.Thresholds `yaml:"thresholds"`

	// CooldownSeconds overrides the dispatch cooldown; zero keeps the
	// default.
	CooldownSeconds int `yaml:"cooldown_seconds"`
}

// LoadModel reads and parses the model file. An empty path returns an
// empty model, which resolves everywhere to defaults. Semantic validation
// happens when the engine and dispatcher are built from it.
func LoadModel(path string) (*ScoringModel, error) {
	if path == "" {
		return &ScoringModel{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{
			Type:    ErrTypeModelFile,
			Message: "failed to read scoring model file",
			Err:     err,
		}
	}

	var m ScoringModel
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, &ConfigError{
			Type:    ErrTypeModelFile,
			Message: "failed to parse scoring model file",
			Err:     err,
		}
	}
	return &m, nil
}

// EngineConfig shapes the model into the scoring engine's configuration.
func (m *ScoringModel) EngineConfig(clock types.Clock) scoring.EngineConfig {
	return scoring.EngineConfig{
		Weights:        m.Weights,
		WeatherScores:  m.WeatherScores,
		LocationScores: m.LocationScores,
		HourBands:      m.HourBands,
		Clock:          clock,
	}
}

// DispatchThresholds returns the configured thresholds, or nil for the
// defaults.
func (m *ScoringModel) DispatchThresholds() *alerting.Thresholds {
	return m.Thresholds
}

// Cooldown returns the configured cooldown, or zero for the default.
func (m *ScoringModel) Cooldown() time.Duration {
	return time.Duration(m.CooldownSeconds) * time.Second
}
