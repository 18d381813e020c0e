// Package alerting maps composite purchase scores to discrete alert levels
// and dispatches rate-limited alerts to an external sink. The Dispatcher is
// the only stateful component in the engine: it owns the cooldown clock and
// the append-only alert history.
package alerting

import (
	"fmt"

	"sipwatch/internal/types"
)

// Thresholds are the ascending minimum scores for each alert level.
// A score below Low classifies as no alert.
type Thresholds struct {
	Low      float64 `yaml:"low" json:"low"`
	Medium   float64 `yaml:"medium" json:"medium"`
	High     float64 `yaml:"high" json:"high"`
	Critical float64 `yaml:"critical" json:"critical"`
}

// DefaultThresholds returns the production alert thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Low: 0.40, Medium: 0.55, High: 0.70, Critical: 0.85}
}

// Validate checks that the thresholds are strictly increasing and inside
// [0,1]. Strict ordering guarantees the level bands never overlap.
func (t Thresholds) Validate() error {
	if t.Low < 0 || t.Critical > 1 {
		return fmt.Errorf("thresholds: values must lie within [0,1]")
	}
	if !(t.Low < t.Medium && t.Medium < t.High && t.High < t.Critical) {
		return fmt.Errorf("thresholds: must be strictly increasing (low < medium < high < critical), got %v < %v < %v < %v",
			t.Low, t.Medium, t.High, t.Critical)
	}
	return nil
}

// Classify maps a composite score to an alert level. Levels are checked
// from critical downward so a score satisfying several thresholds always
// receives the highest qualifying level.
func (t Thresholds) Classify(score float64) types.AlertLevel {
	switch {
	case score >= t.Critical:
		return types.AlertCritical
	case score >= t.High:
		return types.AlertHigh
	case score >= t.Medium:
		return types.AlertMedium
	case score >= t.Low:
		return types.AlertLow
	default:
		return types.AlertNone
	}
}
