package scoring

import "sipwatch/internal/types"

// Indoor adjustment factors. Climate control suppresses felt need;
// a recent arrival from outdoors partially restores it. The two stages are
// applied in this exact order (halve, then re-boost) because the combined
// factor (0.8) differs from either single-stage effect.
const (
	climateControlDamping = 0.5
	outdoorArrivalBoost   = 1.6
)

// AdjustLocationScore refines the base location score using the indoor
// context flags. Only indoor location types with climate control are
// adjusted; everything else passes through unchanged. The result is
// clamped to at most 1.
func AdjustLocationScore(base float64, loc types.LocationType, hasClimateControl, arrivedFromOutdoors bool) float64 {
	if !loc.IsIndoor() || !hasClimateControl {
		return base
	}

	score := base * climateControlDamping
	if arrivedFromOutdoors {
		score *= outdoorArrivalBoost
	}
	if score > 1 {
		score = 1
	}
	return score
}
