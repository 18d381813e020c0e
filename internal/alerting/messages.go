package alerting

import (
	"fmt"

	"sipwatch/internal/types"
)

// Per-level message templates. The level selects the template; the
// observation summary is appended so the message is self-contained for
// sinks that only show a single line.
var levelMessages = map[types.AlertLevel]string{
	types.AlertLow:      "elevated beverage demand expected",
	types.AlertMedium:   "high beverage demand expected",
	types.AlertHigh:     "heat-stress risk: strong beverage demand expected",
	types.AlertCritical: "severe heat-stress risk: peak beverage demand expected",
}

// messageFor renders the dispatch message for a level and evaluation.
func messageFor(level types.AlertLevel, eval *types.Evaluation) string {
	template, ok := levelMessages[level]
	if !ok {
		template = "beverage demand alert"
	}

	location := eval.Observation.LocationName
	if location == "" {
		location = string(eval.Observation.LocationType)
	}

	return fmt.Sprintf("%s at %s (score %.3f, heat index %.1f°C)",
		template, location, eval.Composite.PurchaseScore, eval.Factors.HeatIndexC)
}
