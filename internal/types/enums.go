package types

// WeatherCondition is the reported sky condition label for an observation.
// Scoring matches labels case-insensitively; unknown labels fall back to the
// table default rather than failing.
type WeatherCondition string

const (
	WeatherClear         WeatherCondition = "clear"
	WeatherCloudy        WeatherCondition = "cloudy"
	WeatherRain          WeatherCondition = "rain"
	WeatherSnow          WeatherCondition = "snow"
	WeatherStorm         WeatherCondition = "storm"
	WeatherClearSky      WeatherCondition = "clear-sky"
	WeatherLightOvercast WeatherCondition = "light-overcast"
	WeatherLightRain     WeatherCondition = "light-rain"
	WeatherHeavyRain     WeatherCondition = "heavy-rain"
)

// LocationType categorizes where an observation was taken.
type LocationType string

const (
	LocationStation        LocationType = "station"
	LocationOffice         LocationType = "office"
	LocationPark           LocationType = "park"
	LocationRetail         LocationType = "retail"
	LocationResidential    LocationType = "residential"
	LocationSchool         LocationType = "school"
	LocationHospital       LocationType = "hospital"
	LocationSportsFacility LocationType = "sports-facility"
	LocationTouristSite    LocationType = "tourist-site"
	LocationOther          LocationType = "other"
)

// indoorLocations are the location types eligible for the climate-control
// adjustment. Outdoor types always pass their base score through unchanged.
var indoorLocations = map[LocationType]bool{
	LocationOffice:      true,
	LocationRetail:      true,
	LocationResidential: true,
	LocationSchool:      true,
	LocationHospital:    true,
}

// IsIndoor reports whether the location type is an enclosed space that can
// be climate controlled.
func (l LocationType) IsIndoor() bool {
	return indoorLocations[l]
}

// RecommendationTier is the human-facing purchase recommendation band
// derived from the composite score.
type RecommendationTier string

const (
	TierStrong   RecommendationTier = "strong"
	TierModerate RecommendationTier = "moderate"
	TierSlight   RecommendationTier = "slight"
	TierNone     RecommendationTier = "none"
)

// BeverageCategory is the suggested beverage class, derived solely from the
// heat index (independent of the composite score).
type BeverageCategory string

const (
	BeverageCold          BeverageCategory = "cold"
	BeverageAmbientOrCold BeverageCategory = "ambient-or-cold"
	BeverageAmbient       BeverageCategory = "ambient"
	BeverageHot           BeverageCategory = "hot"
)

// AlertLevel is the discrete severity assigned to a composite score.
// AlertNone means the score did not reach the lowest threshold.
type AlertLevel string

const (
	AlertNone     AlertLevel = "none"
	AlertLow      AlertLevel = "low"
	AlertMedium   AlertLevel = "medium"
	AlertHigh     AlertLevel = "high"
	AlertCritical AlertLevel = "critical"
)

// Rank returns the ordering of the level (none=0 .. critical=4) so levels
// can be compared numerically.
func (l AlertLevel) Rank() int {
	switch l {
	case AlertLow:
		return 1
	case AlertMedium:
		return 2
	case AlertHigh:
		return 3
	case AlertCritical:
		return 4
	default:
		return 0
	}
}

// SinkType identifies an alert delivery sink.
type SinkType string

const (
	SinkLog     SinkType = "log"
	SinkSQS     SinkType = "sqs"
	SinkWebhook SinkType = "webhook"
)

// ActivityLevel describes physical exertion in spend prediction scenarios.
type ActivityLevel string

const (
	ActivityNone     ActivityLevel = "none"
	ActivityLight    ActivityLevel = "light"
	ActivityModerate ActivityLevel = "moderate"
	ActivityHigh     ActivityLevel = "high"
	ActivityIntense  ActivityLevel = "intense"
)
