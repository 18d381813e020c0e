package external

import (
	"context"

	"sipwatch/internal/types"
)

// Site describes the monitored place an observation stream is anchored to.
// The context flags describe the site itself, not individual shoppers, so
// ArrivedFromOutdoors is intentionally absent: a live weather feed cannot
// know it and it defaults to false.
type Site struct {
	Name              string
	Latitude          float64
	Longitude         float64
	LocationType      types.LocationType
	HasClimateControl bool
}

// Compile-time assertion that WeatherSource implements types.ObservationSource.
var _ types.ObservationSource = (*WeatherSource)(nil)

// WeatherSource turns the Open-Meteo live feed for one site into an
// observation stream. Every call to Next fetches a fresh reading; pacing is
// the caller's job.
type WeatherSource struct {
	client *OpenMeteoClient
	site   Site
	clock  types.Clock
}

// NewWeatherSource creates a WeatherSource for the given site.
func NewWeatherSource(client *OpenMeteoClient, site Site, clock types.Clock) *WeatherSource {
	if clock == nil {
		clock = types.RealClock{}
	}
	return &WeatherSource{client: client, site: site, clock: clock}
}

// Next fetches the current conditions and shapes them into an observation.
// The hour comes from the provider's local-time reading, so scoring sees
// the site's wall clock rather than UTC.
func (s *WeatherSource) Next(ctx context.Context) (*types.Observation, error) {
	current, err := s.client.Current(ctx, s.site.Latitude, s.site.Longitude)
	if err != nil {
		return nil, err
	}

	return &types.Observation{
		TemperatureC:      current.TemperatureC,
		HumidityPct:       current.HumidityPct,
		Weather:           current.Condition,
		Hour:              current.ObservedAt.Hour(),
		LocationType:      s.site.LocationType,
		HasClimateControl: s.site.HasClimateControl,
		Timestamp:         s.clock.Now(),
		LocationName:      s.site.Name,
	}, nil
}
