package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"sipwatch/internal/types"
)

// Open-Meteo endpoints. The service is keyless; resilience comes entirely
// from the BaseClient circuit breaker and retry policy.
const (
	defaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	defaultArchiveURL   = "https://archive-api.open-meteo.com/v1/archive"
	defaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
)

// maxErrorBodyRead limits how much of an error response body we keep for
// diagnostics.
const maxErrorBodyRead = 2048

// Coordinates is a geocoded place.
type Coordinates struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DailySummary is one day of archived weather for a location.
type DailySummary struct {
	Date            string  `json:"date"`
	Location        string  `json:"location"`
	TempMinC        float64 `json:"temp_min_c"`
	TempMaxC        float64 `json:"temp_max_c"`
	TempMeanC       float64 `json:"temp_mean_c"`
	HumidityMeanPct float64 `json:"humidity_mean_pct"`
	PressureMeanHPa float64 `json:"pressure_mean_hpa"`
}

// CurrentWeather is the live reading used to build observations.
type CurrentWeather struct {
	TemperatureC float64
	HumidityPct  float64
	Condition    types.WeatherCondition
	ObservedAt   time.Time
}

// OpenMeteoClient wraps the Open-Meteo geocoding, archive, and forecast
// APIs behind the BaseClient resilience layer.
type OpenMeteoClient struct {
	base         *BaseClient
	geocodingURL string
	archiveURL   string
	forecastURL  string
	logger       types.Logger
}

// OpenMeteoOption is a functional option for configuring an OpenMeteoClient.
type OpenMeteoOption func(*OpenMeteoClient)

// WithEndpoints overrides the API endpoints. Intended for tests pointing at
// an httptest server.
func WithEndpoints(geocoding, archive, forecast string) OpenMeteoOption {
	return func(c *OpenMeteoClient) {
		if geocoding != "" {
			c.geocodingURL = geocoding
		}
		if archive != "" {
			c.archiveURL = archive
		}
		if forecast != "" {
			c.forecastURL = forecast
		}
	}
}

// NewOpenMeteoClient creates an OpenMeteoClient routed through the given
// BaseClient.
func NewOpenMeteoClient(base *BaseClient, logger types.Logger, opts ...OpenMeteoOption) *OpenMeteoClient {
	if logger == nil {
		logger = types.NopLogger{}
	}
	c := &OpenMeteoClient{
		base:         base,
		geocodingURL: defaultGeocodingURL,
		archiveURL:   defaultArchiveURL,
		forecastURL:  defaultForecastURL,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Geocode resolves a place name to coordinates using the first match.
func (c *OpenMeteoClient) Geocode(ctx context.Context, location string) (*Coordinates, error) {
	params := url.Values{}
	params.Set("name", location)
	params.Set("count", "1")
	params.Set("language", "en")
	params.Set("format", "json")

	var payload struct {
		Results []Coordinates `json:"results"`
	}
	if err := c.getJSON(ctx, c.geocodingURL, params, &payload); err != nil {
		return nil, err
	}
	if len(payload.Results) == 0 {
		return nil, types.NewAppError(types.ErrCodeNotFoundLocation,
			fmt.Sprintf("no geocoding match for %q", location), nil)
	}
	return &payload.Results[0], nil
}

// HistoricalDaily fetches the archived daily aggregates for a single date
// (YYYY-MM-DD).
func (c *OpenMeteoClient) HistoricalDaily(ctx context.Context, lat, lon float64, date string) (*DailySummary, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", lat))
	params.Set("longitude", fmt.Sprintf("%.4f", lon))
	params.Set("start_date", date)
	params.Set("end_date", date)
	params.Set("daily", "temperature_2m_max,temperature_2m_min,temperature_2m_mean,relative_humidity_2m_mean,surface_pressure_mean")
	params.Set("timezone", "auto")

	var payload struct {
		Daily struct {
			TempMax      []float64 `json:"temperature_2m_max"`
			TempMin      []float64 `json:"temperature_2m_min"`
			TempMean     []float64 `json:"temperature_2m_mean"`
			HumidityMean []float64 `json:"relative_humidity_2m_mean"`
			PressureMean []float64 `json:"surface_pressure_mean"`
		} `json:"daily"`
	}
	if err := c.getJSON(ctx, c.archiveURL, params, &payload); err != nil {
		return nil, err
	}

	d := payload.Daily
	if len(d.TempMean) == 0 || len(d.TempMax) == 0 || len(d.TempMin) == 0 {
		return nil, types.NewAppError(types.ErrCodeUpstreamWeather,
			fmt.Sprintf("archive returned no daily data for %s", date), nil)
	}

	summary := &DailySummary{
		Date:      date,
		TempMaxC:  d.TempMax[0],
		TempMinC:  d.TempMin[0],
		TempMeanC: d.TempMean[0],
	}
	if len(d.HumidityMean) > 0 {
		summary.HumidityMeanPct = d.HumidityMean[0]
	}
	if len(d.PressureMean) > 0 {
		summary.PressureMeanHPa = d.PressureMean[0]
	}
	return summary, nil
}

// WeatherSummary geocodes the location and fetches its daily archive for
// the given date.
func (c *OpenMeteoClient) WeatherSummary(ctx context.Context, location, date string) (*DailySummary, error) {
	coords, err := c.Geocode(ctx, location)
	if err != nil {
		return nil, err
	}
	summary, err := c.HistoricalDaily(ctx, coords.Latitude, coords.Longitude, date)
	if err != nil {
		return nil, err
	}
	summary.Location = location
	return summary, nil
}

// Current fetches the live temperature, humidity, and sky condition.
func (c *OpenMeteoClient) Current(ctx context.Context, lat, lon float64) (*CurrentWeather, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", lat))
	params.Set("longitude", fmt.Sprintf("%.4f", lon))
	params.Set("current", "temperature_2m,relative_humidity_2m,weather_code")
	params.Set("timezone", "auto")

	var payload struct {
		Current struct {
			Time        string  `json:"time"`
			Temperature float64 `json:"temperature_2m"`
			Humidity    float64 `json:"relative_humidity_2m"`
			WeatherCode int     `json:"weather_code"`
		} `json:"current"`
	}
	if err := c.getJSON(ctx, c.forecastURL, params, &payload); err != nil {
		return nil, err
	}

	observedAt, err := time.Parse("2006-01-02T15:04", payload.Current.Time)
	if err != nil {
		observedAt = time.Now().UTC()
	}

	return &CurrentWeather{
		TemperatureC: payload.Current.Temperature,
		HumidityPct:  payload.Current.Humidity,
		Condition:    conditionFromWMOCode(payload.Current.WeatherCode),
		ObservedAt:   observedAt,
	}, nil
}

// getJSON performs a GET through the BaseClient and decodes the JSON body.
func (c *OpenMeteoClient) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build weather request", err)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamWeather, "weather provider request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyRead))
		return types.NewAppError(types.ErrCodeUpstreamWeather,
			fmt.Sprintf("weather provider returned %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return types.NewAppError(types.ErrCodeUpstreamWeather, "failed to decode weather response", err)
	}
	return nil
}

// conditionFromWMOCode maps WMO weather interpretation codes to condition
// labels the scoring tables know about.
func conditionFromWMOCode(code int) types.WeatherCondition {
	switch {
	case code == 0:
		return types.WeatherClear
	case code >= 1 && code <= 2:
		return types.WeatherLightOvercast
	case code == 3 || code == 45 || code == 48:
		return types.WeatherCloudy
	case code >= 51 && code <= 57:
		return types.WeatherLightRain
	case code == 61 || code == 66:
		return types.WeatherLightRain
	case code == 63 || code == 67 || code == 80 || code == 81:
		return types.WeatherRain
	case code == 65 || code == 82:
		return types.WeatherHeavyRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return types.WeatherSnow
	case code >= 95:
		return types.WeatherStorm
	default:
		return types.WeatherCloudy
	}
}
