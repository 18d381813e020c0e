package api

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"sipwatch/internal/types"
)

// validate is the shared struct validator for request DTOs.
var validate = validator.New()

// evaluateRequest is the POST /v1/evaluate body. Required numerics are
// pointers so a missing field is distinguishable from a zero value.
type evaluateRequest struct {
	TemperatureC *float64 `json:"temperature_c" validate:"required"`
	HumidityPct  *float64 `json:"humidity_pct" validate:"required"`
	Weather      string   `json:"weather" validate:"required"`
	Hour         *int     `json:"hour" validate:"required"`
	LocationType string   `json:"location_type" validate:"required"`

	// HasClimateControl defaults to true when omitted: most indoor venues
	// are climate controlled, and the pessimistic default avoids
	// overstating demand.
	HasClimateControl   *bool `json:"has_climate_control"`
	ArrivedFromOutdoors bool  `json:"arrived_from_outdoors"`

	LocationName string `json:"location_name"`

	// Dispatch runs the evaluation through the alert pipeline as well.
	Dispatch bool `json:"dispatch"`
}

// evaluateResponse is the POST /v1/evaluate payload.
type evaluateResponse struct {
	Evaluation *types.Evaluation  `json:"evaluation"`
	Alert      *types.AlertRecord `json:"alert,omitempty"`
}

// handleEvaluate scores one observation and optionally feeds it to the
// alert dispatcher.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		Error(w, r, err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		Error(w, r, types.NewAppError(types.ErrCodeValidationMissingField,
			"missing or invalid required fields: "+err.Error(), err))
		return
	}

	hasCC := true
	if req.HasClimateControl != nil {
		hasCC = *req.HasClimateControl
	}

	obs := types.Observation{
		TemperatureC:        *req.TemperatureC,
		HumidityPct:         *req.HumidityPct,
		Weather:             types.WeatherCondition(req.Weather),
		Hour:                *req.Hour,
		LocationType:        types.LocationType(req.LocationType),
		HasClimateControl:   hasCC,
		ArrivedFromOutdoors: req.ArrivedFromOutdoors,
		Timestamp:           s.clock.Now(),
		LocationName:        req.LocationName,
	}

	eval, err := s.engine.Evaluate(obs)
	if err != nil {
		Error(w, r, err)
		return
	}

	resp := evaluateResponse{Evaluation: eval}
	if req.Dispatch && s.dispatcher != nil {
		rec, err := s.dispatcher.Dispatch(r.Context(), eval)
		if err != nil {
			// The record is committed even when sink delivery fails.
			Error(w, r, err)
			return
		}
		resp.Alert = rec
	}

	JSON(w, r, http.StatusOK, APIResponse{Data: resp})
}

// alertsResponse is the GET /v1/alerts payload.
type alertsResponse struct {
	Alerts []types.AlertRecord `json:"alerts"`
	Count  int                 `json:"count"`
}

// handleListAlerts returns the dispatcher's alert history, newest first.
func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	if s.dispatcher == nil {
		JSON(w, r, http.StatusOK, APIResponse{Data: alertsResponse{Alerts: []types.AlertRecord{}}})
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidBody,
				"limit must be a positive integer", err))
			return
		}
		limit = n
	}

	history := s.dispatcher.History()
	// Newest first.
	out := make([]types.AlertRecord, 0, limit)
	for i := len(history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, history[i])
	}

	JSON(w, r, http.StatusOK, APIResponse{Data: alertsResponse{Alerts: out, Count: len(out)}})
}

// healthResponse is the GET /health payload.
type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Time    string `json:"time"`
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusOK, healthResponse{
		Status:  "ok",
		Service: "sipwatch",
		Time:    s.clock.Now().UTC().Format("2006-01-02T15:04:05Z07:00"),
	})
}
