package types

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Error code constants. Handlers and services use these instead of
// hardcoded strings so the HTTP mapping stays in one place.
const (
	// Validation (400)
	ErrCodeValidationInvalidTemperature ErrorCode = "validation_invalid_temperature"
	ErrCodeValidationInvalidHumidity    ErrorCode = "validation_invalid_humidity"
	ErrCodeValidationInvalidHour        ErrorCode = "validation_invalid_hour"
	ErrCodeValidationMissingField       ErrorCode = "validation_missing_required_field"
	ErrCodeValidationInvalidModel       ErrorCode = "validation_invalid_scoring_model"
	ErrCodeValidationInvalidBody        ErrorCode = "validation_invalid_request_body"

	// Not Found (404)
	ErrCodeNotFoundLocation ErrorCode = "not_found_location"

	// Sink delivery (502) -- reported, never retried by the dispatcher.
	ErrCodeSinkDeliveryFailed ErrorCode = "sink_delivery_failed"

	// Internal/Upstream (500/502)
	ErrCodeInternalDB          ErrorCode = "internal_database_error"
	ErrCodeInternalUnexpected  ErrorCode = "internal_unexpected_error"
	ErrCodeUpstreamWeather     ErrorCode = "upstream_weather_unavailable"
	ErrCodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
	ErrCodeUpstreamRateLimited ErrorCode = "upstream_rate_limited"
)

// HTTPStatus maps an ErrorCode to its corresponding HTTP status code.
// Returns 500 for unrecognized codes as a safe default.
func (c ErrorCode) HTTPStatus() int {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "validation_"):
		return http.StatusBadRequest
	case strings.HasPrefix(s, "not_found_"):
		return http.StatusNotFound
	case s == string(ErrCodeSinkDeliveryFailed):
		return http.StatusBadGateway
	case strings.HasPrefix(s, "upstream_"):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the standard application error type. All domain and handler
// errors are expressed as AppError to enable consistent formatting, HTTP
// status mapping, and error chain support.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code corresponding to this error's code.
func (e *AppError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// NewAppError creates a new AppError with the given code, message, and
// optional underlying error.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
