// Package api is the HTTP surface: a chi router exposing observation
// evaluation, alert history, and health endpoints with a uniform JSON
// envelope.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"sipwatch/internal/types"
)

// maxRequestBodySize is the maximum allowed size of a request body (1 MB).
const maxRequestBodySize = 1 << 20

// APIResponse is the standard envelope for successful responses.
type APIResponse struct {
	Data any `json:"data,omitempty"`
}

// APIErrorResponse is the standard envelope for error responses.
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the structured error information returned to clients.
type ErrorDetail struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id"`
}

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fallback := APIErrorResponse{
			Error: ErrorDetail{
				Code:      string(types.ErrCodeInternalUnexpected),
				Message:   "failed to marshal response",
				RequestID: types.GetRequestID(r.Context()),
			},
		}
		_ = json.NewEncoder(w).Encode(fallback)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Error writes an error response. AppErrors map to their HTTP status with
// their code and message; generic errors become an opaque 500 so internal
// details never leak to clients.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	requestID := types.GetRequestID(r.Context())

	var appErr *types.AppError
	if errors.As(err, &appErr) {
		JSON(w, r, appErr.HTTPStatus(), APIErrorResponse{
			Error: ErrorDetail{
				Code:      string(appErr.Code),
				Message:   appErr.Message,
				Details:   appErr.Details,
				RequestID: requestID,
			},
		})
		return
	}

	JSON(w, r, http.StatusInternalServerError, APIErrorResponse{
		Error: ErrorDetail{
			Code:      string(types.ErrCodeInternalUnexpected),
			Message:   "an unexpected error occurred",
			RequestID: requestID,
		},
	})
}

// DecodeJSON reads the request body into dst, enforcing a 1 MB limit and
// rejecting unknown fields, empty bodies, and trailing JSON values.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return mapDecodeError(err)
	}
	if dec.More() {
		return types.NewAppError(types.ErrCodeValidationInvalidBody,
			"request body must contain a single JSON object", nil)
	}
	return nil
}

// mapDecodeError translates a json.Decoder error into a structured AppError.
func mapDecodeError(err error) *types.AppError {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return types.NewAppError(types.ErrCodeValidationInvalidBody,
			"request body must not exceed 1MB", err)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return types.NewAppError(types.ErrCodeValidationInvalidBody,
			"malformed JSON in request body", err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		appErr := types.NewAppError(types.ErrCodeValidationInvalidBody,
			"invalid value for field", err)
		appErr.Details = map[string]any{
			"field":    typeErr.Field,
			"expected": typeErr.Type.String(),
		}
		return appErr
	}

	if strings.HasPrefix(err.Error(), "json: unknown field") {
		return types.NewAppError(types.ErrCodeValidationInvalidBody,
			"unknown field in request body: "+strings.TrimPrefix(err.Error(), "json: unknown field "), err)
	}

	return types.NewAppError(types.ErrCodeValidationInvalidBody,
		"request body is empty or malformed", err)
}
