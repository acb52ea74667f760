package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cryptopulse/cryptopulse/internal/credential"
	"github.com/cryptopulse/cryptopulse/internal/gateway"
)

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an ErrorBody.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeMissingCredential = "MISSING_CREDENTIAL"
	ErrCodeUpstreamThrottled = "UPSTREAM_THROTTLED"
	ErrCodeUpstreamFailure   = "UPSTREAM_FAILURE"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeRateLimited       = "RATE_LIMITED"
)

// respondError sends an error envelope.
func respondError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// mapServiceError maps domain errors onto HTTP status codes. Only the
// surfaced errors arrive here; swallowed failures already became
// fallback values in the service layer.
func mapServiceError(err error) (int, string, string) {
	if errors.Is(err, credential.ErrMissing) {
		return http.StatusUnauthorized, ErrCodeMissingCredential, "no API credential configured"
	}
	var te *gateway.TransportError
	if errors.As(err, &te) {
		if te.RateLimited() {
			return http.StatusTooManyRequests, ErrCodeUpstreamThrottled, "generation endpoint throttled the request"
		}
		return http.StatusBadGateway, ErrCodeUpstreamFailure, "generation endpoint unavailable"
	}
	var ce *gateway.CoercionError
	if errors.As(err, &ce) {
		return http.StatusBadGateway, ErrCodeUpstreamFailure, "generation endpoint returned an unusable response"
	}
	return http.StatusInternalServerError, ErrCodeInternalError, "internal error"
}
