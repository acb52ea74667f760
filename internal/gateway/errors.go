package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnsupported marks an operation the active backend cannot perform
// (for example image generation on a text-only provider).
var ErrUnsupported = errors.New("gateway: operation not supported by backend")

// TransportError covers network, authorization and rate-limit failures
// when talking to the generation endpoint.
type TransportError struct {
	Op         string
	StatusCode int // 0 when the request never reached the endpoint
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway: %s: upstream status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("gateway: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Auth reports whether the failure was an authorization rejection.
// Auth failures must never be retried.
func (e *TransportError) Auth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// RateLimited reports whether the endpoint throttled the call, so
// callers can back off instead of treating it as a generic outage.
func (e *TransportError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// Retryable reports whether a retry could plausibly succeed.
func (e *TransportError) Retryable() bool {
	if e.Auth() {
		return false
	}
	return e.StatusCode == 0 || e.StatusCode >= http.StatusInternalServerError || e.RateLimited()
}

// CoercionError means the endpoint answered but the payload could not
// be shaped into the expected entity. Operations treat it exactly like
// a transport failure.
type CoercionError struct {
	Op  string
	Raw string
	Err error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("gateway: %s: coerce response: %v", e.Op, e.Err)
}

func (e *CoercionError) Unwrap() error { return e.Err }

// IsFailure reports whether err is a transport or coercion failure,
// the two classes the fallback policy converts into default values.
func IsFailure(err error) bool {
	var te *TransportError
	var ce *CoercionError
	return errors.As(err, &te) || errors.As(err, &ce)
}
