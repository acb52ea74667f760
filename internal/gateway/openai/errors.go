package openai

import (
	"errors"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/cryptopulse/cryptopulse/internal/gateway"
)

// mapAPIError translates SDK errors into the gateway taxonomy so the
// fallback policy treats both backends identically.
func mapAPIError(op string, err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return &gateway.TransportError{Op: op, StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return &gateway.TransportError{Op: op, StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	return &gateway.TransportError{Op: op, Err: err}
}
