// Package ai talks to the generative text service and turns its replies into
// validated domain values. Callers decide what to do on failure; every error
// returned here wraps ErrServiceUnavailable or ErrMalformedResponse.
package ai

import (
	"context"
	"errors"
)

var (
	// ErrServiceUnavailable covers transport failures, timeouts and non-2xx replies.
	ErrServiceUnavailable = errors.New("ai service unavailable")
	// ErrMalformedResponse covers replies that are not JSON or do not match the schema.
	ErrMalformedResponse = errors.New("ai response malformed")
)

// TextGenerator produces text for a prompt. One call, no retries.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Category names the failure class of err for logs and metrics.
func Category(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	default:
		return "service_unavailable"
	}
}
