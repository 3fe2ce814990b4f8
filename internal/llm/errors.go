package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotConfigured is wrapped in ErrProviderUnavailable when a feature asks
// for a model but no provider was set up.
var ErrNotConfigured = errors.New("no LLM provider configured")

// ErrRateLimit is returned when the provider answered 429. RetryAfter is
// zero when the provider did not say how long to wait.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse is returned when the model's output is not JSON or
// does not match the request schema. Content holds what was received.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid model output: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers network failures, 5xx answers and a
// missing provider.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "LLM provider unavailable"
	}
	return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded is returned when structured output was cut off by
// the request's MaxTokens.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "model output truncated at the token limit"
}

// Reason gives a short, user-facing explanation for why a feature fell back
// to its built-in behavior.
func Reason(err error) string {
	var (
		rl      *ErrRateLimit
		invalid *ErrInvalidResponse
		trunc   *ErrMaxTokensExceeded
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConfigured):
		return "no LLM provider configured"
	case errors.Is(err, context.DeadlineExceeded):
		return "the model took too long to answer"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.As(err, &rl):
		return "the provider is rate limiting requests"
	case errors.As(err, &invalid), errors.As(err, &trunc):
		return "the model returned an unusable answer"
	default:
		return "the provider could not be reached"
	}
}
