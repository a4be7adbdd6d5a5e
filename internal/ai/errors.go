package ai

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// AuthError is a 401/403 from the provider.
type AuthError struct{ *APIError }

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.APIError.Error())
}

// RateLimitError is a 429 and may carry the provider's Retry-After.
type RateLimitError struct {
	*APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: wait about %ds before retrying: %s", int(e.RetryAfter.Seconds()), e.APIError.Error())
	}
	return fmt.Sprintf("rate limited: %s", e.APIError.Error())
}

// ModelNotFoundError indicates the requested model is not available.
type ModelNotFoundError struct{ *APIError }

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model not found: %s", e.APIError.Error())
}

// BadRequestError is a 400 validation failure.
type BadRequestError struct{ *APIError }

func (e *BadRequestError) Error() string { return fmt.Sprintf("bad request: %s", e.APIError.Error()) }

// QuotaExceededError indicates billing/quota problems.
type QuotaExceededError struct{ *APIError }

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: %s", e.APIError.Error())
}

// ServerError is a 5xx from the provider.
type ServerError struct{ *APIError }

func (e *ServerError) Error() string { return fmt.Sprintf("provider error: %s", e.APIError.Error()) }

// UnreachableError means no connection could be made (e.g. local Ollama down).
type UnreachableError struct {
	Host string
	Err  error
}

func (e *UnreachableError) Error() string {
	if e == nil {
		return "unreachable"
	}
	if e.Host != "" {
		return fmt.Sprintf("endpoint unreachable at %s: %v", e.Host, e.Err)
	}
	return fmt.Sprintf("endpoint unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// FailureReason buckets err into a short label for logs and metrics.
func FailureReason(err error) string {
	var (
		authErr   *AuthError
		rateErr   *RateLimitError
		modelErr  *ModelNotFoundError
		badErr    *BadRequestError
		quotaErr  *QuotaExceededError
		serverErr *ServerError
		unreach   *UnreachableError
		apiErr    *APIError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrMissingAPIKey):
		return "missing_key"
	case errors.Is(err, ErrEmptyResponse):
		return "empty"
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &rateErr):
		return "rate_limit"
	case errors.As(err, &modelErr):
		return "model_not_found"
	case errors.As(err, &badErr):
		return "bad_request"
	case errors.As(err, &quotaErr):
		return "quota"
	case errors.As(err, &serverErr):
		return "server"
	case errors.As(err, &unreach):
		return "unreachable"
	case errors.As(err, &apiErr):
		return "api"
	}
	return "other"
}
