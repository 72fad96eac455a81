package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/candor-ai/go-tribunal/internal/ports"
)

// Errors shared by all providers.
var (
	// ErrEmptyAPIKey indicates a provider was configured without a key.
	ErrEmptyAPIKey = errors.New("API key cannot be empty")

	// ErrEmptyResponse indicates the provider returned no usable content.
	ErrEmptyResponse = errors.New("empty response from provider")
)

// ProviderError normalizes provider-specific failures. It wraps one of the
// ports transport sentinels so callers can classify with errors.Is without
// importing provider SDKs.
type ProviderError struct {
	// Provider names the backend that failed.
	Provider string

	// StatusCode is the HTTP status from the provider, when applicable.
	StatusCode int

	// Message is the provider's error description.
	Message string

	// Sentinel is the ports-level classification this error wraps, or nil
	// for unclassified failures.
	Sentinel error

	// Cause is the original SDK error.
	Cause error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s error", e.Provider)
	if e.StatusCode > 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap exposes both the sentinel classification and the SDK cause to
// errors.Is and errors.As.
func (e *ProviderError) Unwrap() []error {
	var out []error
	if e.Sentinel != nil {
		out = append(out, e.Sentinel)
	}
	if e.Cause != nil {
		out = append(out, e.Cause)
	}
	return out
}

// Retryable reports whether the failure is transient.
func (e *ProviderError) Retryable() bool {
	return errors.Is(e.Sentinel, ports.ErrRateLimited) ||
		errors.Is(e.Sentinel, ports.ErrProviderUnavailable) ||
		errors.Is(e.Sentinel, ports.ErrTimeout)
}

// classifyHTTP maps an HTTP status to a normalized ProviderError.
func classifyHTTP(provider string, status int, message string, cause error) *ProviderError {
	var sentinel error
	switch {
	case status == 429:
		sentinel = ports.ErrRateLimited
	case status >= 500:
		sentinel = ports.ErrProviderUnavailable
	}
	return &ProviderError{
		Provider:   provider,
		StatusCode: status,
		Message:    message,
		Sentinel:   sentinel,
		Cause:      cause,
	}
}

// classifyContext maps a context failure to a normalized ProviderError.
// Cancellation passes through untouched so callers see ctx.Err directly.
func classifyContext(provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{
			Provider: provider,
			Message:  "request deadline exceeded",
			Sentinel: ports.ErrTimeout,
			Cause:    err,
		}
	}
	return err
}
