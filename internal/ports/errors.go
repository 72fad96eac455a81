package ports

import (
	"errors"
	"fmt"
)

// Transport-level failures surfaced by LLM clients and evaluators.
var (
	// ErrTimeout indicates the call exceeded its deadline.
	ErrTimeout = errors.New("operation timed out")

	// ErrRateLimited indicates the provider rejected the call for quota.
	ErrRateLimited = errors.New("rate limited")

	// ErrProviderUnavailable indicates a transient provider-side failure.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrMalformedResponse indicates the model's response could not be
	// parsed into the expected structure.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrNotFound indicates a requested record does not exist in storage.
	ErrNotFound = errors.New("not found")
)

// EvaluatorError wraps a failure from a single evaluator with enough context
// to log and report it. The critique collector absorbs these rather than
// propagating them, so sibling evaluators keep running.
type EvaluatorError struct {
	EvaluatorID string
	Role        string
	Err         error
}

func (e *EvaluatorError) Error() string {
	return fmt.Sprintf("evaluator %s (%s): %v", e.EvaluatorID, e.Role, e.Err)
}

func (e *EvaluatorError) Unwrap() error { return e.Err }

// Timeout reports whether the underlying failure was a deadline expiry.
func (e *EvaluatorError) Timeout() bool { return errors.Is(e.Err, ErrTimeout) }
