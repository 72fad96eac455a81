package ports

import (
	"context"
	"time"

	"github.com/candor-ai/go-tribunal/internal/domain"
)

// LLMClient abstracts a chat-completion backend. Implementations wrap a
// provider SDK behind a middleware chain (timeout, retry, rate limiting,
// metrics, tracing) so callers see one uniform surface.
type LLMClient interface {
	// Complete sends the prompt and returns the model's text response.
	// Recognized option keys are "temperature", "max_tokens", and "system";
	// providers ignore keys they do not support.
	Complete(ctx context.Context, prompt string, options map[string]any) (string, error)

	// EstimateTokens approximates the token count of the text for budget
	// and logging purposes. Estimates need not match provider tokenizers.
	EstimateTokens(text string) (int, error)

	// GetModel returns the provider/model identifier, e.g. "openai/gpt-4o".
	GetModel() string
}

// SessionStore persists session records.
type SessionStore interface {
	// Save upserts the record keyed by its session id.
	Save(ctx context.Context, record domain.SessionRecord) error

	// Get retrieves a record by session id.
	Get(ctx context.Context, id string) (domain.SessionRecord, error)

	// List returns the most recent records, newest first, up to limit.
	List(ctx context.Context, limit int) ([]domain.SessionRecord, error)
}

// MetricsCollector records operational measurements. A no-op implementation
// is used when metrics are disabled.
type MetricsCollector interface {
	RecordLatency(operation string, d time.Duration, labels map[string]string)
	IncrementCounter(name string, labels map[string]string)
	SetGauge(name string, value float64, labels map[string]string)
	ObserveHistogram(name string, value float64, labels map[string]string)
}
