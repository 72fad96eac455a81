package llm

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// retryLLM retries transient failures with jittered exponential backoff.
// Non-retryable failures (authentication, bad requests) fail immediately.
type retryLLM struct {
	next       CoreLLM
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// RetryMiddleware retries up to maxRetries times on retryable provider
// errors, backing off exponentially from baseDelay up to maxDelay.
func RetryMiddleware(maxRetries int, baseDelay, maxDelay time.Duration) Middleware {
	return func(next CoreLLM) CoreLLM {
		return &retryLLM{
			next:       next,
			maxRetries: maxRetries,
			baseDelay:  baseDelay,
			maxDelay:   maxDelay,
		}
	}
}

func (r *retryLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		response, tokensIn, tokensOut, err := r.next.DoRequest(ctx, prompt, opts)
		if err == nil {
			return response, tokensIn, tokensOut, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(err) || attempt == r.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return "", 0, 0, ctx.Err()
		case <-time.After(r.delay(attempt)):
		}
	}

	return "", 0, 0, fmt.Errorf("request failed after %d attempts: %w", r.maxRetries+1, lastErr)
}

func (r *retryLLM) delay(attempt int) time.Duration {
	if attempt > 30 {
		attempt = 30
	}
	d := time.Duration(float64(r.baseDelay) * float64(int64(1)<<uint(attempt)))
	// Jitter of up to ±25% spreads retries from concurrent evaluators.
	jitter := time.Duration(rand.Float64() * float64(d) * 0.5)
	d = d + jitter - d/4
	if d > r.maxDelay {
		d = r.maxDelay
	}
	return d
}

func retryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable()
	}
	return false
}

func (r *retryLLM) GetModel() string { return r.next.GetModel() }
