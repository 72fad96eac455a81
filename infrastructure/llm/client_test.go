package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candor-ai/go-tribunal/internal/ports"
)

// fakeCore is a scriptable CoreLLM for middleware and client tests.
type fakeCore struct {
	model    string
	response string
	errs     []error
	calls    atomic.Int64
	delay    time.Duration
}

func (f *fakeCore) DoRequest(ctx context.Context, _ string, _ map[string]any) (string, int, int, error) {
	n := f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", 0, 0, classifyContext("fake", ctx.Err())
		case <-time.After(f.delay):
		}
	}
	if int(n) <= len(f.errs) && f.errs[n-1] != nil {
		return "", 0, 0, f.errs[n-1]
	}
	return f.response, 10, 20, nil
}

func (f *fakeCore) GetModel() string { return f.model }

func registerFake(t *testing.T, core *fakeCore) string {
	t.Helper()
	name := "fake-" + t.Name()
	RegisterProviderFactory(name, func(ClientConfig) (CoreLLM, error) {
		return core, nil
	})
	return name
}

func TestNewClient_Validation(t *testing.T) {
	name := registerFake(t, &fakeCore{model: "m"})

	_, err := NewClient(name, ClientConfig{Model: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")

	_, err = NewClient(name, ClientConfig{APIKey: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model")

	_, err = NewClient("no-such-provider", ClientConfig{APIKey: "k", Model: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown LLM provider")
}

func TestClient_Complete(t *testing.T) {
	core := &fakeCore{model: "m", response: "hello"}
	name := registerFake(t, core)

	client, err := NewClient(name, ClientConfig{APIKey: "k", Model: "m"})
	require.NoError(t, err)

	response, err := client.Complete(context.Background(), "prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", response)
	assert.Equal(t, name+"/m", client.GetModel())

	tokens, err := client.EstimateTokens("twelve chars")
	require.NoError(t, err)
	assert.Equal(t, 3, tokens)
}

// Middlewares wrap in listed order: the first entry sees the request first.
func TestClient_MiddlewareOrder(t *testing.T) {
	core := &fakeCore{model: "m", response: "ok"}
	name := registerFake(t, core)

	var order []string
	tag := func(label string) Middleware {
		return func(next CoreLLM) CoreLLM {
			return coreFunc{fn: func(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
				order = append(order, label)
				return next.DoRequest(ctx, prompt, opts)
			}, model: next.GetModel}
		}
	}

	client, err := NewClient(name, ClientConfig{
		APIKey:     "k",
		Model:      "m",
		Middleware: []Middleware{tag("outer"), tag("inner")},
	})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "p", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

// coreFunc adapts a function to CoreLLM for tests.
type coreFunc struct {
	fn    func(context.Context, string, map[string]any) (string, int, int, error)
	model func() string
}

func (c coreFunc) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	return c.fn(ctx, prompt, opts)
}

func (c coreFunc) GetModel() string { return c.model() }

func TestRetryMiddleware(t *testing.T) {
	t.Run("retries transient failures", func(t *testing.T) {
		core := &fakeCore{model: "m", response: "ok", errs: []error{
			classifyHTTP("fake", 429, "slow down", errors.New("http 429")),
			classifyHTTP("fake", 503, "unavailable", errors.New("http 503")),
		}}
		wrapped := RetryMiddleware(3, time.Millisecond, 5*time.Millisecond)(core)

		response, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
		require.NoError(t, err)
		assert.Equal(t, "ok", response)
		assert.Equal(t, int64(3), core.calls.Load())
	})

	t.Run("does not retry permanent failures", func(t *testing.T) {
		core := &fakeCore{model: "m", errs: []error{
			classifyHTTP("fake", 401, "bad key", errors.New("http 401")),
		}}
		wrapped := RetryMiddleware(3, time.Millisecond, 5*time.Millisecond)(core)

		_, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
		require.Error(t, err)
		assert.Equal(t, int64(1), core.calls.Load())
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		transient := classifyHTTP("fake", 503, "down", errors.New("http 503"))
		core := &fakeCore{model: "m", errs: []error{transient, transient, transient}}
		wrapped := RetryMiddleware(2, time.Millisecond, 5*time.Millisecond)(core)

		_, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 3 attempts")
		assert.Equal(t, int64(3), core.calls.Load())
	})
}

func TestTimeoutMiddleware(t *testing.T) {
	core := &fakeCore{model: "m", response: "ok", delay: 200 * time.Millisecond}
	wrapped := TimeoutMiddleware(20 * time.Millisecond)(core)

	_, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrTimeout)
}

func TestRateLimitMiddleware_PassesThrough(t *testing.T) {
	core := &fakeCore{model: "m", response: "ok"}
	wrapped := RateLimitMiddleware(100, 1)(core)

	response, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", response)
}

// capturingCollector records every metrics call with its labels.
type capturingCollector struct {
	latencies  []map[string]string
	counters   []map[string]string
	histograms []map[string]string
}

func (c *capturingCollector) RecordLatency(_ string, _ time.Duration, labels map[string]string) {
	c.latencies = append(c.latencies, labels)
}

func (c *capturingCollector) IncrementCounter(_ string, labels map[string]string) {
	c.counters = append(c.counters, labels)
}

func (c *capturingCollector) SetGauge(string, float64, map[string]string) {}

func (c *capturingCollector) ObserveHistogram(_ string, _ float64, labels map[string]string) {
	c.histograms = append(c.histograms, labels)
}

func TestMetricsMiddleware_Labels(t *testing.T) {
	t.Run("success carries model and success labels", func(t *testing.T) {
		collector := &capturingCollector{}
		core := &fakeCore{model: "m", response: "ok"}
		wrapped := MetricsMiddleware(collector)(core)

		_, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
		require.NoError(t, err)

		require.Len(t, collector.latencies, 1)
		assert.Equal(t, "m", collector.latencies[0]["model"])
		assert.Equal(t, "true", collector.latencies[0]["success"])
		assert.Empty(t, collector.counters)
		require.Len(t, collector.histograms, 2)
		assert.Equal(t, "m", collector.histograms[0]["model"])
	})

	t.Run("failure increments counter with labels", func(t *testing.T) {
		collector := &capturingCollector{}
		core := &fakeCore{model: "m", errs: []error{
			classifyHTTP("fake", 500, "down", errors.New("http 500")),
		}}
		wrapped := MetricsMiddleware(collector)(core)

		_, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
		require.Error(t, err)

		require.Len(t, collector.counters, 1)
		assert.Equal(t, "m", collector.counters[0]["model"])
		assert.Equal(t, "false", collector.counters[0]["success"])
		require.Len(t, collector.latencies, 1)
		assert.Equal(t, "false", collector.latencies[0]["success"])
	})
}

func TestProviderError_Classification(t *testing.T) {
	tests := []struct {
		status    int
		sentinel  error
		retryable bool
	}{
		{status: 429, sentinel: ports.ErrRateLimited, retryable: true},
		{status: 500, sentinel: ports.ErrProviderUnavailable, retryable: true},
		{status: 503, sentinel: ports.ErrProviderUnavailable, retryable: true},
		{status: 401, sentinel: nil, retryable: false},
		{status: 400, sentinel: nil, retryable: false},
	}

	for _, tt := range tests {
		pe := classifyHTTP("fake", tt.status, "msg", errors.New("cause"))
		if tt.sentinel != nil {
			assert.ErrorIs(t, pe, tt.sentinel, tt.status)
		}
		assert.Equal(t, tt.retryable, pe.Retryable(), tt.status)
	}
}
