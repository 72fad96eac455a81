package llm

import (
	"context"
	"strconv"
	"time"

	"github.com/candor-ai/go-tribunal/internal/ports"
)

// metricsLLM records latency, token usage, and failure counts for every
// request through the configured collector.
type metricsLLM struct {
	next      CoreLLM
	collector ports.MetricsCollector
}

// MetricsMiddleware instruments requests with the given collector. A nil
// collector makes the middleware a no-op passthrough.
func MetricsMiddleware(collector ports.MetricsCollector) Middleware {
	return func(next CoreLLM) CoreLLM {
		if collector == nil {
			return next
		}
		return &metricsLLM{next: next, collector: collector}
	}
}

func (m *metricsLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	start := time.Now()
	response, tokensIn, tokensOut, err := m.next.DoRequest(ctx, prompt, opts)

	labels := map[string]string{
		"model":   m.next.GetModel(),
		"success": strconv.FormatBool(err == nil),
	}
	m.collector.RecordLatency("llm_request", time.Since(start), labels)
	if err != nil {
		m.collector.IncrementCounter("llm_request_failures_total", labels)
		return response, tokensIn, tokensOut, err
	}
	m.collector.ObserveHistogram("llm_tokens_in", float64(tokensIn), labels)
	m.collector.ObserveHistogram("llm_tokens_out", float64(tokensOut), labels)
	return response, tokensIn, tokensOut, nil
}

func (m *metricsLLM) GetModel() string { return m.next.GetModel() }
