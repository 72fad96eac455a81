package llm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/candor-ai/go-tribunal/infrastructure/llm"

// tracingLLM wraps requests in OpenTelemetry spans carrying model and token
// attributes.
type tracingLLM struct {
	next   CoreLLM
	tracer trace.Tracer
}

// TracingMiddleware records one span per request using the global tracer
// provider. Without a configured provider the spans are no-ops.
func TracingMiddleware() Middleware {
	return func(next CoreLLM) CoreLLM {
		return &tracingLLM{
			next:   next,
			tracer: otel.Tracer(tracerName),
		}
	}
}

func (t *tracingLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	ctx, span := t.tracer.Start(ctx, "llm.complete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("llm.model", t.next.GetModel())))
	defer span.End()

	response, tokensIn, tokensOut, err := t.next.DoRequest(ctx, prompt, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return response, tokensIn, tokensOut, err
	}
	span.SetAttributes(
		attribute.Int("llm.tokens_in", tokensIn),
		attribute.Int("llm.tokens_out", tokensOut),
	)
	return response, tokensIn, tokensOut, nil
}

func (t *tracingLLM) GetModel() string { return t.next.GetModel() }
