package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicDefaultModel is used when no model is configured.
const AnthropicDefaultModel = "claude-sonnet-4-20250514"

func init() {
	RegisterProviderFactory("anthropic", newAnthropicProvider)
}

// anthropicProvider adapts Anthropic's Messages API to CoreLLM.
type anthropicProvider struct {
	client anthropic.Client
	model  string
}

func newAnthropicProvider(cfg ClientConfig) (CoreLLM, error) {
	if cfg.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}
	model := cfg.Model
	if model == "" {
		model = AnthropicDefaultModel
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}

	return &anthropicProvider{
		client: anthropic.NewClient(reqOpts...),
		model:  model,
	}, nil
}

func (p *anthropicProvider) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	options := parseOptions(opts, p.model)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(options.model),
		MaxTokens: int64(options.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if options.temperature != nil {
		// Anthropic accepts temperature in [0, 1].
		params.Temperature = anthropic.Float(clamp(*options.temperature, 0.0, 1.0))
	}
	if options.system != "" {
		params.System = []anthropic.TextBlockParam{{Text: options.system}}
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", 0, 0, p.wrapError(ctx, err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(tb.Text)
		}
	}
	if text.Len() == 0 {
		return "", 0, 0, ErrEmptyResponse
	}

	return text.String(), int(message.Usage.InputTokens), int(message.Usage.OutputTokens), nil
}

func (p *anthropicProvider) GetModel() string { return p.model }

func (p *anthropicProvider) wrapError(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return classifyContext("anthropic", err)
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return classifyHTTP("anthropic", apiErr.StatusCode, "request failed", err)
	}
	return &ProviderError{Provider: "anthropic", Message: "request failed", Cause: err}
}
