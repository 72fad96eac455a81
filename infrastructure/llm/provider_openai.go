package llm

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIDefaultModel is used when no model is configured.
const OpenAIDefaultModel = "gpt-4o-mini"

func init() {
	RegisterProviderFactory("openai", newOpenAIProvider)
}

// openAIProvider adapts OpenAI's chat-completion API to CoreLLM. A BaseURL
// override makes it serve any OpenAI-compatible backend.
type openAIProvider struct {
	client *openai.Client
	model  string
}

func newOpenAIProvider(cfg ClientConfig) (CoreLLM, error) {
	if cfg.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}
	model := cfg.Model
	if model == "" {
		model = OpenAIDefaultModel
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &openAIProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

func (p *openAIProvider) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	options := parseOptions(opts, p.model)

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if options.system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: options.system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	req := openai.ChatCompletionRequest{
		Model:     options.model,
		Messages:  messages,
		MaxTokens: options.maxTokens,
	}
	if options.temperature != nil {
		req.Temperature = float32(clamp(*options.temperature, 0.0, 2.0))
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", 0, 0, p.wrapError(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return "", 0, 0, ErrEmptyResponse
	}

	content := resp.Choices[0].Message.Content
	return content, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, nil
}

func (p *openAIProvider) GetModel() string { return p.model }

func (p *openAIProvider) wrapError(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return classifyContext("openai", err)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = "request failed"
		}
		return classifyHTTP("openai", apiErr.HTTPStatusCode, message, err)
	}
	return &ProviderError{Provider: "openai", Message: "request failed", Cause: err}
}
