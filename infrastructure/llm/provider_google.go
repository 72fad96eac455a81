package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GoogleDefaultModel is used when no model is configured.
const GoogleDefaultModel = "gemini-2.0-flash"

func init() {
	RegisterProviderFactory("google", newGoogleProvider)
}

// googleProvider adapts Google's Gemini API to CoreLLM.
type googleProvider struct {
	client *genai.Client
	model  string
}

func newGoogleProvider(cfg ClientConfig) (CoreLLM, error) {
	if cfg.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}
	model := cfg.Model
	if model == "" {
		model = GoogleDefaultModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &googleProvider{client: client, model: model}, nil
}

func (p *googleProvider) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	options := parseOptions(opts, p.model)

	// Gemini has no separate system role; fold the system prompt into the
	// user content.
	finalPrompt := prompt
	if options.system != "" {
		finalPrompt = fmt.Sprintf("System: %s\n\nUser: %s", options.system, prompt)
	}
	contents := []*genai.Content{genai.NewContentFromText(finalPrompt, genai.RoleUser)}

	genCfg := &genai.GenerateContentConfig{}
	if options.temperature != nil {
		genCfg.Temperature = genai.Ptr(float32(clamp(*options.temperature, 0.0, 2.0)))
	}
	if options.maxTokens > 0 {
		genCfg.MaxOutputTokens = int32(options.maxTokens)
	}

	resp, err := p.client.Models.GenerateContent(ctx, options.model, contents, genCfg)
	if err != nil {
		return "", 0, 0, p.wrapError(ctx, err)
	}

	content := resp.Text()
	if content == "" {
		return "", 0, 0, ErrEmptyResponse
	}

	var tokensIn, tokensOut int
	if resp.UsageMetadata != nil {
		tokensIn = int(resp.UsageMetadata.PromptTokenCount)
		tokensOut = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return content, tokensIn, tokensOut, nil
}

func (p *googleProvider) GetModel() string { return p.model }

func (p *googleProvider) wrapError(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return classifyContext("google", err)
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" && len(apiErr.Errors) > 0 {
			message = apiErr.Errors[0].Message
		}
		return classifyHTTP("google", apiErr.Code, message, err)
	}
	return &ProviderError{Provider: "google", Message: "request failed", Cause: err}
}
