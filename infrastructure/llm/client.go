// Package llm wraps chat-completion providers (OpenAI, Anthropic, Google)
// behind one client surface with a composable middleware chain. Evaluators
// and generators depend on ports.LLMClient; everything provider-specific
// stays inside this package.
//
// A client is assembled from a provider core and an ordered middleware list:
//
//	client, err := llm.NewClient("anthropic", llm.ClientConfig{
//	    APIKey: os.Getenv("ANTHROPIC_API_KEY"),
//	    Model:  "claude-sonnet-4-20250514",
//	    Middleware: []llm.Middleware{
//	        llm.TimeoutMiddleware(60 * time.Second),
//	        llm.RetryMiddleware(3, 500*time.Millisecond, 10*time.Second),
//	        llm.RateLimitMiddleware(rate.Every(time.Second), 4),
//	    },
//	})
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/candor-ai/go-tribunal/internal/ports"
)

// CoreLLM is the minimal provider contract the middleware chain wraps.
// Providers return the response text plus input and output token counts.
type CoreLLM interface {
	// DoRequest sends the prompt with provider-specific option handling.
	// Recognized option keys are "temperature", "max_tokens", "system",
	// and "model"; unknown keys are ignored.
	DoRequest(ctx context.Context, prompt string, opts map[string]any) (response string, tokensIn, tokensOut int, err error)

	// GetModel returns the configured model name.
	GetModel() string
}

// Middleware wraps a CoreLLM with cross-cutting behavior. Middlewares are
// applied in reverse order so the first listed is outermost.
type Middleware func(CoreLLM) CoreLLM

// TokenEstimator approximates token counts without calling a provider.
type TokenEstimator interface {
	EstimateTokens(text string) int
}

// ClientConfig configures one provider-backed client.
type ClientConfig struct {
	// APIKey authenticates with the provider.
	APIKey string

	// Model names the model to call.
	Model string

	// BaseURL overrides the provider endpoint; empty means the default.
	// Supported by the OpenAI provider for compatible backends.
	BaseURL string

	// Timeout bounds each underlying HTTP request. Zero means the
	// provider SDK default.
	Timeout time.Duration

	// TokenEstimator overrides the default character-heuristic estimator.
	TokenEstimator TokenEstimator

	// Middleware is applied in order, first entry outermost.
	Middleware []Middleware
}

// Client implements ports.LLMClient over a middleware-wrapped provider core.
type Client struct {
	core      CoreLLM
	estimator TokenEstimator
	provider  string
}

var _ ports.LLMClient = (*Client)(nil)

// NewClient assembles a client for the named provider ("openai",
// "anthropic", or "google").
func NewClient(provider string, cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: API key is required", provider)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%s: model is required", provider)
	}

	factory, ok := providerFactories[provider]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
	core, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating %s provider: %w", provider, err)
	}

	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		core = cfg.Middleware[i](core)
	}

	estimator := cfg.TokenEstimator
	if estimator == nil {
		estimator = CharTokenEstimator{}
	}

	return &Client{core: core, estimator: estimator, provider: provider}, nil
}

// Complete sends the prompt through the middleware chain and returns the
// response text, discarding token usage.
func (c *Client) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	response, _, _, err := c.core.DoRequest(ctx, prompt, options)
	return response, err
}

// CompleteWithUsage returns the response together with input and output
// token counts for cost accounting.
func (c *Client) CompleteWithUsage(ctx context.Context, prompt string, options map[string]any) (string, int, int, error) {
	return c.core.DoRequest(ctx, prompt, options)
}

// EstimateTokens approximates the token count of text.
func (c *Client) EstimateTokens(text string) (int, error) {
	return c.estimator.EstimateTokens(text), nil
}

// GetModel returns "provider/model" for the wrapped core.
func (c *Client) GetModel() string {
	return c.provider + "/" + c.core.GetModel()
}

// CharTokenEstimator estimates roughly four characters per token, adequate
// for budgeting and logging on English text.
type CharTokenEstimator struct{}

func (CharTokenEstimator) EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// ProviderFactory builds a provider core from client configuration.
type ProviderFactory func(ClientConfig) (CoreLLM, error)

var providerFactories = map[string]ProviderFactory{}

// RegisterProviderFactory registers a provider under a name. Called from
// provider init functions; also usable for test doubles.
func RegisterProviderFactory(name string, factory ProviderFactory) {
	providerFactories[name] = factory
}
