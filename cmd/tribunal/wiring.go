package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/candor-ai/go-tribunal/infrastructure/evaluators"
	"github.com/candor-ai/go-tribunal/infrastructure/generation"
	"github.com/candor-ai/go-tribunal/infrastructure/llm"
	"github.com/candor-ai/go-tribunal/infrastructure/metrics"
	"github.com/candor-ai/go-tribunal/infrastructure/storage/memory"
	"github.com/candor-ai/go-tribunal/infrastructure/storage/postgres"
	"github.com/candor-ai/go-tribunal/internal/application"
	"github.com/candor-ai/go-tribunal/internal/ports"
)

// runtime holds everything a command needs after wiring.
type runtime struct {
	cfg    *application.Config
	engine *application.Engine
	store  ports.SessionStore
	close  func()
}

// buildRuntime loads configuration and assembles the full pipeline: one
// client per referenced model, the evaluator pool, the collector, the
// generator, storage, and the engine.
func buildRuntime(ctx context.Context, withMetrics bool) (*runtime, error) {
	cfg, err := application.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	var collector ports.MetricsCollector
	if withMetrics {
		collector = metrics.NewPrometheusCollector()
	}

	clients := newClientCache(cfg, collector)

	pool := make([]ports.Evaluator, 0, len(cfg.Evaluators))
	for _, seat := range cfg.Evaluators {
		client, err := clients.get(seat.Model)
		if err != nil {
			return nil, fmt.Errorf("evaluator %s: %w", seat.ID, err)
		}
		ev, err := evaluators.New(evaluators.Config{
			ID:          seat.ID,
			Role:        seat.Role,
			Temperature: seat.Temperature,
		}, client)
		if err != nil {
			return nil, err
		}
		pool = append(pool, ev)
	}

	critique, err := application.NewCritiqueCollector(pool, cfg.Collector, collector, slog.Default())
	if err != nil {
		return nil, err
	}

	generatorClient, err := clients.get(cfg.LLM.DefaultModel)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	generator, err := generation.NewLLMGenerator(generatorClient)
	if err != nil {
		return nil, err
	}

	var store ports.SessionStore
	closeStore := func() {}
	if cfg.Storage.DSN != "" {
		pg, err := postgres.Open(ctx, cfg.Storage.DSN, cfg.Storage.MaxOpenConns)
		if err != nil {
			return nil, err
		}
		store = pg
		closeStore = func() { _ = pg.Close() }
	} else {
		store = memory.NewSessionStore()
	}

	engine, err := application.NewEngine(generator, critique, store, cfg.Engine, slog.Default())
	if err != nil {
		closeStore()
		return nil, err
	}

	return &runtime{cfg: cfg, engine: engine, store: store, close: closeStore}, nil
}

// clientCache builds one llm.Client per distinct "provider/model" reference
// so evaluators sharing a model share its rate limiter.
type clientCache struct {
	cfg       *application.Config
	collector ports.MetricsCollector
	clients   map[string]*llm.Client
}

func newClientCache(cfg *application.Config, collector ports.MetricsCollector) *clientCache {
	return &clientCache{
		cfg:       cfg,
		collector: collector,
		clients:   make(map[string]*llm.Client),
	}
}

// get returns the client for a "provider/model" reference, falling back to
// the configured default model when ref is empty.
func (c *clientCache) get(ref string) (*llm.Client, error) {
	if ref == "" {
		ref = c.cfg.LLM.DefaultModel
	}
	if client, ok := c.clients[ref]; ok {
		return client, nil
	}

	provider, model, ok := strings.Cut(ref, "/")
	if !ok {
		return nil, fmt.Errorf("model reference %q must be provider/model", ref)
	}
	providerCfg, ok := c.cfg.LLM.Providers[provider]
	if !ok {
		return nil, fmt.Errorf("provider %q is not configured", provider)
	}

	middleware := []llm.Middleware{
		llm.TimeoutMiddleware(providerCfg.Timeout),
		llm.RetryMiddleware(providerCfg.MaxRetries, 500*time.Millisecond, 10*time.Second),
	}
	if providerCfg.RequestsPerMinute > 0 {
		perSecond := rate.Limit(float64(providerCfg.RequestsPerMinute) / 60.0)
		middleware = append(middleware, llm.RateLimitMiddleware(perSecond, providerCfg.RequestsPerMinute))
	}
	if c.collector != nil {
		middleware = append(middleware, llm.MetricsMiddleware(c.collector))
	}
	middleware = append(middleware, llm.TracingMiddleware())

	client, err := llm.NewClient(provider, llm.ClientConfig{
		APIKey:     providerCfg.APIKey,
		Model:      model,
		BaseURL:    providerCfg.BaseURL,
		Timeout:    providerCfg.Timeout,
		Middleware: middleware,
	})
	if err != nil {
		return nil, err
	}
	c.clients[ref] = client
	return client, nil
}
