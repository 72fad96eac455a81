// Package application orchestrates the adjudication pipeline: concurrent
// critique collection across an evaluator pool, the generate-critique-decide
// loop with bounded revision, and problem-space exploration. It depends on
// the domain model and the ports contracts, never on infrastructure directly.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/candor-ai/go-tribunal/internal/domain"
	"github.com/candor-ai/go-tribunal/internal/ports"
)

// Collector defaults, overridable through CollectorConfig.
const (
	// DefaultEvaluatorTimeout bounds each evaluator call independently.
	DefaultEvaluatorTimeout = 60 * time.Second

	// DefaultMaxConcurrency caps simultaneous evaluator calls to avoid
	// overwhelming provider rate limits.
	DefaultMaxConcurrency = 8
)

// CollectorConfig tunes critique collection.
type CollectorConfig struct {
	// EvaluatorTimeout is the per-evaluator deadline. Each call gets its
	// own timeout; one slow evaluator cannot consume another's budget.
	EvaluatorTimeout time.Duration `yaml:"evaluator_timeout" json:"evaluator_timeout"`

	// MaxConcurrency caps simultaneous evaluator calls. Zero or negative
	// means DefaultMaxConcurrency.
	MaxConcurrency int `yaml:"max_concurrency" json:"max_concurrency"`
}

// CritiqueCollector fans a position out to every evaluator in its pool and
// joins the judgments. Failures are isolated per evaluator: an error or
// timeout in one never cancels the others, and the collector returns
// whatever judgments succeeded. Only total failure is an error.
type CritiqueCollector struct {
	pool    []ports.Evaluator
	cfg     CollectorConfig
	metrics ports.MetricsCollector
	logger  *slog.Logger

	mu sync.RWMutex
}

// NewCritiqueCollector builds a collector over the given pool. The pool must
// be non-empty and evaluator IDs must be unique; duplicate IDs would make
// judgment attribution ambiguous.
func NewCritiqueCollector(
	pool []ports.Evaluator,
	cfg CollectorConfig,
	metrics ports.MetricsCollector,
	logger *slog.Logger,
) (*CritiqueCollector, error) {
	if len(pool) == 0 {
		return nil, fmt.Errorf("evaluator pool must not be empty")
	}
	seen := make(map[string]struct{}, len(pool))
	for _, ev := range pool {
		if ev == nil {
			return nil, fmt.Errorf("evaluator pool contains a nil entry")
		}
		if _, dup := seen[ev.ID()]; dup {
			return nil, fmt.Errorf("duplicate evaluator id %q in pool", ev.ID())
		}
		seen[ev.ID()] = struct{}{}
	}
	if cfg.EvaluatorTimeout <= 0 {
		cfg.EvaluatorTimeout = DefaultEvaluatorTimeout
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultMaxConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	snapshot := make([]ports.Evaluator, len(pool))
	copy(snapshot, pool)
	return &CritiqueCollector{
		pool:    snapshot,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}, nil
}

// Pool returns a copy of the current evaluator pool.
func (c *CritiqueCollector) Pool() []ports.Evaluator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ports.Evaluator, len(c.pool))
	copy(out, c.pool)
	return out
}

// Collect gathers judgments for the position from every evaluator in the
// pool concurrently. The pool membership is snapshotted at entry, so
// concurrent pool mutation cannot change which evaluators participate.
//
// Judgments are returned in pool order regardless of completion order, so
// identical pools yield identically ordered collections. Evaluator failures
// are logged and absorbed; Collect fails only when ctx is done or when every
// evaluator failed, in which case it returns ErrEmptyCritique wrapped with
// the per-evaluator causes.
func (c *CritiqueCollector) Collect(ctx context.Context, position domain.Position) ([]domain.Judgment, error) {
	c.mu.RLock()
	pool := make([]ports.Evaluator, len(c.pool))
	copy(pool, c.pool)
	c.mu.RUnlock()

	start := time.Now()

	// Index-addressed slots keep results in pool order without locking.
	results := make([]*domain.Judgment, len(pool))
	failures := make([]*ports.EvaluatorError, len(pool))

	// Worker funcs always return nil so one failure never cancels the
	// group; failures land in their slot instead.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.MaxConcurrency)

	for i, ev := range pool {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, c.cfg.EvaluatorTimeout)
			defer cancel()

			callStart := time.Now()
			judgment, err := ev.Evaluate(callCtx, position)
			elapsed := time.Since(callStart)

			if c.metrics != nil {
				c.metrics.RecordLatency("evaluator_call", elapsed, map[string]string{
					"evaluator": ev.ID(),
					"role":      string(ev.Role()),
				})
			}

			if err != nil {
				if callCtx.Err() == context.DeadlineExceeded {
					err = fmt.Errorf("%w after %s: %w", ports.ErrTimeout, c.cfg.EvaluatorTimeout, err)
				}
				failures[i] = &ports.EvaluatorError{
					EvaluatorID: ev.ID(),
					Role:        string(ev.Role()),
					Err:         err,
				}
				c.logger.Warn("evaluator failed",
					"evaluator_id", ev.ID(),
					"role", ev.Role(),
					"duration", elapsed,
					"error", err)
				if c.metrics != nil {
					c.metrics.IncrementCounter("evaluator_failures_total", map[string]string{
						"evaluator": ev.ID(),
						"role":      string(ev.Role()),
					})
				}
				return nil
			}

			judgment.EvaluatorID = ev.ID()
			judgment.Role = ev.Role()
			validated, err := domain.NewJudgment(judgment)
			if err != nil {
				failures[i] = &ports.EvaluatorError{
					EvaluatorID: ev.ID(),
					Role:        string(ev.Role()),
					Err:         err,
				}
				c.logger.Warn("evaluator returned invalid judgment",
					"evaluator_id", ev.ID(),
					"role", ev.Role(),
					"error", err)
				return nil
			}

			results[i] = &validated
			return nil
		})
	}

	// The only possible group error is context cancellation of the caller.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	judgments := make([]domain.Judgment, 0, len(pool))
	for _, r := range results {
		if r != nil {
			judgments = append(judgments, *r)
		}
	}

	if len(judgments) == 0 {
		causes := make([]error, 0, len(pool))
		for _, f := range failures {
			if f != nil {
				causes = append(causes, f)
			}
		}
		return nil, fmt.Errorf("%w: all %d evaluators failed: %v",
			domain.ErrEmptyCritique, len(pool), causes)
	}

	c.logger.Info("critique collected",
		"position_id", position.ID,
		"pool_size", len(pool),
		"judgments", len(judgments),
		"failures", len(pool)-len(judgments),
		"duration", time.Since(start))

	return judgments, nil
}
