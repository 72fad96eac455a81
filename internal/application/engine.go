package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/candor-ai/go-tribunal/internal/domain"
	"github.com/candor-ai/go-tribunal/internal/ports"
)

// Engine defaults.
const (
	// DefaultMaxIterations bounds the revision loop. The loop never runs
	// unbounded; a position that cannot converge is returned with its last
	// REVISE decision.
	DefaultMaxIterations = 3

	// reviseTemperatureDecay narrows generation randomness on each revision
	// pass so successive drafts converge instead of wandering.
	reviseTemperatureDecay = 0.9
)

// EngineConfig tunes the adjudication loop.
type EngineConfig struct {
	// Consensus holds the decision thresholds.
	Consensus domain.ConsensusConfig `yaml:"consensus" json:"consensus"`

	// MaxIterations caps revision cycles per session. Zero or negative
	// means DefaultMaxIterations.
	MaxIterations int `yaml:"max_iterations" json:"max_iterations"`
}

// Engine runs the full adjudication pipeline: generate a position, collect
// critiques, decide, and on REVISE regenerate with the critique feedback
// folded into the request, up to MaxIterations cycles. Sessions are persisted
// after every decided cycle when a store is configured.
type Engine struct {
	generator ports.Generator
	collector *CritiqueCollector
	store     ports.SessionStore
	cfg       EngineConfig
	logger    *slog.Logger
}

// NewEngine wires the pipeline. The store may be nil, in which case sessions
// live only in the returned value.
func NewEngine(
	generator ports.Generator,
	collector *CritiqueCollector,
	store ports.SessionStore,
	cfg EngineConfig,
	logger *slog.Logger,
) (*Engine, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if collector == nil {
		return nil, fmt.Errorf("critique collector is required")
	}
	if err := cfg.Consensus.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		generator: generator,
		collector: collector,
		store:     store,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Consensus returns the engine's decision thresholds.
func (e *Engine) Consensus() domain.ConsensusConfig { return e.cfg.Consensus }

// Adjudicate generates a position for the request and runs it through the
// critique-decide loop. It returns the session holding the final position,
// judgments, and decision; earlier cycles remain in the session history.
// A session ending in REVISE means the iteration budget ran out before the
// position converged.
func (e *Engine) Adjudicate(ctx context.Context, req domain.GenerationRequest) (*domain.Session, error) {
	position, err := e.generator.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generating position: %w", err)
	}

	session := domain.NewSession(position)
	e.logger.Info("session opened",
		"session_id", session.ID(),
		"position_id", position.ID)

	for {
		decision, err := e.runCycle(ctx, session)
		if err != nil {
			return session, err
		}

		e.persist(ctx, session)

		if decision.Outcome != domain.OutcomeRevise || session.Iterations() >= e.cfg.MaxIterations {
			e.logger.Info("session closed",
				"session_id", session.ID(),
				"outcome", decision.Outcome,
				"iterations", session.Iterations(),
				"average_novelty", decision.AverageNovelty)
			return session, nil
		}

		revised, err := e.revise(ctx, req, session)
		if err != nil {
			return session, fmt.Errorf("revising position: %w", err)
		}
		if err := session.BeginIteration(revised); err != nil {
			return session, err
		}
		e.logger.Info("revision cycle started",
			"session_id", session.ID(),
			"iteration", session.Iterations())
	}
}

// Evaluate runs the critique-decide loop on a caller-supplied position,
// skipping generation. Used when the position originates outside the engine.
func (e *Engine) Evaluate(ctx context.Context, position domain.Position) (*domain.Session, error) {
	session := domain.NewSession(position)
	if _, err := e.runCycle(ctx, session); err != nil {
		return session, err
	}
	e.persist(ctx, session)
	return session, nil
}

// runCycle collects critiques for the session's current position and records
// the resulting decision, freezing the cycle.
func (e *Engine) runCycle(ctx context.Context, session *domain.Session) (domain.Decision, error) {
	position := session.Position()

	judgments, err := e.collector.Collect(ctx, position)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("collecting critiques: %w", err)
	}
	if err := session.RecordJudgments(judgments...); err != nil {
		return domain.Decision{}, err
	}

	decision, err := domain.Decide(judgments, len(position.TestablePredictions), e.cfg.Consensus)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("deciding: %w", err)
	}
	if err := session.RecordDecision(decision); err != nil {
		return domain.Decision{}, err
	}
	return decision, nil
}

// revise regenerates the position with the decision's reasons and the
// judgments' identified issues folded into the request constraints, at a
// reduced temperature.
func (e *Engine) revise(ctx context.Context, req domain.GenerationRequest, session *domain.Session) (domain.Position, error) {
	decision := session.Decision()

	constraints := make([]string, 0, len(req.Constraints)+len(decision.Reasons)+4)
	constraints = append(constraints, req.Constraints...)
	for _, reason := range decision.Reasons {
		constraints = append(constraints, "address prior critique: "+reason)
	}
	for _, j := range session.Judgments() {
		for _, issue := range j.IdentifiedIssues {
			constraints = append(constraints, "resolve identified issue: "+issue)
		}
	}

	revReq := req
	revReq.Constraints = constraints
	revReq.ExistingSolutions = append(
		append([]string(nil), req.ExistingSolutions...),
		summarize(session.Position().Statement))
	revReq.Temperature = req.Temperature
	for i := 0; i <= session.Iterations(); i++ {
		revReq.Temperature *= reviseTemperatureDecay
	}

	return e.generator.Generate(ctx, revReq)
}

// persist saves the session snapshot, logging rather than failing on store
// errors; a storage outage must not lose an in-memory adjudication result.
func (e *Engine) persist(ctx context.Context, session *domain.Session) {
	if e.store == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := e.store.Save(saveCtx, session.Snapshot()); err != nil {
		e.logger.Error("failed to persist session",
			"session_id", session.ID(),
			"error", err)
	}
}

// summarize truncates a statement for inclusion in a revision request.
// Truncation is by rune so a multibyte character is never split.
func summarize(statement string) string {
	const maxRunes = 280
	statement = strings.TrimSpace(statement)
	runes := []rune(statement)
	if len(runes) <= maxRunes {
		return statement
	}
	return string(runes[:maxRunes]) + "..."
}
