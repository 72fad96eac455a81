// Package ports defines the interfaces that connect the adjudication core to
// its infrastructure: evaluators, position generators, LLM transports,
// session storage, and metrics. Implementations live under infrastructure/;
// the application layer depends only on these contracts.
package ports

import (
	"context"

	"github.com/candor-ai/go-tribunal/internal/domain"
)

// Evaluator produces one judgment of a candidate position. Implementations
// must be safe for concurrent use: the critique collector calls every pool
// member in parallel against the same position.
type Evaluator interface {
	// ID returns the evaluator's identifier, unique within a pool.
	ID() string

	// Role returns the evaluative capacity this evaluator exercises.
	Role() domain.Role

	// Evaluate judges the position. It must respect ctx cancellation and
	// return an error rather than a zero-value judgment on failure; the
	// collector absorbs failures without aborting sibling evaluators.
	Evaluate(ctx context.Context, position domain.Position) (domain.Judgment, error)
}

// Generator produces candidate positions for adjudication.
type Generator interface {
	// Generate creates a position responding to the request's problem,
	// honoring its constraints and temperature.
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.Position, error)
}
