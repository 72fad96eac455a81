package evaluators

import (
	"fmt"

	"github.com/candor-ai/go-tribunal/internal/domain"
	"github.com/candor-ai/go-tribunal/internal/ports"
)

// DefaultPool builds the standard four-seat critique panel against a single
// client: logic checker, contradiction finder, novelty assessor, and edge
// case generator. Analytical roles run colder than the novelty assessor.
func DefaultPool(client ports.LLMClient) ([]ports.Evaluator, error) {
	seats := []Config{
		{ID: "logic-checker", Role: domain.RoleLogicChecker, Temperature: 0.2},
		{ID: "contradiction-finder", Role: domain.RoleContradictionFinder, Temperature: 0.3},
		{ID: "novelty-assessor", Role: domain.RoleNoveltyAssessor, Temperature: 0.7},
		{ID: "edge-case-generator", Role: domain.RoleEdgeCaseGenerator, Temperature: 0.5},
	}

	pool := make([]ports.Evaluator, 0, len(seats))
	for _, seat := range seats {
		ev, err := New(seat, client)
		if err != nil {
			return nil, fmt.Errorf("building default pool: %w", err)
		}
		pool = append(pool, ev)
	}
	return pool, nil
}
