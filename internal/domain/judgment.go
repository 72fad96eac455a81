// Package domain contains the core data model and decision logic for the
// tribunal: judgments produced by independent evaluators, the consensus rule
// that aggregates them, and the session record that ties a candidate position
// to its adjudication history.
package domain

import (
	"fmt"
	"time"
)

// Role identifies the evaluative capacity an evaluator exercises when
// producing a judgment. The role drives which judgment fields are meaningful,
// but all judgments share the same shape.
type Role string

// Evaluator roles recognized by the tribunal.
const (
	// RoleLogicChecker probes the position for formal or logical flaws.
	RoleLogicChecker Role = "logic_checker"

	// RoleContradictionFinder searches for internal contradictions and
	// tensions between the position's claims.
	RoleContradictionFinder Role = "contradiction_finder"

	// RoleNoveltyAssessor rates how novel the position is relative to
	// established literature.
	RoleNoveltyAssessor Role = "novelty_assessor"

	// RoleEdgeCaseGenerator constructs scenarios that stress-test the
	// position's claims.
	RoleEdgeCaseGenerator Role = "edge_case_generator"

	// RoleCritic is the generic evaluative role for judges that do not fit
	// a more specific capacity.
	RoleCritic Role = "critic"
)

// Valid reports whether the role is one of the recognized constants.
func (r Role) Valid() bool {
	switch r {
	case RoleLogicChecker, RoleContradictionFinder, RoleNoveltyAssessor,
		RoleEdgeCaseGenerator, RoleCritic:
		return true
	}
	return false
}

// Judgment is one evaluator's scored opinion of one candidate position.
// Judgments are immutable value records: produced exactly once per evaluator
// per collection call and never mutated afterwards.
type Judgment struct {
	// EvaluatorID identifies the judgment source, unique within a pool
	// invocation.
	EvaluatorID string `json:"evaluator_id"`

	// Role is the evaluative capacity exercised for this judgment.
	Role Role `json:"role"`

	// LogicallyConsistent reports whether the evaluator found no formal or
	// logical flaw in the position.
	LogicallyConsistent bool `json:"logically_consistent"`

	// NoveltyScore rates novelty in [0.0, 1.0]; 0 is known or derivative,
	// 1 is maximally novel. Nil when the evaluator did not assess novelty.
	NoveltyScore *float64 `json:"novelty_score,omitempty"`

	// CoherenceScore rates internal coherence in [0.0, 1.0]. Nil when the
	// evaluator did not assess coherence; an absent score counts as
	// non-agreeing in the coherence quorum.
	CoherenceScore *float64 `json:"coherence_score,omitempty"`

	// IdentifiedIssues lists contradictions and flaws the evaluator found,
	// in the order reported.
	IdentifiedIssues []string `json:"identified_issues,omitempty"`

	// Reasoning is the evaluator's free-text justification. Retained for
	// audit only; never parsed and never used in aggregation.
	Reasoning string `json:"reasoning,omitempty"`

	// CreatedAt records when the judgment was produced.
	CreatedAt time.Time `json:"created_at"`
}

// NewJudgment validates and normalizes a judgment at construction.
// Score fields outside [0.0, 1.0] are rejected with ErrInvalidJudgment so
// that malformed judgments never enter a collection.
func NewJudgment(j Judgment) (Judgment, error) {
	if j.EvaluatorID == "" {
		return Judgment{}, fmt.Errorf("%w: evaluator id is required", ErrInvalidJudgment)
	}
	if j.Role == "" {
		j.Role = RoleCritic
	}
	if !j.Role.Valid() {
		return Judgment{}, fmt.Errorf("%w: unknown role %q", ErrInvalidJudgment, j.Role)
	}
	if err := validateScore("novelty_score", j.NoveltyScore); err != nil {
		return Judgment{}, err
	}
	if err := validateScore("coherence_score", j.CoherenceScore); err != nil {
		return Judgment{}, err
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}
	return j, nil
}

func validateScore(field string, score *float64) error {
	if score == nil {
		return nil
	}
	if *score < 0.0 || *score > 1.0 {
		return fmt.Errorf("%w: %s %.3f outside [0.0, 1.0]", ErrInvalidJudgment, field, *score)
	}
	return nil
}

// Float returns a pointer to v, for populating optional score fields.
func Float(v float64) *float64 { return &v }
