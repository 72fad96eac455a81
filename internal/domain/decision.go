package domain

// Outcome is the three-way result of adjudicating a position.
// The outcomes are mutually exclusive and exhaustive.
type Outcome string

const (
	// OutcomeAccept indicates the position passed every consensus criterion.
	OutcomeAccept Outcome = "ACCEPT"

	// OutcomeReject indicates at least one evaluator found a logical flaw.
	// Rejection is a hard gate and takes precedence over revision.
	OutcomeReject Outcome = "REJECT"

	// OutcomeRevise indicates the position fell short on novelty, testable
	// predictions, or coherence agreement and should be regenerated.
	OutcomeRevise Outcome = "REVISE"
)

// Valid reports whether the outcome is one of the three recognized values.
func (o Outcome) Valid() bool {
	return o == OutcomeAccept || o == OutcomeReject || o == OutcomeRevise
}

// Decision is the immutable result of applying the consensus rule to a
// judgment collection. It carries enough reason detail for a caller to
// explain the outcome without re-deriving it from the raw judgments.
type Decision struct {
	// Outcome is the adjudication result.
	Outcome Outcome `json:"outcome"`

	// AverageNovelty is the arithmetic mean of the novelty scores that
	// contributed to the decision. Judgments without a novelty score are
	// excluded from both numerator and denominator; if none carry one the
	// average is 0.0.
	AverageNovelty float64 `json:"average_novelty"`

	// Reasons explains the outcome, one entry per rule that fired, in rule
	// order. Reproducible for identical judgment content and order.
	Reasons []string `json:"reasons"`

	// ContributingIDs lists the evaluator IDs whose judgments were
	// considered, in collection order. Decide is deterministic: identical
	// judgment collections yield identical decisions, so no timestamp is
	// recorded here.
	ContributingIDs []string `json:"contributing_judgment_ids"`
}
