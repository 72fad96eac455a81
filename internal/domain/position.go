package domain

import "time"

// ProblemDomain categorizes the area of inquiry a position belongs to.
type ProblemDomain string

// Recognized problem domains.
const (
	DomainMetaphysics   ProblemDomain = "metaphysics"
	DomainEpistemology  ProblemDomain = "epistemology"
	DomainEthics        ProblemDomain = "ethics"
	DomainConsciousness ProblemDomain = "consciousness"
	DomainLogic         ProblemDomain = "logic"
	DomainAesthetics    ProblemDomain = "aesthetics"
	DomainPolitical     ProblemDomain = "political"
	DomainPhenomenology ProblemDomain = "phenomenology"
	DomainQuantum       ProblemDomain = "quantum_mechanics"
)

// ProblemDomains returns all recognized problem domains in a stable order.
func ProblemDomains() []ProblemDomain {
	return []ProblemDomain{
		DomainMetaphysics,
		DomainEpistemology,
		DomainEthics,
		DomainConsciousness,
		DomainLogic,
		DomainAesthetics,
		DomainPolitical,
		DomainPhenomenology,
		DomainQuantum,
	}
}

// Position is a candidate statement under adjudication together with the
// metadata the consensus engine consults. The statement content itself is
// opaque to the core; only TestablePredictions participates in the decision
// rule (criterion 3).
type Position struct {
	// ID uniquely identifies this position within a session.
	ID string `json:"id"`

	// Problem is the question or problem the position responds to.
	Problem string `json:"problem"`

	// Statement is the position text produced by the generator.
	Statement string `json:"statement"`

	// Domains lists the areas of inquiry the position touches.
	Domains []ProblemDomain `json:"domains,omitempty"`

	// Assumptions lists the premises the position rests on.
	Assumptions []string `json:"assumptions,omitempty"`

	// TestablePredictions enumerates the falsifiable consequences the
	// position commits to. Its length is the prediction count consumed by
	// the consensus engine.
	TestablePredictions []string `json:"testable_predictions,omitempty"`

	// Contradictions lists tensions the generator itself flagged.
	Contradictions []string `json:"contradictions,omitempty"`

	// CreatedAt records when the position was generated.
	CreatedAt time.Time `json:"created_at"`
}

// GenerationRequest describes the problem a generator should produce a
// position for. It is consumed by the statement source, which is external to
// the adjudication core.
type GenerationRequest struct {
	// Problem is the question to take a position on.
	Problem string `json:"problem" validate:"required"`

	// Domains constrains the areas of inquiry to draw on.
	Domains []ProblemDomain `json:"domains,omitempty"`

	// Constraints are requirements the generated position must satisfy.
	Constraints []string `json:"constraints,omitempty"`

	// ExistingSolutions lists known answers the position should go beyond.
	ExistingSolutions []string `json:"existing_solutions,omitempty"`

	// InnovationVectors suggests directions along which to seek novelty.
	InnovationVectors []string `json:"innovation_vectors,omitempty"`

	// Temperature controls generation randomness (0.0-2.0).
	Temperature float64 `json:"temperature,omitempty" validate:"min=0,max=2"`
}
