package domain

import "fmt"

// Default consensus thresholds, overridable via ConsensusConfig.
const (
	// DefaultNoveltyThreshold is the minimum average novelty for acceptance.
	DefaultNoveltyThreshold = 0.7

	// DefaultMinTestablePredictions is the minimum number of testable
	// predictions a position must commit to.
	DefaultMinTestablePredictions = 2

	// DefaultCoherenceQuorum is the minimum fraction of judgments that must
	// agree on coherence (3 of 4).
	DefaultCoherenceQuorum = 0.75

	// DefaultCoherenceCutoff is the coherence score at or above which a
	// judgment counts as agreeing.
	DefaultCoherenceCutoff = 0.7
)

// ConsensusConfig holds the thresholds the consensus rule is evaluated
// against. The configuration is immutable and passed by value into Decide;
// there is no ambient global state in the core.
type ConsensusConfig struct {
	// NoveltyThreshold is the minimum average novelty for acceptance,
	// inclusive (average == threshold passes).
	NoveltyThreshold float64 `yaml:"novelty_threshold" json:"novelty_threshold" validate:"min=0,max=1"`

	// MinTestablePredictions is the minimum count of testable predictions
	// required in the position's metadata. Below it, acceptance is blocked
	// regardless of judgments.
	MinTestablePredictions int `yaml:"min_testable_predictions" json:"min_testable_predictions" validate:"min=0"`

	// CoherenceQuorum is the minimum fraction of judgments whose coherence
	// score is at or above CoherenceCutoff, inclusive. Judgments without a
	// coherence score count as non-agreeing.
	CoherenceQuorum float64 `yaml:"coherence_quorum" json:"coherence_quorum" validate:"min=0,max=1"`

	// CoherenceCutoff is the coherence score at or above which a judgment
	// counts toward the quorum.
	CoherenceCutoff float64 `yaml:"coherence_cutoff" json:"coherence_cutoff" validate:"min=0,max=1"`
}

// DefaultConsensusConfig returns the standard thresholds.
func DefaultConsensusConfig() ConsensusConfig {
	return ConsensusConfig{
		NoveltyThreshold:       DefaultNoveltyThreshold,
		MinTestablePredictions: DefaultMinTestablePredictions,
		CoherenceQuorum:        DefaultCoherenceQuorum,
		CoherenceCutoff:        DefaultCoherenceCutoff,
	}
}

// Validate checks every threshold against its valid range.
// Violations are ErrInvalidConfig and should be surfaced at
// configuration-load time rather than per decision.
func (c ConsensusConfig) Validate() error {
	if c.NoveltyThreshold < 0 || c.NoveltyThreshold > 1 {
		return fmt.Errorf("%w: novelty_threshold %.3f outside [0, 1]", ErrInvalidConfig, c.NoveltyThreshold)
	}
	if c.MinTestablePredictions < 0 {
		return fmt.Errorf("%w: min_testable_predictions %d is negative", ErrInvalidConfig, c.MinTestablePredictions)
	}
	if c.CoherenceQuorum < 0 || c.CoherenceQuorum > 1 {
		return fmt.Errorf("%w: coherence_quorum %.3f outside [0, 1]", ErrInvalidConfig, c.CoherenceQuorum)
	}
	if c.CoherenceCutoff < 0 || c.CoherenceCutoff > 1 {
		return fmt.Errorf("%w: coherence_cutoff %.3f outside [0, 1]", ErrInvalidConfig, c.CoherenceCutoff)
	}
	return nil
}

// Decide applies the four-criterion consensus rule to a non-empty judgment
// collection and returns the resulting decision. It is a pure function: no
// side effects, and deterministic for identical inputs including the order
// of the reasons list.
//
// predictionCount is the number of testable predictions in the position's
// metadata; it is supplied by the caller, not derived from judgments.
//
// The criteria are evaluated in fixed order:
//
//  1. Unanimous logical validity. Any judgment reporting a logical flaw
//     yields REJECT, listing every offending evaluator. Rejection
//     short-circuits: criteria 2-4 are not evaluated, keeping the reason
//     list focused on the disqualifying cause.
//  2. Novelty. Average novelty below the threshold yields REVISE.
//  3. Testable predictions. A prediction count below the minimum yields
//     REVISE. Evaluated even when criterion 2 already fired; reasons
//     accumulate.
//  4. Coherence quorum. Too few judgments at or above the coherence cutoff
//     yields REVISE, also accumulating.
//
// All thresholds are inclusive lower bounds: exact equality passes.
func Decide(judgments []Judgment, predictionCount int, cfg ConsensusConfig) (Decision, error) {
	if len(judgments) == 0 {
		return Decision{}, fmt.Errorf("%w: judgment collection is empty", ErrInvalidInput)
	}
	if err := cfg.Validate(); err != nil {
		return Decision{}, err
	}

	ids := make([]string, len(judgments))
	for i, j := range judgments {
		ids[i] = j.EvaluatorID
	}

	avgNovelty := averageNovelty(judgments)

	// Criterion 1: logical validity is a hard gate, not one vote among
	// several. Every offending evaluator is listed.
	var inconsistent []string
	for _, j := range judgments {
		if !j.LogicallyConsistent {
			inconsistent = append(inconsistent, j.EvaluatorID)
		}
	}
	if len(inconsistent) > 0 {
		reasons := make([]string, len(inconsistent))
		for i, id := range inconsistent {
			reasons[i] = fmt.Sprintf("logical inconsistency found by evaluator %s", id)
		}
		return Decision{
			Outcome:         OutcomeReject,
			AverageNovelty:  avgNovelty,
			Reasons:         reasons,
			ContributingIDs: ids,
		}, nil
	}

	var reasons []string

	// Criterion 2: novelty.
	if avgNovelty < cfg.NoveltyThreshold {
		reasons = append(reasons, fmt.Sprintf("novelty %.2f below threshold %.2f",
			avgNovelty, cfg.NoveltyThreshold))
	}

	// Criterion 3: testable predictions, from external metadata.
	if predictionCount < cfg.MinTestablePredictions {
		reasons = append(reasons, fmt.Sprintf("insufficient testable predictions: %d < %d",
			predictionCount, cfg.MinTestablePredictions))
	}

	// Criterion 4: coherence quorum. Absent coherence scores count as
	// non-agreeing but do not disqualify the judgment elsewhere.
	agreeing := 0
	for _, j := range judgments {
		if j.CoherenceScore != nil && *j.CoherenceScore >= cfg.CoherenceCutoff {
			agreeing++
		}
	}
	if float64(agreeing)/float64(len(judgments)) < cfg.CoherenceQuorum {
		reasons = append(reasons, fmt.Sprintf("coherence agreement %d/%d below quorum",
			agreeing, len(judgments)))
	}

	if len(reasons) > 0 {
		return Decision{
			Outcome:         OutcomeRevise,
			AverageNovelty:  avgNovelty,
			Reasons:         reasons,
			ContributingIDs: ids,
		}, nil
	}

	return Decision{
		Outcome:        OutcomeAccept,
		AverageNovelty: avgNovelty,
		Reasons: []string{fmt.Sprintf(
			"all criteria passed: novelty %.2f, coherence %d/%d, %d testable predictions",
			avgNovelty, agreeing, len(judgments), predictionCount)},
		ContributingIDs: ids,
	}, nil
}

// averageNovelty computes the arithmetic mean over the judgments that carry
// a novelty score. Judgments lacking one are excluded from both numerator
// and denominator; if none carry one the average is 0.0.
func averageNovelty(judgments []Judgment) float64 {
	var sum float64
	var n int
	for _, j := range judgments {
		if j.NoveltyScore != nil {
			sum += *j.NoveltyScore
			n++
		}
	}
	if n == 0 {
		return 0.0
	}
	return sum / float64(n)
}
