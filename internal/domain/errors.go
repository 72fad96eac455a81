package domain

import "errors"

// Common domain errors that can occur during critique collection and
// consensus operations.
var (
	// ErrInvalidJudgment indicates that a Judgment carried a score outside
	// the [0.0, 1.0] range at construction. Such judgments never enter a
	// collection.
	ErrInvalidJudgment = errors.New("invalid judgment")

	// ErrEmptyCritique indicates that every evaluator in a pool failed and
	// no judgments were obtained. The consensus engine must never run on an
	// empty judgment set.
	ErrEmptyCritique = errors.New("no judgments collected")

	// ErrInvalidInput indicates that Decide was invoked with an empty
	// judgment collection. This is a programming-contract violation, not an
	// expected runtime condition.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates that a consensus threshold is outside its
	// valid range. Surfaced at configuration-load time, not per call.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSessionFrozen indicates an attempt to mutate a session cycle after
	// its decision was recorded. A new revision cycle must be started instead.
	ErrSessionFrozen = errors.New("session cycle already decided")
)
