package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Cycle is one completed generate-critique-decide round within a session:
// the position that was adjudicated, the judgments collected for it, and the
// decision reached. Cycles are archived verbatim when a session iterates.
type Cycle struct {
	Position  Position   `json:"position"`
	Judgments []Judgment `json:"judgments"`
	Decision  *Decision  `json:"decision,omitempty"`
}

// Session ties a candidate position to its adjudication lifecycle. Judgments
// append until a decision is recorded, after which the cycle freezes: further
// judgment writes fail with ErrSessionFrozen and a new revision cycle must be
// started through BeginIteration. All accessors return copies so callers
// cannot mutate session state from outside.
type Session struct {
	id         string
	position   Position
	judgments  []Judgment
	decision   *Decision
	iterations int
	history    []Cycle
	createdAt  time.Time
}

// NewSession creates a session for adjudicating the given position. The
// session id is generated; iteration count starts at zero.
func NewSession(position Position) *Session {
	return &Session{
		id:        uuid.NewString(),
		position:  position,
		createdAt: time.Now().UTC(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Position returns the position currently under adjudication.
func (s *Session) Position() Position { return s.position }

// CreatedAt returns when the session was opened.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Iterations returns how many revision cycles have been completed. Zero
// means the original position is still (or was finally) under adjudication.
func (s *Session) Iterations() int { return s.iterations }

// Judgments returns a copy of the judgments recorded in the current cycle.
func (s *Session) Judgments() []Judgment {
	out := make([]Judgment, len(s.judgments))
	copy(out, s.judgments)
	return out
}

// Decision returns a copy of the current cycle's decision, or nil if the
// cycle is still open.
func (s *Session) Decision() *Decision {
	if s.decision == nil {
		return nil
	}
	d := *s.decision
	return &d
}

// History returns copies of the archived cycles, oldest first. The current
// cycle is not included until BeginIteration archives it.
func (s *Session) History() []Cycle {
	out := make([]Cycle, len(s.history))
	copy(out, s.history)
	return out
}

// RecordJudgments appends judgments to the current cycle. Appending after
// the cycle's decision has been recorded fails with ErrSessionFrozen.
func (s *Session) RecordJudgments(judgments ...Judgment) error {
	if s.decision != nil {
		return fmt.Errorf("%w: session %s", ErrSessionFrozen, s.id)
	}
	s.judgments = append(s.judgments, judgments...)
	return nil
}

// RecordDecision freezes the current cycle with its decision. Recording a
// second decision for the same cycle fails with ErrSessionFrozen.
func (s *Session) RecordDecision(d Decision) error {
	if s.decision != nil {
		return fmt.Errorf("%w: session %s", ErrSessionFrozen, s.id)
	}
	s.decision = &d
	return nil
}

// BeginIteration archives the current cycle and opens a new one for the
// revised position. It requires the current cycle to be decided; iterating
// an undecided cycle would discard judgments without a verdict.
func (s *Session) BeginIteration(revised Position) error {
	if s.decision == nil {
		return fmt.Errorf("cannot iterate session %s: current cycle is undecided", s.id)
	}
	s.history = append(s.history, Cycle{
		Position:  s.position,
		Judgments: s.judgments,
		Decision:  s.decision,
	})
	s.position = revised
	s.judgments = nil
	s.decision = nil
	s.iterations++
	return nil
}

// SessionRecord is the flat, serializable form of a session used for
// persistence and API responses. Judgments and history reflect the state at
// snapshot time.
type SessionRecord struct {
	ID         string     `json:"id"`
	Position   Position   `json:"position"`
	Judgments  []Judgment `json:"judgments"`
	Decision   *Decision  `json:"decision,omitempty"`
	Iterations int        `json:"iteration_count"`
	History    []Cycle    `json:"history,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Snapshot returns a serializable copy of the session's full state.
func (s *Session) Snapshot() SessionRecord {
	return SessionRecord{
		ID:         s.id,
		Position:   s.position,
		Judgments:  s.Judgments(),
		Decision:   s.Decision(),
		Iterations: s.iterations,
		History:    s.History(),
		CreatedAt:  s.createdAt,
	}
}

// RestoreSession rebuilds a session from a persisted record.
func RestoreSession(r SessionRecord) *Session {
	s := &Session{
		id:         r.ID,
		position:   r.Position,
		iterations: r.Iterations,
		createdAt:  r.CreatedAt,
	}
	s.judgments = append(s.judgments, r.Judgments...)
	s.history = append(s.history, r.History...)
	if r.Decision != nil {
		d := *r.Decision
		s.decision = &d
	}
	return s
}
