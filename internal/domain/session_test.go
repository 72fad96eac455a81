package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPosition(statement string) Position {
	return Position{
		ID:                  "pos-1",
		Problem:             "what grounds personal identity",
		Statement:           statement,
		TestablePredictions: []string{"p1", "p2"},
	}
}

func TestSession_JudgmentsAppendUntilDecided(t *testing.T) {
	s := NewSession(testPosition("v1"))

	require.NoError(t, s.RecordJudgments(passingJudgment("a")))
	require.NoError(t, s.RecordJudgments(passingJudgment("b"), passingJudgment("c")))
	assert.Len(t, s.Judgments(), 3)

	require.NoError(t, s.RecordDecision(Decision{Outcome: OutcomeAccept}))

	err := s.RecordJudgments(passingJudgment("d"))
	require.ErrorIs(t, err, ErrSessionFrozen)
	assert.Len(t, s.Judgments(), 3)
}

func TestSession_DecisionRecordedOnce(t *testing.T) {
	s := NewSession(testPosition("v1"))
	require.NoError(t, s.RecordDecision(Decision{Outcome: OutcomeRevise}))
	require.ErrorIs(t, s.RecordDecision(Decision{Outcome: OutcomeAccept}), ErrSessionFrozen)
	assert.Equal(t, OutcomeRevise, s.Decision().Outcome)
}

func TestSession_BeginIteration(t *testing.T) {
	s := NewSession(testPosition("v1"))

	// Iterating an undecided cycle is an error.
	require.Error(t, s.BeginIteration(testPosition("v2")))

	require.NoError(t, s.RecordJudgments(passingJudgment("a")))
	require.NoError(t, s.RecordDecision(Decision{Outcome: OutcomeRevise}))
	require.NoError(t, s.BeginIteration(testPosition("v2")))

	assert.Equal(t, 1, s.Iterations())
	assert.Equal(t, "v2", s.Position().Statement)
	assert.Empty(t, s.Judgments())
	assert.Nil(t, s.Decision())

	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, "v1", history[0].Position.Statement)
	assert.Len(t, history[0].Judgments, 1)
	assert.Equal(t, OutcomeRevise, history[0].Decision.Outcome)

	// The new cycle accepts judgments again.
	require.NoError(t, s.RecordJudgments(passingJudgment("b")))
}

func TestSession_AccessorsReturnCopies(t *testing.T) {
	s := NewSession(testPosition("v1"))
	require.NoError(t, s.RecordJudgments(passingJudgment("a")))

	judgments := s.Judgments()
	judgments[0].EvaluatorID = "tampered"
	assert.Equal(t, "a", s.Judgments()[0].EvaluatorID)

	require.NoError(t, s.RecordDecision(Decision{Outcome: OutcomeAccept}))
	d := s.Decision()
	d.Outcome = OutcomeReject
	assert.Equal(t, OutcomeAccept, s.Decision().Outcome)
}

func TestSession_SnapshotRoundTrip(t *testing.T) {
	s := NewSession(testPosition("v1"))
	require.NoError(t, s.RecordJudgments(passingJudgment("a")))
	require.NoError(t, s.RecordDecision(Decision{Outcome: OutcomeRevise, Reasons: []string{"r"}}))
	require.NoError(t, s.BeginIteration(testPosition("v2")))
	require.NoError(t, s.RecordJudgments(passingJudgment("b")))

	snapshot := s.Snapshot()
	restored := RestoreSession(snapshot)

	assert.Equal(t, s.ID(), restored.ID())
	assert.Equal(t, s.Iterations(), restored.Iterations())
	assert.Equal(t, s.Position(), restored.Position())
	assert.Equal(t, s.Judgments(), restored.Judgments())
	assert.Equal(t, s.History(), restored.History())
	assert.Nil(t, restored.Decision())
}

func TestNewSession_UniqueIDs(t *testing.T) {
	a := NewSession(testPosition("v1"))
	b := NewSession(testPosition("v1"))
	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotEmpty(t, a.ID())
}
