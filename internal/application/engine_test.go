package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candor-ai/go-tribunal/internal/domain"
	"github.com/candor-ai/go-tribunal/internal/ports"
	"github.com/candor-ai/go-tribunal/internal/testutils"
)

// scriptedGenerator returns positions in sequence, recording the requests it
// received.
type scriptedGenerator struct {
	mu        sync.Mutex
	positions []domain.Position
	requests  []domain.GenerationRequest
	calls     int
}

func (g *scriptedGenerator) Generate(_ context.Context, req domain.GenerationRequest) (domain.Position, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.calls >= len(g.positions) {
		return domain.Position{}, fmt.Errorf("generator exhausted after %d calls", g.calls)
	}
	p := g.positions[g.calls]
	g.calls++
	return p, nil
}

// scriptedEvaluator returns a different judgment on each call, so revision
// cycles can see improving critiques.
type scriptedEvaluator struct {
	id        string
	mu        sync.Mutex
	judgments []domain.Judgment
	calls     int
}

func (e *scriptedEvaluator) ID() string        { return e.id }
func (e *scriptedEvaluator) Role() domain.Role { return domain.RoleCritic }

func (e *scriptedEvaluator) Evaluate(_ context.Context, _ domain.Position) (domain.Judgment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.calls
	if idx >= len(e.judgments) {
		idx = len(e.judgments) - 1
	}
	e.calls++
	return e.judgments[idx], nil
}

// fakeStore records saves in memory.
type fakeStore struct {
	mu    sync.Mutex
	saved []domain.SessionRecord
}

func (s *fakeStore) Save(_ context.Context, record domain.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, record)
	return nil
}

func (s *fakeStore) Get(_ context.Context, id string) (domain.SessionRecord, error) {
	return domain.SessionRecord{}, ports.ErrNotFound
}

func (s *fakeStore) List(_ context.Context, _ int) ([]domain.SessionRecord, error) {
	return nil, nil
}

func position(statement string, predictions int) domain.Position {
	p := domain.Position{
		ID:        "pos-" + statement,
		Problem:   "problem",
		Statement: statement,
	}
	for i := 0; i < predictions; i++ {
		p.TestablePredictions = append(p.TestablePredictions, fmt.Sprintf("prediction %d", i))
	}
	return p
}

func newTestEngine(t *testing.T, gen ports.Generator, pool []ports.Evaluator, store ports.SessionStore, maxIterations int) *Engine {
	t.Helper()
	collector, err := NewCritiqueCollector(pool, CollectorConfig{}, nil, nil)
	require.NoError(t, err)
	engine, err := NewEngine(gen, collector, store, EngineConfig{
		Consensus:     domain.DefaultConsensusConfig(),
		MaxIterations: maxIterations,
	}, nil)
	require.NoError(t, err)
	return engine
}

func TestEngine_AdjudicateAcceptFirstPass(t *testing.T) {
	gen := &scriptedGenerator{positions: []domain.Position{position("v1", 3)}}
	pool := []ports.Evaluator{
		&testutils.StubEvaluator{EvaluatorID: "a", Judgment: goodJudgment()},
		&testutils.StubEvaluator{EvaluatorID: "b", Judgment: goodJudgment()},
	}
	store := &fakeStore{}

	engine := newTestEngine(t, gen, pool, store, 3)
	session, err := engine.Adjudicate(context.Background(), domain.GenerationRequest{Problem: "problem"})
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeAccept, session.Decision().Outcome)
	assert.Equal(t, 0, session.Iterations())
	assert.Equal(t, 1, gen.calls)
	assert.Len(t, store.saved, 1)
}

func TestEngine_ReviseLoopConverges(t *testing.T) {
	gen := &scriptedGenerator{positions: []domain.Position{
		position("v1", 0), // fails prediction minimum
		position("v2", 3),
	}}
	ev := &scriptedEvaluator{id: "a", judgments: []domain.Judgment{goodJudgment(), goodJudgment()}}

	engine := newTestEngine(t, gen, []ports.Evaluator{ev}, nil, 3)
	session, err := engine.Adjudicate(context.Background(), domain.GenerationRequest{
		Problem:     "problem",
		Temperature: 1.0,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeAccept, session.Decision().Outcome)
	assert.Equal(t, 1, session.Iterations())
	require.Len(t, session.History(), 1)
	assert.Equal(t, domain.OutcomeRevise, session.History()[0].Decision.Outcome)

	// The revision request folds the critique in and cools the temperature.
	require.Len(t, gen.requests, 2)
	revised := gen.requests[1]
	assert.NotEmpty(t, revised.Constraints)
	assert.Less(t, revised.Temperature, 1.0)
}

func TestEngine_ReviseLoopBounded(t *testing.T) {
	gen := &scriptedGenerator{positions: []domain.Position{
		position("v1", 0),
		position("v2", 0),
		position("v3", 0),
	}}
	ev := &testutils.StubEvaluator{EvaluatorID: "a", Judgment: goodJudgment()}

	engine := newTestEngine(t, gen, []ports.Evaluator{ev}, nil, 2)
	session, err := engine.Adjudicate(context.Background(), domain.GenerationRequest{Problem: "problem"})
	require.NoError(t, err)

	// The loop stops at the cap with the last REVISE decision standing.
	assert.Equal(t, domain.OutcomeRevise, session.Decision().Outcome)
	assert.Equal(t, 2, session.Iterations())
	assert.Equal(t, 3, gen.calls)
}

func TestEngine_RejectStopsImmediately(t *testing.T) {
	gen := &scriptedGenerator{positions: []domain.Position{position("v1", 3)}}
	flawed := goodJudgment()
	flawed.LogicallyConsistent = false
	ev := &testutils.StubEvaluator{EvaluatorID: "a", Judgment: flawed}

	engine := newTestEngine(t, gen, []ports.Evaluator{ev}, nil, 3)
	session, err := engine.Adjudicate(context.Background(), domain.GenerationRequest{Problem: "problem"})
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeReject, session.Decision().Outcome)
	assert.Equal(t, 0, session.Iterations())
	assert.Equal(t, 1, gen.calls)
}

func TestEngine_EvaluateSkipsGeneration(t *testing.T) {
	gen := &scriptedGenerator{}
	ev := &testutils.StubEvaluator{EvaluatorID: "a", Judgment: goodJudgment()}
	store := &fakeStore{}

	engine := newTestEngine(t, gen, []ports.Evaluator{ev}, store, 3)
	session, err := engine.Evaluate(context.Background(), position("external", 2))
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeAccept, session.Decision().Outcome)
	assert.Equal(t, 0, gen.calls)
	assert.Len(t, store.saved, 1)
}

func TestSummarize(t *testing.T) {
	short := "the self is a process"
	assert.Equal(t, short, summarize("  "+short+"  "))

	long := strings.Repeat("Bewusstsein prägt Realität. ", 20)
	got := summarize(long)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, 283, utf8.RuneCountInString(got))
}

func TestEngine_EmptyCritiqueSurfaces(t *testing.T) {
	gen := &scriptedGenerator{positions: []domain.Position{position("v1", 3)}}
	ev := &testutils.StubEvaluator{EvaluatorID: "a", Err: fmt.Errorf("down")}

	engine := newTestEngine(t, gen, []ports.Evaluator{ev}, nil, 3)
	_, err := engine.Adjudicate(context.Background(), domain.GenerationRequest{Problem: "problem"})
	require.ErrorIs(t, err, domain.ErrEmptyCritique)
}
