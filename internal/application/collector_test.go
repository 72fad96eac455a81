package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candor-ai/go-tribunal/internal/domain"
	"github.com/candor-ai/go-tribunal/internal/ports"
	"github.com/candor-ai/go-tribunal/internal/testutils"
)

func goodJudgment() domain.Judgment {
	return domain.Judgment{
		LogicallyConsistent: true,
		NoveltyScore:        domain.Float(0.8),
		CoherenceScore:      domain.Float(0.9),
		Reasoning:           "sound",
	}
}

func testCollectorPosition() domain.Position {
	return domain.Position{
		ID:        "pos-1",
		Problem:   "is time fundamental",
		Statement: "time emerges from entanglement entropy",
	}
}

func TestNewCritiqueCollector_Validation(t *testing.T) {
	tests := []struct {
		name    string
		pool    []ports.Evaluator
		wantErr string
	}{
		{name: "empty pool", pool: nil, wantErr: "must not be empty"},
		{
			name: "duplicate ids",
			pool: []ports.Evaluator{
				&testutils.StubEvaluator{EvaluatorID: "a"},
				&testutils.StubEvaluator{EvaluatorID: "a"},
			},
			wantErr: "duplicate evaluator id",
		},
		{
			name:    "nil entry",
			pool:    []ports.Evaluator{nil},
			wantErr: "nil entry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCritiqueCollector(tt.pool, CollectorConfig{}, nil, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// Results come back in pool order even when completion order is reversed.
func TestCollect_PoolOrder(t *testing.T) {
	pool := []ports.Evaluator{
		&testutils.StubEvaluator{EvaluatorID: "first", Judgment: goodJudgment(), Delay: 60 * time.Millisecond},
		&testutils.StubEvaluator{EvaluatorID: "second", Judgment: goodJudgment(), Delay: 30 * time.Millisecond},
		&testutils.StubEvaluator{EvaluatorID: "third", Judgment: goodJudgment()},
	}
	c, err := NewCritiqueCollector(pool, CollectorConfig{}, nil, nil)
	require.NoError(t, err)

	judgments, err := c.Collect(context.Background(), testCollectorPosition())
	require.NoError(t, err)

	require.Len(t, judgments, 3)
	assert.Equal(t, "first", judgments[0].EvaluatorID)
	assert.Equal(t, "second", judgments[1].EvaluatorID)
	assert.Equal(t, "third", judgments[2].EvaluatorID)
}

// One failing evaluator does not abort its siblings; its judgment is simply
// absent.
func TestCollect_FailureIsolation(t *testing.T) {
	pool := []ports.Evaluator{
		&testutils.StubEvaluator{EvaluatorID: "a", Judgment: goodJudgment()},
		&testutils.StubEvaluator{EvaluatorID: "b", Err: errors.New("provider exploded")},
		&testutils.StubEvaluator{EvaluatorID: "c", Judgment: goodJudgment()},
	}
	c, err := NewCritiqueCollector(pool, CollectorConfig{}, nil, nil)
	require.NoError(t, err)

	judgments, err := c.Collect(context.Background(), testCollectorPosition())
	require.NoError(t, err)

	require.Len(t, judgments, 2)
	assert.Equal(t, "a", judgments[0].EvaluatorID)
	assert.Equal(t, "c", judgments[1].EvaluatorID)
}

// A hung evaluator is cut off by its own timeout without consuming the
// others' budget.
func TestCollect_PerEvaluatorTimeout(t *testing.T) {
	pool := []ports.Evaluator{
		&testutils.StubEvaluator{EvaluatorID: "stuck", Block: true},
		&testutils.StubEvaluator{EvaluatorID: "fine", Judgment: goodJudgment()},
	}
	c, err := NewCritiqueCollector(pool, CollectorConfig{EvaluatorTimeout: 50 * time.Millisecond}, nil, nil)
	require.NoError(t, err)

	start := time.Now()
	judgments, err := c.Collect(context.Background(), testCollectorPosition())
	require.NoError(t, err)

	require.Len(t, judgments, 1)
	assert.Equal(t, "fine", judgments[0].EvaluatorID)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestCollect_AllFail(t *testing.T) {
	pool := []ports.Evaluator{
		&testutils.StubEvaluator{EvaluatorID: "a", Err: errors.New("down")},
		&testutils.StubEvaluator{EvaluatorID: "b", Err: errors.New("also down")},
	}
	c, err := NewCritiqueCollector(pool, CollectorConfig{}, nil, nil)
	require.NoError(t, err)

	_, err = c.Collect(context.Background(), testCollectorPosition())
	require.ErrorIs(t, err, domain.ErrEmptyCritique)
	assert.Contains(t, err.Error(), "all 2 evaluators failed")
}

// An evaluator returning an out-of-range score is treated as a failure, not
// admitted into the collection.
func TestCollect_InvalidJudgmentAbsorbed(t *testing.T) {
	bad := goodJudgment()
	bad.NoveltyScore = domain.Float(1.5)

	pool := []ports.Evaluator{
		&testutils.StubEvaluator{EvaluatorID: "bad", Judgment: bad},
		&testutils.StubEvaluator{EvaluatorID: "good", Judgment: goodJudgment()},
	}
	c, err := NewCritiqueCollector(pool, CollectorConfig{}, nil, nil)
	require.NoError(t, err)

	judgments, err := c.Collect(context.Background(), testCollectorPosition())
	require.NoError(t, err)
	require.Len(t, judgments, 1)
	assert.Equal(t, "good", judgments[0].EvaluatorID)
}

func TestCollect_CallerCancellation(t *testing.T) {
	pool := []ports.Evaluator{
		&testutils.StubEvaluator{EvaluatorID: "slow", Judgment: goodJudgment(), Delay: time.Second},
	}
	c, err := NewCritiqueCollector(pool, CollectorConfig{}, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = c.Collect(ctx, testCollectorPosition())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCollect_StampsEvaluatorIdentity(t *testing.T) {
	j := goodJudgment()
	j.EvaluatorID = "spoofed"
	j.Role = domain.RoleCritic

	pool := []ports.Evaluator{
		&testutils.StubEvaluator{EvaluatorID: "real", RoleValue: domain.RoleLogicChecker, Judgment: j},
	}
	c, err := NewCritiqueCollector(pool, CollectorConfig{}, nil, nil)
	require.NoError(t, err)

	judgments, err := c.Collect(context.Background(), testCollectorPosition())
	require.NoError(t, err)
	require.Len(t, judgments, 1)
	assert.Equal(t, "real", judgments[0].EvaluatorID)
	assert.Equal(t, domain.RoleLogicChecker, judgments[0].Role)
}
