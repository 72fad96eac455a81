package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJudgment(t *testing.T) {
	tests := []struct {
		name    string
		input   Judgment
		wantErr bool
	}{
		{
			name:  "valid with all scores",
			input: Judgment{EvaluatorID: "a", Role: RoleLogicChecker, NoveltyScore: Float(0.5), CoherenceScore: Float(1.0)},
		},
		{
			name:  "valid without scores",
			input: Judgment{EvaluatorID: "a", Role: RoleEdgeCaseGenerator},
		},
		{
			name:  "boundary scores pass",
			input: Judgment{EvaluatorID: "a", NoveltyScore: Float(0.0), CoherenceScore: Float(1.0)},
		},
		{
			name:    "missing evaluator id",
			input:   Judgment{Role: RoleCritic},
			wantErr: true,
		},
		{
			name:    "novelty above range",
			input:   Judgment{EvaluatorID: "a", NoveltyScore: Float(1.01)},
			wantErr: true,
		},
		{
			name:    "negative coherence",
			input:   Judgment{EvaluatorID: "a", CoherenceScore: Float(-0.1)},
			wantErr: true,
		},
		{
			name:    "unknown role",
			input:   Judgment{EvaluatorID: "a", Role: Role("oracle")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewJudgment(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidJudgment)
				return
			}
			require.NoError(t, err)
			assert.False(t, got.CreatedAt.IsZero())
		})
	}
}

func TestNewJudgment_DefaultsRoleToCritic(t *testing.T) {
	got, err := NewJudgment(Judgment{EvaluatorID: "a"})
	require.NoError(t, err)
	assert.Equal(t, RoleCritic, got.Role)
}

func TestNewJudgment_PreservesCreatedAt(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	got, err := NewJudgment(Judgment{EvaluatorID: "a", CreatedAt: ts})
	require.NoError(t, err)
	assert.Equal(t, ts, got.CreatedAt)
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleLogicChecker, RoleContradictionFinder, RoleNoveltyAssessor, RoleEdgeCaseGenerator, RoleCritic} {
		assert.True(t, r.Valid(), r)
	}
	assert.False(t, Role("").Valid())
	assert.False(t, Role("sage").Valid())
}
