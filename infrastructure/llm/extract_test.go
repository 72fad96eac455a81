package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json fence with surrounding prose",
			input:    "Here you go:\n```json\n{\"score\": 0.9}\n```\nDone.",
			expected: `{"score": 0.9}`,
		},
		{
			name:     "generic fence",
			input:    "```\n{\"score\": 0.8}\n```",
			expected: `{"score": 0.8}`,
		},
		{
			name:     "bare object",
			input:    `{"score": 0.7}`,
			expected: `{"score": 0.7}`,
		},
		{
			name:     "object embedded in prose",
			input:    `My verdict is {"score": 0.6} overall.`,
			expected: `{"score": 0.6}`,
		},
		{
			name:     "nested objects",
			input:    `{"outer": {"inner": 1}, "score": 0.5}`,
			expected: `{"outer": {"inner": 1}, "score": 0.5}`,
		},
		{
			name:     "braces inside strings",
			input:    `{"reasoning": "uses {braces} and } inside", "score": 0.4}`,
			expected: `{"reasoning": "uses {braces} and } inside", "score": 0.4}`,
		},
		{
			name:     "escaped quotes",
			input:    `{"reasoning": "so called \"novelty\"", "score": 0.3}`,
			expected: `{"reasoning": "so called \"novelty\"", "score": 0.3}`,
		},
		{
			name:     "no object",
			input:    "plain prose without structure",
			expected: "",
		},
		{
			name:     "unterminated object",
			input:    `{"score": 0.9`,
			expected: "",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractJSON(tt.input))
		})
	}
}
