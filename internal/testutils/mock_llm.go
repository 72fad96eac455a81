// Package testutils provides shared test doubles: a scriptable LLM client
// and canned evaluators for exercising the pipeline without network calls.
package testutils

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/candor-ai/go-tribunal/internal/domain"
	"github.com/candor-ai/go-tribunal/internal/ports"
)

// MockLLMClient is a scriptable ports.LLMClient. Responses are matched by
// prompt substring in registration order; the default response covers
// everything else. Safe for concurrent use.
type MockLLMClient struct {
	mu sync.Mutex

	model           string
	defaultResponse string
	responses       []patternResponse
	err             error
	calls           []string
}

type patternResponse struct {
	substring string
	response  string
}

var _ ports.LLMClient = (*MockLLMClient)(nil)

// NewMockLLMClient returns a mock reporting the given model name.
func NewMockLLMClient(model string) *MockLLMClient {
	return &MockLLMClient{
		model:           model,
		defaultResponse: `{"logically_consistent": true, "novelty_score": 0.8, "coherence_score": 0.9, "identified_issues": [], "reasoning": "default mock response"}`,
	}
}

// SetDefaultResponse sets the response for unmatched prompts.
func (m *MockLLMClient) SetDefaultResponse(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultResponse = response
}

// AddResponse registers a response for prompts containing substring.
func (m *MockLLMClient) AddResponse(substring, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, patternResponse{substring: substring, response: response})
}

// SetError makes every call fail with err until cleared with nil.
func (m *MockLLMClient) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the prompts received so far.
func (m *MockLLMClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// Complete returns the scripted response for the prompt, honoring ctx
// cancellation.
func (m *MockLLMClient) Complete(ctx context.Context, prompt string, _ map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, prompt)

	if m.err != nil {
		return "", m.err
	}
	for _, pr := range m.responses {
		if strings.Contains(prompt, pr.substring) {
			return pr.response, nil
		}
	}
	return m.defaultResponse, nil
}

// EstimateTokens uses the four-characters-per-token heuristic.
func (m *MockLLMClient) EstimateTokens(text string) (int, error) {
	return (len(text) + 3) / 4, nil
}

// GetModel returns the configured model name.
func (m *MockLLMClient) GetModel() string { return m.model }

// StubEvaluator returns a fixed judgment or error for every position.
type StubEvaluator struct {
	EvaluatorID string
	RoleValue   domain.Role
	Judgment    domain.Judgment
	Err         error

	// Delay postpones the response, simulating a slow evaluator.
	Delay time.Duration

	// Block makes Evaluate hang until ctx is done, simulating a stuck
	// evaluator.
	Block bool
}

var _ ports.Evaluator = (*StubEvaluator)(nil)

// ID returns the stub's identifier.
func (s *StubEvaluator) ID() string { return s.EvaluatorID }

// Role returns the stub's role, defaulting to critic.
func (s *StubEvaluator) Role() domain.Role {
	if s.RoleValue == "" {
		return domain.RoleCritic
	}
	return s.RoleValue
}

// Evaluate returns the canned judgment or error.
func (s *StubEvaluator) Evaluate(ctx context.Context, _ domain.Position) (domain.Judgment, error) {
	if s.Block {
		<-ctx.Done()
		return domain.Judgment{}, fmt.Errorf("evaluator %s: %w", s.EvaluatorID, ctx.Err())
	}
	if s.Delay > 0 {
		select {
		case <-ctx.Done():
			return domain.Judgment{}, ctx.Err()
		case <-time.After(s.Delay):
		}
	}
	if s.Err != nil {
		return domain.Judgment{}, s.Err
	}
	j := s.Judgment
	j.EvaluatorID = s.EvaluatorID
	j.Role = s.Role()
	return j, nil
}
