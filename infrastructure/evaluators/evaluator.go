// Package evaluators provides the LLM-backed critique panel: one evaluator
// per role, each prompting its model for a structured judgment of a
// candidate position. Evaluators are stateless after construction and safe
// for concurrent use.
package evaluators

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/go-playground/validator/v10"

	"github.com/candor-ai/go-tribunal/infrastructure/llm"
	"github.com/candor-ai/go-tribunal/internal/domain"
	"github.com/candor-ai/go-tribunal/internal/ports"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config configures one LLM-backed evaluator.
type Config struct {
	// ID identifies the evaluator, unique within its pool.
	ID string `validate:"required"`

	// Role selects the prompt template.
	Role domain.Role `validate:"required"`

	// Temperature controls response randomness.
	Temperature float64 `validate:"min=0,max=2"`

	// MaxTokens bounds the judgment response length. Zero means the
	// client default.
	MaxTokens int `validate:"min=0"`
}

// LLMEvaluator judges positions by prompting a model for a structured
// response in the judgment schema.
type LLMEvaluator struct {
	cfg    Config
	client ports.LLMClient
	tmpl   *template.Template
}

var _ ports.Evaluator = (*LLMEvaluator)(nil)

// New builds an evaluator for the configured role.
func New(cfg Config, client ports.LLMClient) (*LLMEvaluator, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("evaluator config: %w", err)
	}
	if !cfg.Role.Valid() {
		return nil, fmt.Errorf("evaluator %s: unknown role %q", cfg.ID, cfg.Role)
	}
	if client == nil {
		return nil, fmt.Errorf("evaluator %s: llm client is required", cfg.ID)
	}

	prompt, ok := rolePrompts[cfg.Role]
	if !ok {
		return nil, fmt.Errorf("evaluator %s: no prompt for role %q", cfg.ID, cfg.Role)
	}
	tmpl, err := template.New(string(cfg.Role)).Parse(prompt)
	if err != nil {
		return nil, fmt.Errorf("evaluator %s: parsing prompt template: %w", cfg.ID, err)
	}

	return &LLMEvaluator{cfg: cfg, client: client, tmpl: tmpl}, nil
}

// ID returns the evaluator identifier.
func (e *LLMEvaluator) ID() string { return e.cfg.ID }

// Role returns the evaluative capacity this evaluator exercises.
func (e *LLMEvaluator) Role() domain.Role { return e.cfg.Role }

// judgmentResponse is the wire schema evaluating models respond in.
type judgmentResponse struct {
	LogicallyConsistent bool     `json:"logically_consistent"`
	NoveltyScore        *float64 `json:"novelty_score"`
	CoherenceScore      *float64 `json:"coherence_score"`
	IdentifiedIssues    []string `json:"identified_issues"`
	Reasoning           string   `json:"reasoning" validate:"required"`
}

// Evaluate prompts the model with the role template and parses the JSON
// judgment out of the response.
func (e *LLMEvaluator) Evaluate(ctx context.Context, position domain.Position) (domain.Judgment, error) {
	prompt, err := e.renderPrompt(position)
	if err != nil {
		return domain.Judgment{}, err
	}

	options := map[string]any{
		"system":      systemPrompt,
		"temperature": e.cfg.Temperature,
	}
	if e.cfg.MaxTokens > 0 {
		options["max_tokens"] = e.cfg.MaxTokens
	}

	response, err := e.client.Complete(ctx, prompt, options)
	if err != nil {
		return domain.Judgment{}, fmt.Errorf("evaluator %s: %w", e.cfg.ID, err)
	}

	raw := llm.ExtractJSON(response)
	if raw == "" {
		return domain.Judgment{}, fmt.Errorf("%w: evaluator %s: no JSON object in response",
			ports.ErrMalformedResponse, e.cfg.ID)
	}

	var parsed judgmentResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return domain.Judgment{}, fmt.Errorf("%w: evaluator %s: %v",
			ports.ErrMalformedResponse, e.cfg.ID, err)
	}
	if err := validate.Struct(&parsed); err != nil {
		return domain.Judgment{}, fmt.Errorf("%w: evaluator %s: %v",
			ports.ErrMalformedResponse, e.cfg.ID, err)
	}

	return domain.NewJudgment(domain.Judgment{
		EvaluatorID:         e.cfg.ID,
		Role:                e.cfg.Role,
		LogicallyConsistent: parsed.LogicallyConsistent,
		NoveltyScore:        parsed.NoveltyScore,
		CoherenceScore:      parsed.CoherenceScore,
		IdentifiedIssues:    parsed.IdentifiedIssues,
		Reasoning:           parsed.Reasoning,
	})
}

func (e *LLMEvaluator) renderPrompt(position domain.Position) (string, error) {
	data := struct {
		Problem     string
		Statement   string
		Assumptions string
		Predictions string
	}{
		Problem:     position.Problem,
		Statement:   position.Statement,
		Assumptions: joinOrNone(position.Assumptions),
		Predictions: joinOrNone(position.TestablePredictions),
	}
	var sb strings.Builder
	if err := e.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("evaluator %s: rendering prompt: %w", e.cfg.ID, err)
	}
	return sb.String(), nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none stated)"
	}
	return "- " + strings.Join(items, "\n- ")
}
