// Package generation produces candidate positions by prompting a model for
// a structured response: the statement plus the assumptions, testable
// predictions, and self-identified contradictions the consensus rule and
// the critique panel consume.
package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/candor-ai/go-tribunal/infrastructure/llm"
	"github.com/candor-ai/go-tribunal/internal/domain"
	"github.com/candor-ai/go-tribunal/internal/ports"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

const generationSystemPrompt = `You develop rigorous, original philosophical positions.
Respond with a single JSON object and nothing else:
{
  "statement": <string, the position in one or two paragraphs>,
  "assumptions": [<strings, the premises the position rests on>],
  "testable_predictions": [<strings, falsifiable consequences, at least two>],
  "contradictions": [<strings, tensions you are aware of, possibly empty>]
}`

const generationPromptTemplate = `Take a position on this problem:

{{.Problem}}
{{- if .Domains}}

Areas of inquiry: {{.Domains}}
{{- end}}
{{- if .Constraints}}

Requirements the position must satisfy:
{{.Constraints}}
{{- end}}
{{- if .ExistingSolutions}}

Go beyond these existing answers:
{{.ExistingSolutions}}
{{- end}}
{{- if .InnovationVectors}}

Seek novelty along these directions:
{{.InnovationVectors}}
{{- end}}

Commit to concrete, falsifiable testable predictions.`

var promptTmpl = template.Must(template.New("generate").Parse(generationPromptTemplate))

// LLMGenerator implements ports.Generator over an LLM client.
type LLMGenerator struct {
	client ports.LLMClient
}

var _ ports.Generator = (*LLMGenerator)(nil)

// NewLLMGenerator builds a generator over the client.
func NewLLMGenerator(client ports.LLMClient) (*LLMGenerator, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	return &LLMGenerator{client: client}, nil
}

// positionResponse is the wire schema generating models respond in.
type positionResponse struct {
	Statement           string   `json:"statement" validate:"required"`
	Assumptions         []string `json:"assumptions"`
	TestablePredictions []string `json:"testable_predictions"`
	Contradictions      []string `json:"contradictions"`
}

// Generate prompts the model for a position and parses the structured
// response. The request is validated first so malformed requests fail
// before spending tokens.
func (g *LLMGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (domain.Position, error) {
	if err := validate.Struct(&req); err != nil {
		return domain.Position{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	prompt, err := renderPrompt(req)
	if err != nil {
		return domain.Position{}, err
	}

	options := map[string]any{"system": generationSystemPrompt}
	if req.Temperature > 0 {
		options["temperature"] = req.Temperature
	}

	response, err := g.client.Complete(ctx, prompt, options)
	if err != nil {
		return domain.Position{}, fmt.Errorf("generation request: %w", err)
	}

	raw := llm.ExtractJSON(response)
	if raw == "" {
		return domain.Position{}, fmt.Errorf("%w: no JSON object in generation response",
			ports.ErrMalformedResponse)
	}

	var parsed positionResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return domain.Position{}, fmt.Errorf("%w: %v", ports.ErrMalformedResponse, err)
	}
	if err := validate.Struct(&parsed); err != nil {
		return domain.Position{}, fmt.Errorf("%w: %v", ports.ErrMalformedResponse, err)
	}

	return domain.Position{
		ID:                  uuid.NewString(),
		Problem:             req.Problem,
		Statement:           parsed.Statement,
		Domains:             req.Domains,
		Assumptions:         parsed.Assumptions,
		TestablePredictions: parsed.TestablePredictions,
		Contradictions:      parsed.Contradictions,
		CreatedAt:           time.Now().UTC(),
	}, nil
}

func renderPrompt(req domain.GenerationRequest) (string, error) {
	domains := make([]string, len(req.Domains))
	for i, d := range req.Domains {
		domains[i] = string(d)
	}

	data := struct {
		Problem           string
		Domains           string
		Constraints       string
		ExistingSolutions string
		InnovationVectors string
	}{
		Problem:           req.Problem,
		Domains:           strings.Join(domains, ", "),
		Constraints:       bulleted(req.Constraints),
		ExistingSolutions: bulleted(req.ExistingSolutions),
		InnovationVectors: bulleted(req.InnovationVectors),
	}

	var sb strings.Builder
	if err := promptTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering generation prompt: %w", err)
	}
	return sb.String(), nil
}

func bulleted(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return "- " + strings.Join(items, "\n- ")
}
