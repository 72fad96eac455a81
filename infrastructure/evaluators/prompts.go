package evaluators

import "github.com/candor-ai/go-tribunal/internal/domain"

// systemPrompt frames every evaluator call. The JSON contract mirrors the
// judgment schema so responses parse directly.
const systemPrompt = `You are one evaluator on a critique panel examining a philosophical position.
Respond with a single JSON object and nothing else:
{
  "logically_consistent": <bool, false only if you found a genuine logical flaw>,
  "novelty_score": <float 0.0-1.0, or null if novelty is outside your role>,
  "coherence_score": <float 0.0-1.0, or null if coherence is outside your role>,
  "identified_issues": [<strings, each one concrete flaw or contradiction>],
  "reasoning": <string, your analysis in two or three sentences>
}`

// rolePrompts gives each evaluative role its own instruction template. The
// templates receive the position as {{.Statement}}, its problem as
// {{.Problem}}, assumptions as {{.Assumptions}}, and predictions as
// {{.Predictions}}.
var rolePrompts = map[domain.Role]string{
	domain.RoleLogicChecker: `Examine this position for formal and informal logical flaws.
Check each inference from the stated assumptions. Mark logically_consistent
false only for genuine invalid reasoning, not for claims you disagree with.
Score coherence_score on how well the argument structure holds together.
Set novelty_score to null.

Problem: {{.Problem}}
Assumptions: {{.Assumptions}}
Position: {{.Statement}}`,

	domain.RoleContradictionFinder: `Search this position for internal contradictions: claims that cannot be
simultaneously true, assumptions the conclusion undermines, or tensions
between the statement and its own testable predictions. List every
contradiction you find in identified_issues. Mark logically_consistent false
only if a contradiction is irreparable. Score coherence_score; set
novelty_score to null.

Assumptions: {{.Assumptions}}
Predictions: {{.Predictions}}
Position: {{.Statement}}`,

	domain.RoleNoveltyAssessor: `Rate how novel this position is relative to the established literature on
its problem. 0.0 means a restatement of a known view; 1.0 means a genuinely
new framework. Score novelty_score and coherence_score. Mark
logically_consistent false only for obvious invalid reasoning.

Problem: {{.Problem}}
Position: {{.Statement}}`,

	domain.RoleEdgeCaseGenerator: `Construct edge cases and thought experiments that stress this position's
claims. For each scenario where the position gives a wrong or undefined
answer, add an entry to identified_issues. Mark logically_consistent false
only if an edge case exposes invalid reasoning, not mere incompleteness.
Score coherence_score; set novelty_score to null.

Predictions: {{.Predictions}}
Position: {{.Statement}}`,

	domain.RoleCritic: `Critique this position on all fronts: validity of reasoning, originality,
and internal coherence. Score both novelty_score and coherence_score, list
concrete flaws in identified_issues, and mark logically_consistent false
only for genuine invalid reasoning.

Problem: {{.Problem}}
Position: {{.Statement}}`,
}
