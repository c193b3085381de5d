package flow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// responseSchema renders the JSON schema of the expected response struct so
// prompts can pin providers to an exact structured shape.
func responseSchema(v any) string {
	reflector := jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
	}
	schema := reflector.Reflect(v)
	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		// Reflection over our own static types; only exotic field types fail.
		return ""
	}
	return string(out)
}

const jsonOnly = "Return ONLY valid JSON, no other text."

func ideasPrompt(input UserInput) string {
	return fmt.Sprintf(`Given this topic and intent, generate 4-5 underexplored angles.

Topic: %s
Intent: %s

Requirements:
- At least 3 ideas must reference specific authors/thinkers who have written about related concepts
- 1-2 ideas can be your own synthesis (mark as model-generated, source "model-generated")
- Focus on angles that are NOT mainstream

Return a JSON array whose elements match this schema:
%s

%s`, input.Topic, input.Intent, responseSchema(&Idea{}), jsonOnly)
}

func scoringPrompt(ideas []Idea) string {
	var list strings.Builder
	for i, idea := range ideas {
		fmt.Fprintf(&list, "%d. %s: %s (Source: %s)\n", i+1, idea.Name, idea.Description, idea.Source)
	}

	return fmt.Sprintf(`Score each idea for ORIGINALITY (1-10).
High scores = genuinely novel, underexplored, non-obvious.
Low scores = well-trodden, obvious, mainstream.

Ideas:
%s
Score every idea exactly once, using its zero-based index.

Return a JSON array whose elements match this schema:
%s

%s`, list.String(), responseSchema(&ideaScore{}), jsonOnly)
}

func formatPrompt(selected ScoredIdea, input UserInput) string {
	return fmt.Sprintf(`Given this idea and user intent, design the output format.

Idea: %s
Description: %s
User topic: %s
User intent: %s

Requirements:
- Choose a format that EMBODIES the idea (not just describes it)
- Formats: poem, quotes, micro_essay, aphorisms, dialogue
- Define 3-5 evaluation criteria including "surprise_density" (insight per sentence)
- Set minimum_bar (1-10) based on topic complexity

Return JSON matching this schema:
%s

%s`, selected.Idea.Name, selected.Idea.Description, input.Topic, input.Intent,
		responseSchema(&FormatSpec{}), jsonOnly)
}

func draftPrompt(selected ScoredIdea, spec FormatSpec, wordLimit int) string {
	return fmt.Sprintf(`Create a %s that embodies this idea.

Idea: %s
Description: %s
Why underexplored: %s

HARD CONSTRAINT: Maximum %d words for the main content.

Format requirements:
%s

The explainer must be 2 sentences max, stating the core insight.

Return JSON matching this schema:
%s

%s`, spec.FormatType, selected.Idea.Name, selected.Idea.Description,
		selected.Idea.WhyUnderexplored, wordLimit, spec.Rationale,
		responseSchema(&draftResponse{}), jsonOnly)
}

func evaluationPrompt(draft Draft, spec FormatSpec) string {
	var criteria strings.Builder
	for _, c := range spec.Criteria {
		fmt.Fprintf(&criteria, "- %s\n", c)
	}

	return fmt.Sprintf(`Evaluate this draft against the criteria.

Draft:
%s

Explainer:
%s

Criteria (score each 1-10):
%s
Requirements:
- Be harsh but fair
- Feedback must be specific and actionable
- Maximum 3 feedback points

Return JSON matching this schema:
%s

%s`, draft.Content, draft.Explainer, criteria.String(),
		responseSchema(&evaluationResponse{}), jsonOnly)
}

func refinePrompt(draft Draft, eval Evaluation, spec FormatSpec, selected ScoredIdea, wordLimit int) string {
	var feedback strings.Builder
	for _, f := range eval.Feedback {
		fmt.Fprintf(&feedback, "- %s\n", f)
	}

	return fmt.Sprintf(`Improve this %s based on feedback.

Current draft:
%s

Feedback to address:
%s
Current score: %.1f
Target: %.1f

HARD CONSTRAINT: Maximum %d words.

Original idea for reference:
%s: %s

Return JSON matching this schema:
%s

%s`, spec.FormatType, draft.Content, feedback.String(), eval.TotalScore,
		spec.MinimumBar, wordLimit, selected.Idea.Name, selected.Idea.Description,
		responseSchema(&draftResponse{}), jsonOnly)
}

func diagnosisPrompt(drafts []Draft, evals []Evaluation, spec FormatSpec, selected ScoredIdea) string {
	var history strings.Builder
	for i, d := range drafts {
		if i < len(evals) {
			fmt.Fprintf(&history, "V%d: score=%.1f\n", d.Version, evals[i].TotalScore)
		}
	}

	return fmt.Sprintf(`Analyze why this flow failed to meet the quality bar.

Idea: %s
Format: %s
Minimum bar: %.1f

Score history:
%s
Final draft:
%s

Diagnose in 3 sentences max:
- Was the initial idea weak?
- Was the format wrong?
- Was execution the problem?
- Was the bar unrealistic for this topic?

Return plain text, no JSON.`, selected.Idea.Name, spec.FormatType, spec.MinimumBar,
		history.String(), drafts[len(drafts)-1].Content)
}
