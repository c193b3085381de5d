// Package flow implements the idea-unpacking pipeline: grounded idea
// generation, dual-rater scoring, format design, and the iterative
// draft-evaluate-refine controller with plateau detection.
package flow

// UserInput captures the topic and intent supplied at session start.
type UserInput struct {
	Topic  string `json:"topic" validate:"required,min=1,max=50"`
	Intent string `json:"intent" validate:"required,min=1,max=200"`
}

// Idea is one underexplored angle on the topic, either grounded in a named
// author or synthesized by the model.
type Idea struct {
	Name             string `json:"name" validate:"required"`
	Description      string `json:"description" validate:"required"`
	WhyUnderexplored string `json:"why_underexplored" validate:"required"`
	Source           string `json:"source" validate:"required"`
	IsModelGenerated bool   `json:"is_model_generated"`
}

// ScoredIdea pairs an idea with the two raters' originality scores.
// ScoreDelta measures rater disagreement; CombinedScore is their mean.
type ScoredIdea struct {
	Idea          Idea    `json:"idea"`
	Score1        float64 `json:"score_1"`
	Score2        float64 `json:"score_2"`
	Rationale1    string  `json:"rationale_1"`
	Rationale2    string  `json:"rationale_2"`
	ScoreDelta    float64 `json:"score_delta"`
	CombinedScore float64 `json:"combined_score"`
}

// FormatType enumerates the output formats the pipeline can produce.
type FormatType string

const (
	FormatPoem       FormatType = "poem"
	FormatQuotes     FormatType = "quotes"
	FormatMicroEssay FormatType = "micro_essay"
	FormatAphorisms  FormatType = "aphorisms"
	FormatDialogue   FormatType = "dialogue"
)

// FormatSpec is the target output specification produced once per session:
// the format, why it fits, the evaluation criteria, and the total score a
// draft must reach to be accepted. Immutable after creation; shared
// read-only by the evaluator and refiner.
type FormatSpec struct {
	FormatType FormatType `json:"format_type" validate:"required,oneof=poem quotes micro_essay aphorisms dialogue"`
	Rationale  string     `json:"rationale" validate:"required"`
	Criteria   []string   `json:"criteria" validate:"required,min=3,max=5,dive,required"`
	MinimumBar float64    `json:"minimum_bar" validate:"required,gte=1,lte=10"`
}

// Draft is one candidate artifact. Drafts are immutable: refinement
// produces a new Draft with Version incremented, appended to the history.
// WordCount is recorded, not enforced; exceeding the word limit is a soft
// constraint violation.
type Draft struct {
	Content   string `json:"content"`
	Explainer string `json:"explainer"`
	WordCount int    `json:"word_count"`
	Version   int    `json:"version"`
}

// Evaluation scores one draft against the format's criteria. Feedback
// holds at most three remediation statements regardless of how many the
// evaluating provider returned. Evaluations pair 1:1 with drafts by
// position in their history lists.
type Evaluation struct {
	Scores          map[string]float64 `json:"scores"`
	TotalScore      float64            `json:"total_score"`
	Feedback        []string           `json:"feedback"`
	PlateauDetected bool               `json:"plateau_detected"`
}

// FlowResult is the terminal record of one session, created exactly once
// at pipeline termination. A quality-bar miss is a normal outcome
// (Success=false with a FailureReason), not an error.
type FlowResult struct {
	Success       bool       `json:"success"`
	FinalDraft    *Draft     `json:"final_draft,omitempty"`
	FinalScore    float64    `json:"final_score"`
	CyclesUsed    int        `json:"cycles_used"`
	FailureReason string     `json:"failure_reason,omitempty"`
	Provenance    []Record   `json:"provenance,omitempty"`
}
