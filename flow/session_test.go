package flow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaunpack/config"
	"ideaunpack/internal/logging"
	"ideaunpack/llm"
)

const (
	scoresAJSON = `[{"idea_index": 0, "score": 8.0, "rationale": "fresh"}, {"idea_index": 1, "score": 7.0, "rationale": "fine"}]`
	scoresBJSON = `[{"idea_index": 0, "score": 7.0, "rationale": "good"}, {"idea_index": 1, "score": 6.0, "rationale": "ok"}]`
	formatJSON  = `{"format_type": "aphorisms", "rationale": "dense and quotable", "criteria": ["clarity", "coherence", "surprise_density"], "minimum_bar": 8.5}`
	draftJSON   = `{"content": "a first pass at the idea", "explainer": "the core insight"}`
	refineJSON  = `{"content": "a sharper second pass", "explainer": "the core insight, sharpened"}`
)

func evalJSON(total string) string {
	return `{"scores": {"clarity": ` + total + `, "coherence": ` + total + `, "surprise_density": ` + total + `},
	  "total_score": ` + total + `, "feedback": ["compress the middle", "cut the hedge"]}`
}

func newTestSession(creative, raterA, raterB, judge *fakeGenerator, hooks Hooks,
	opts ...config.ConfigOption) *Session {
	cfg := config.New(opts...)
	logger := logging.NewMockLogger()
	return NewSession(cfg, logger, creative, raterA, raterB, judge, hooks)
}

func TestSessionAcceptsOnSecondCycle(t *testing.T) {
	creative := &fakeGenerator{name: "anthropic", responses: []string{ideasJSON, draftJSON, refineJSON}}
	raterA := &fakeGenerator{name: "openai", responses: []string{scoresAJSON}}
	raterB := &fakeGenerator{name: "deepseek", responses: []string{scoresBJSON}}
	judge := &fakeGenerator{name: "deepseek", responses: []string{formatJSON, evalJSON("7.0"), evalJSON("9.0")}}

	var observedCycles []int
	hooks := Hooks{
		OnCycle: func(cycle int, _ Draft, _ Evaluation) {
			observedCycles = append(observedCycles, cycle)
		},
	}
	session := newTestSession(creative, raterA, raterB, judge, hooks,
		config.SetMaxRefinementCycles(3))

	result, err := session.Run(context.Background(), UserInput{Topic: "attention", Intent: "reclaim focus"})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.CyclesUsed)
	assert.Equal(t, 9.0, result.FinalScore)
	assert.Equal(t, 2, result.FinalDraft.Version)
	assert.Equal(t, "a sharper second pass", result.FinalDraft.Content)
	assert.Empty(t, result.FailureReason)
	assert.Equal(t, []int{1, 2}, observedCycles)
	assert.NotEmpty(t, result.Provenance)
}

func TestSessionExhaustsBudgetAndDiagnoses(t *testing.T) {
	creative := &fakeGenerator{name: "anthropic", responses: []string{ideasJSON, draftJSON, refineJSON, refineJSON}}
	raterA := &fakeGenerator{name: "openai", responses: []string{scoresAJSON}}
	raterB := &fakeGenerator{name: "deepseek", responses: []string{scoresBJSON}}
	judge := &fakeGenerator{name: "deepseek", responses: []string{
		formatJSON,
		evalJSON("6.0"), evalJSON("7.9"), evalJSON("8.0"),
		"The execution never reached the density the bar demanded.",
	}}

	session := newTestSession(creative, raterA, raterB, judge, Hooks{},
		config.SetMaxRefinementCycles(3), config.SetPlateauThreshold(0.5))

	result, err := session.Run(context.Background(), UserInput{Topic: "attention", Intent: "reclaim focus"})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.CyclesUsed)
	assert.Equal(t, 8.0, result.FinalScore)
	assert.Equal(t, "The execution never reached the density the bar demanded.", result.FailureReason)
}

func TestSessionHonorsIdeaOverride(t *testing.T) {
	creative := &fakeGenerator{name: "anthropic", responses: []string{ideasJSON, draftJSON}}
	raterA := &fakeGenerator{name: "openai", responses: []string{scoresAJSON}}
	raterB := &fakeGenerator{name: "deepseek", responses: []string{scoresBJSON}}
	judge := &fakeGenerator{name: "deepseek", responses: []string{formatJSON, evalJSON("9.0")}}

	hooks := Hooks{
		ConfirmIdea: func(scored []ScoredIdea, top int, _ bool) int {
			assert.Equal(t, 0, top, "highest combined score is proposed")
			return 1
		},
	}
	session := newTestSession(creative, raterA, raterB, judge, hooks)

	result, err := session.Run(context.Background(), UserInput{Topic: "attention", Intent: "reclaim focus"})
	require.NoError(t, err)
	require.True(t, result.Success)

	// The draft prompt must reference the overridden idea, not the top one.
	draftPrompt := creative.prompts[1]
	assert.Contains(t, draftPrompt, "The archive of almosts")
}

func TestSessionRejectsInvalidInput(t *testing.T) {
	session := newTestSession(&fakeGenerator{}, &fakeGenerator{}, &fakeGenerator{}, &fakeGenerator{}, Hooks{})

	_, err := session.Run(context.Background(), UserInput{Topic: "", Intent: "reclaim focus"})
	require.Error(t, err)
	assert.True(t, llm.HasType(err, llm.ErrorTypeRequest))
}

func TestSessionAbortsOnServiceError(t *testing.T) {
	creative := &fakeGenerator{name: "anthropic", err: llm.NewError(llm.ErrorTypeService, "API error: status code 500", nil)}
	session := newTestSession(creative, &fakeGenerator{}, &fakeGenerator{}, &fakeGenerator{}, Hooks{})

	result, err := session.Run(context.Background(), UserInput{Topic: "attention", Intent: "reclaim focus"})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, llm.HasType(err, llm.ErrorTypeService))
}
