package flow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaunpack/config"
	"ideaunpack/internal/logging"
)

// stubOps scripts the controller's collaborators: each evaluation pops the
// next total score, refinement bumps the version, diagnosis reports the
// final score against the bar.
type stubOps struct {
	scores           []float64
	plateauThreshold float64
	forcePlateau     bool
	evalErr          error
	refineErr        error

	evalCalls     int
	refineCalls   int
	diagnoseCalls int
}

func (s *stubOps) Evaluate(_ context.Context, _ Draft, _ FormatSpec, history []float64) (Evaluation, error) {
	if s.evalErr != nil {
		return Evaluation{}, s.evalErr
	}
	score := s.scores[s.evalCalls]
	s.evalCalls++

	combined := make([]float64, 0, len(history)+1)
	combined = append(combined, history...)
	combined = append(combined, score)

	return Evaluation{
		Scores:          map[string]float64{"surprise_density": score},
		TotalScore:      score,
		Feedback:        []string{"tighten the opening"},
		PlateauDetected: s.forcePlateau || DetectPlateau(combined, s.plateauThreshold),
	}, nil
}

func (s *stubOps) Refine(_ context.Context, draft Draft, _ Evaluation, _ FormatSpec, _ ScoredIdea) (Draft, error) {
	if s.refineErr != nil {
		return Draft{}, s.refineErr
	}
	s.refineCalls++
	return Draft{
		Content:   fmt.Sprintf("refined content v%d", draft.Version+1),
		Explainer: draft.Explainer,
		WordCount: draft.WordCount,
		Version:   draft.Version + 1,
	}, nil
}

func (s *stubOps) DiagnoseFailure(_ context.Context, drafts []Draft, evals []Evaluation, spec FormatSpec, _ ScoredIdea) (string, error) {
	s.diagnoseCalls++
	final := evals[len(evals)-1].TotalScore
	return fmt.Sprintf("final score %.1f did not reach bar %.1f after %d drafts",
		final, spec.MinimumBar, len(drafts)), nil
}

func newTestController(t *testing.T, ops *stubOps, opts ...config.ConfigOption) *Controller {
	t.Helper()
	cfg := config.New(opts...)
	ops.plateauThreshold = cfg.PlateauThreshold
	logger := logging.NewMockLogger()
	return NewController(cfg, logger, NewTrail(logger), ops)
}

func testSpec(bar float64) FormatSpec {
	return FormatSpec{
		FormatType: FormatMicroEssay,
		Rationale:  "compression suits the idea",
		Criteria:   []string{"clarity", "coherence", "surprise_density"},
		MinimumBar: bar,
	}
}

func testDraft() Draft {
	return Draft{Content: "first take", Explainer: "the core insight", WordCount: 42, Version: 1}
}

func TestControllerAcceptsOnFirstCycle(t *testing.T) {
	ops := &stubOps{scores: []float64{9.0}}
	controller := newTestController(t, ops)

	result, err := controller.Run(context.Background(), testDraft(), testSpec(8.5), ScoredIdea{})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.CyclesUsed)
	assert.Equal(t, 9.0, result.FinalScore)
	assert.Equal(t, 1, result.FinalDraft.Version)
	assert.Equal(t, StateAccepted, controller.State())
	assert.Equal(t, 0, ops.refineCalls, "acceptance must stop the loop immediately")
	assert.Equal(t, 0, ops.diagnoseCalls)
}

func TestControllerNeverExceedsMaxCycles(t *testing.T) {
	ops := &stubOps{scores: []float64{1.0, 2.0, 3.0, 4.0, 5.0}}
	controller := newTestController(t, ops, config.SetMaxRefinementCycles(3))

	result, err := controller.Run(context.Background(), testDraft(), testSpec(9.5), ScoredIdea{})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 3, ops.evalCalls)
	assert.Equal(t, 2, ops.refineCalls, "no refinement after the last cycle")
	assert.Equal(t, 3, result.CyclesUsed)
	assert.Equal(t, StateExhausted, controller.State())
}

func TestAcceptanceBeatsPlateau(t *testing.T) {
	ops := &stubOps{scores: []float64{9.0}, forcePlateau: true}
	controller := newTestController(t, ops)

	result, err := controller.Run(context.Background(), testDraft(), testSpec(8.5), ScoredIdea{})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, StateAccepted, controller.State())
	assert.Equal(t, 0, ops.diagnoseCalls)
}

func TestPlateauStopsEarly(t *testing.T) {
	ops := &stubOps{scores: []float64{5.0, 5.3, 5.5, 9.9}}
	controller := newTestController(t, ops, config.SetMaxRefinementCycles(5))

	result, err := controller.Run(context.Background(), testDraft(), testSpec(8.5), ScoredIdea{})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.CyclesUsed)
	assert.Equal(t, 3, ops.evalCalls, "plateau must stop the loop before the budget runs out")
	assert.Equal(t, StatePlateaued, controller.State())
	assert.Equal(t, 1, ops.diagnoseCalls)
	assert.NotEmpty(t, result.FailureReason)
}

func TestDraftVersionsAndHistoryLengths(t *testing.T) {
	ops := &stubOps{scores: []float64{3.0, 4.0, 5.0}}
	controller := newTestController(t, ops, config.SetMaxRefinementCycles(3))

	_, err := controller.Run(context.Background(), testDraft(), testSpec(9.0), ScoredIdea{})
	require.NoError(t, err)

	drafts := controller.Drafts()
	evals := controller.Evaluations()
	require.Equal(t, len(drafts), len(evals))
	for i, draft := range drafts {
		assert.Equal(t, i+1, draft.Version, "versions increase by exactly one, never reused or skipped")
	}
}

func TestExhaustedRunDiagnosesFinalScore(t *testing.T) {
	// Improvements are 1.9 then 0.1: only the most recent pair is checked,
	// and 1.9 is not small, so the run exhausts its budget instead of
	// plateauing.
	ops := &stubOps{scores: []float64{6.0, 7.9, 8.0}}
	controller := newTestController(t, ops,
		config.SetMaxRefinementCycles(3), config.SetPlateauThreshold(0.5))

	result, err := controller.Run(context.Background(), testDraft(), testSpec(8.5), ScoredIdea{})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, StateExhausted, controller.State())
	assert.Equal(t, 3, result.CyclesUsed)
	assert.Equal(t, 8.0, result.FinalScore)
	assert.Contains(t, result.FailureReason, "8.0")
	assert.Contains(t, result.FailureReason, "8.5")
}

func TestAcceptedOnSecondCycle(t *testing.T) {
	ops := &stubOps{scores: []float64{7.0, 9.0}}
	controller := newTestController(t, ops, config.SetMaxRefinementCycles(3))

	result, err := controller.Run(context.Background(), testDraft(), testSpec(8.5), ScoredIdea{})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.CyclesUsed)
	assert.Equal(t, 9.0, result.FinalScore)
	assert.Equal(t, 2, result.FinalDraft.Version)
	assert.Equal(t, 0, ops.diagnoseCalls, "no failure diagnosis on success")
}

func TestEvaluationErrorAbortsWithoutResult(t *testing.T) {
	ops := &stubOps{evalErr: errors.New("provider unreachable")}
	controller := newTestController(t, ops)

	result, err := controller.Run(context.Background(), testDraft(), testSpec(8.5), ScoredIdea{})
	require.Error(t, err)
	assert.Nil(t, result, "a failed cycle ends the run with no partial result")
}

func TestRefinementErrorAbortsWithoutResult(t *testing.T) {
	ops := &stubOps{scores: []float64{5.0}, refineErr: errors.New("provider unreachable")}
	controller := newTestController(t, ops, config.SetMaxRefinementCycles(3))

	result, err := controller.Run(context.Background(), testDraft(), testSpec(8.5), ScoredIdea{})
	require.Error(t, err)
	assert.Nil(t, result)
}
