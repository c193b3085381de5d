package flow

import (
	"context"
	"fmt"

	"ideaunpack/config"
	"ideaunpack/internal/logging"
)

// State is the refinement controller's position in its state machine.
type State int

const (
	StateDrafting State = iota
	StateEvaluating
	StateAccepted
	StatePlateaued
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateDrafting:
		return "DRAFTING"
	case StateEvaluating:
		return "EVALUATING"
	case StateAccepted:
		return "ACCEPTED"
	case StatePlateaued:
		return "PLATEAUED"
	case StateExhausted:
		return "EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}

// refinementOps is the slice of pipeline operations the controller drives.
// *Steps implements it; tests substitute scripted stubs.
type refinementOps interface {
	Evaluate(ctx context.Context, draft Draft, spec FormatSpec, history []float64) (Evaluation, error)
	Refine(ctx context.Context, draft Draft, eval Evaluation, spec FormatSpec, selected ScoredIdea) (Draft, error)
	DiagnoseFailure(ctx context.Context, drafts []Draft, evals []Evaluation, spec FormatSpec, selected ScoredIdea) (string, error)
}

// Controller runs the draft-evaluate-refine loop. It exclusively owns the
// draft, evaluation, and score histories for one session; cycles are
// strictly sequential, and the cycle budget is a hard ceiling regardless of
// score trajectory.
//
// Per cycle, in order: acceptance check (meeting the bar always wins over a
// plateau signal), plateau check, then refine if budget remains, else
// exhaustion.
type Controller struct {
	ops    refinementOps
	cfg    *config.Config
	trail  *Trail
	logger logging.Logger

	// OnCycle, when set, observes each completed evaluation cycle.
	OnCycle func(cycle int, draft Draft, eval Evaluation)

	state  State
	drafts []Draft
	evals  []Evaluation
	scores []float64
}

// NewController creates a controller over the given pipeline operations.
func NewController(cfg *config.Config, logger logging.Logger, trail *Trail, ops refinementOps) *Controller {
	return &Controller{
		ops:    ops,
		cfg:    cfg,
		trail:  trail,
		logger: logger,
		state:  StateDrafting,
	}
}

// State returns the controller's current (or terminal) state.
func (c *Controller) State() State {
	return c.state
}

// Drafts returns the draft history accumulated so far.
func (c *Controller) Drafts() []Draft {
	out := make([]Draft, len(c.drafts))
	copy(out, c.drafts)
	return out
}

// Evaluations returns the evaluation history accumulated so far.
func (c *Controller) Evaluations() []Evaluation {
	out := make([]Evaluation, len(c.evals))
	copy(out, c.evals)
	return out
}

// Run drives the loop from an existing version-1 draft to a terminal
// state. It returns a FlowResult on every terminal state, including the
// non-success ones; it returns an error only when an external call fails,
// in which case the run ends with no FlowResult at all.
func (c *Controller) Run(ctx context.Context, initial Draft, spec FormatSpec, selected ScoredIdea) (*FlowResult, error) {
	c.drafts = append(c.drafts, initial)
	draft := initial

	for cycle := 1; cycle <= c.cfg.MaxRefinementCycles; cycle++ {
		c.state = StateEvaluating
		eval, err := c.ops.Evaluate(ctx, draft, spec, c.scores)
		if err != nil {
			return nil, err
		}
		c.evals = append(c.evals, eval)
		c.scores = append(c.scores, eval.TotalScore)

		c.logger.Info("cycle evaluated",
			"cycle", cycle, "version", draft.Version,
			"score", eval.TotalScore, "bar", spec.MinimumBar)
		if c.OnCycle != nil {
			c.OnCycle(cycle, draft, eval)
		}

		// Acceptance is checked before the plateau signal: meeting the
		// bar always wins.
		if eval.TotalScore >= spec.MinimumBar {
			c.state = StateAccepted
			c.trail.Add("accepted", "pipeline",
				fmt.Sprintf("v%d score=%.1f bar=%.1f", draft.Version, eval.TotalScore, spec.MinimumBar))
			return &FlowResult{
				Success:    true,
				FinalDraft: &draft,
				FinalScore: eval.TotalScore,
				CyclesUsed: cycle,
				Provenance: c.trail.Records(),
			}, nil
		}

		if eval.PlateauDetected {
			c.state = StatePlateaued
			c.trail.Add("plateaued", "pipeline", fmt.Sprintf("after cycle %d", cycle))
			break
		}

		if cycle == c.cfg.MaxRefinementCycles {
			c.state = StateExhausted
			c.trail.Add("exhausted", "pipeline", fmt.Sprintf("after cycle %d", cycle))
			break
		}

		next, err := c.ops.Refine(ctx, draft, eval, spec, selected)
		if err != nil {
			return nil, err
		}
		c.drafts = append(c.drafts, next)
		draft = next
	}

	reason, err := c.ops.DiagnoseFailure(ctx, c.drafts, c.evals, spec, selected)
	if err != nil {
		return nil, err
	}

	return &FlowResult{
		Success:       false,
		FinalDraft:    &draft,
		FinalScore:    c.scores[len(c.scores)-1],
		CyclesUsed:    len(c.evals),
		FailureReason: reason,
		Provenance:    c.trail.Records(),
	}, nil
}
