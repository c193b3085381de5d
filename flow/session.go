package flow

import (
	"context"

	"ideaunpack/config"
	"ideaunpack/internal/logging"
	"ideaunpack/llm"
)

// Hooks lets the caller observe and steer the session at its interactive
// points. Every hook is optional.
type Hooks struct {
	// ConfirmIdea shows the scored ideas and the pipeline's pick and
	// returns the index to use, allowing a user override.
	ConfirmIdea func(scored []ScoredIdea, top int, diverged bool) int

	// OnFormat observes the format specification once designed.
	OnFormat func(spec FormatSpec)

	// OnCycle observes each completed evaluation cycle.
	OnCycle func(cycle int, draft Draft, eval Evaluation)
}

// Session runs the whole pipeline for one topic: ideation, dual-rater
// scoring, selection, format design, then the refinement controller. One
// session, one topic, strictly sequential apart from the rater fork-join.
type Session struct {
	cfg    *config.Config
	steps  *Steps
	trail  *Trail
	logger logging.Logger
	hooks  Hooks
}

// NewSession wires a session from the four role generators.
func NewSession(cfg *config.Config, logger logging.Logger,
	creative, raterA, raterB, judge llm.Generator, hooks Hooks) *Session {
	trail := NewTrail(logger)
	return &Session{
		cfg:    cfg,
		steps:  NewSteps(cfg, logger, trail, creative, raterA, raterB, judge),
		trail:  trail,
		logger: logger,
		hooks:  hooks,
	}
}

// Run executes the pipeline end to end. A quality-bar miss returns a
// FlowResult with Success=false; an external-call or parse failure returns
// an error and no FlowResult.
func (s *Session) Run(ctx context.Context, input UserInput) (*FlowResult, error) {
	if err := llm.Validate(&input); err != nil {
		return nil, llm.NewError(llm.ErrorTypeRequest, "invalid user input", err)
	}
	s.trail.Add("input", "user", "topic="+input.Topic)

	ideas, err := s.steps.GenerateIdeas(ctx, input)
	if err != nil {
		return nil, err
	}

	scored, err := s.steps.ScoreIdeas(ctx, ideas)
	if err != nil {
		return nil, err
	}

	selected, diverged := s.steps.SelectTopIdea(scored)
	if s.hooks.ConfirmIdea != nil {
		top := indexOf(scored, selected)
		if choice := s.hooks.ConfirmIdea(scored, top, diverged); choice >= 0 && choice < len(scored) {
			selected = scored[choice]
		}
		s.trail.Add("selection_confirmed", "user", "idea="+selected.Idea.Name)
	}

	spec, err := s.steps.DesignFormat(ctx, selected, input)
	if err != nil {
		return nil, err
	}
	if s.hooks.OnFormat != nil {
		s.hooks.OnFormat(spec)
	}

	initial, err := s.steps.ComposeDraft(ctx, selected, spec)
	if err != nil {
		return nil, err
	}

	controller := NewController(s.cfg, s.logger, s.trail, s.steps)
	controller.OnCycle = s.hooks.OnCycle
	return controller.Run(ctx, initial, spec, selected)
}

func indexOf(scored []ScoredIdea, target ScoredIdea) int {
	for i := range scored {
		if scored[i].Idea.Name == target.Idea.Name {
			return i
		}
	}
	return 0
}
