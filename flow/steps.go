package flow

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"ideaunpack/config"
	"ideaunpack/internal/logging"
	"ideaunpack/llm"
)

// Wire shapes for structured provider responses. These deliberately differ
// from the public model: the evaluator may return more feedback than we
// keep, and drafts gain word counts and versions only after parsing.
type ideaScore struct {
	IdeaIndex int     `json:"idea_index" validate:"gte=0"`
	Score     float64 `json:"score" validate:"required,gte=1,lte=10"`
	Rationale string  `json:"rationale" validate:"required"`
}

type draftResponse struct {
	Content   string `json:"content" validate:"required"`
	Explainer string `json:"explainer" validate:"required"`
}

type evaluationResponse struct {
	Scores     map[string]float64 `json:"scores" validate:"required,dive,gte=1,lte=10"`
	TotalScore float64            `json:"total_score" validate:"required,gte=1,lte=10"`
	Feedback   []string           `json:"feedback" validate:"required,dive,required"`
}

// maxFeedback bounds how many remediation statements reach the refiner.
const maxFeedback = 3

// Steps executes the individual pipeline stages, one provider call per
// stage (two for the fork-join rater step). Every stage appends a
// provenance record and propagates provider/parse failures unchanged.
type Steps struct {
	cfg      *config.Config
	creative llm.Generator // ideation, drafting, refinement
	raterA   llm.Generator // first originality rater
	raterB   llm.Generator // second originality rater
	judge    llm.Generator // format design, evaluation, diagnosis
	trail    *Trail
	logger   logging.Logger
}

// NewSteps wires the pipeline stages to their generators.
func NewSteps(cfg *config.Config, logger logging.Logger, trail *Trail,
	creative, raterA, raterB, judge llm.Generator) *Steps {
	return &Steps{
		cfg:      cfg,
		creative: creative,
		raterA:   raterA,
		raterB:   raterB,
		judge:    judge,
		trail:    trail,
		logger:   logger,
	}
}

// GenerateIdeas asks the creative generator for 4-5 underexplored angles on
// the topic, at least three grounded in named authors.
func (s *Steps) GenerateIdeas(ctx context.Context, input UserInput) ([]Idea, error) {
	response, err := s.creative.Generate(ctx, ideasPrompt(input))
	if err != nil {
		return nil, err
	}
	ideas, err := llm.DecodeStrictSlice[Idea](response)
	if err != nil {
		return nil, err
	}
	s.trail.Add("ideation", s.creative.Name(), fmt.Sprintf("generated %d ideas", len(ideas)))
	return ideas, nil
}

// ScoreIdeas has the two raters score every idea for originality. The two
// calls run concurrently and join before scores are combined; this is the
// only fork-join point in the pipeline. An idea missing from either
// rater's response rejects the whole stage.
func (s *Steps) ScoreIdeas(ctx context.Context, ideas []Idea) ([]ScoredIdea, error) {
	prompt := scoringPrompt(ideas)

	var rawA, rawB string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rawA, err = s.raterA.Generate(gctx, prompt)
		return err
	})
	g.Go(func() error {
		var err error
		rawB, err = s.raterB.Generate(gctx, prompt)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scoresA, err := decodeScores(rawA, len(ideas))
	if err != nil {
		return nil, err
	}
	scoresB, err := decodeScores(rawB, len(ideas))
	if err != nil {
		return nil, err
	}

	scored := make([]ScoredIdea, 0, len(ideas))
	for i, idea := range ideas {
		a, b := scoresA[i], scoresB[i]
		delta := a.Score - b.Score
		if delta < 0 {
			delta = -delta
		}
		scored = append(scored, ScoredIdea{
			Idea:          idea,
			Score1:        a.Score,
			Score2:        b.Score,
			Rationale1:    a.Rationale,
			Rationale2:    b.Rationale,
			ScoreDelta:    delta,
			CombinedScore: (a.Score + b.Score) / 2,
		})
	}

	s.trail.Add("scoring", s.raterA.Name()+"+"+s.raterB.Name(),
		fmt.Sprintf("scored %d ideas", len(scored)))
	return scored, nil
}

// decodeScores parses one rater's response and indexes it by idea. Every
// idea must be scored exactly once; a missing index fails the stage rather
// than defaulting to a neutral score.
func decodeScores(raw string, ideaCount int) (map[int]ideaScore, error) {
	scores, err := llm.DecodeStrictSlice[ideaScore](raw)
	if err != nil {
		return nil, err
	}
	byIndex := make(map[int]ideaScore, len(scores))
	for _, score := range scores {
		byIndex[score.IdeaIndex] = score
	}
	for i := 0; i < ideaCount; i++ {
		if _, ok := byIndex[i]; !ok {
			return nil, llm.NewError(llm.ErrorTypeMalformedResponse,
				fmt.Sprintf("rater response missing score for idea %d", i), nil)
		}
	}
	return byIndex, nil
}

// SelectTopIdea returns the idea with the highest combined score and
// whether the raters diverged on it beyond the configured threshold.
func (s *Steps) SelectTopIdea(scored []ScoredIdea) (ScoredIdea, bool) {
	sorted := make([]ScoredIdea, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CombinedScore > sorted[j].CombinedScore
	})

	top := sorted[0]
	diverged := top.ScoreDelta > s.cfg.DivergenceThreshold
	if diverged {
		s.logger.Info("high rater divergence on selected idea",
			"idea", top.Idea.Name, "delta", top.ScoreDelta)
	}
	s.trail.Add("selection", "pipeline", fmt.Sprintf("top=%s", top.Idea.Name))
	return top, diverged
}

// DesignFormat asks the judge for the target output specification. The
// parsed minimum bar is floored at the configured minimum so a provider
// cannot set a trivially low acceptance threshold.
func (s *Steps) DesignFormat(ctx context.Context, selected ScoredIdea, input UserInput) (FormatSpec, error) {
	response, err := s.judge.Generate(ctx, formatPrompt(selected, input))
	if err != nil {
		return FormatSpec{}, err
	}
	spec, err := llm.DecodeStrict[FormatSpec](response)
	if err != nil {
		return FormatSpec{}, err
	}
	if spec.MinimumBar < s.cfg.MinimumBarFloor {
		s.logger.Debug("raising minimum bar to configured floor",
			"proposed", spec.MinimumBar, "floor", s.cfg.MinimumBarFloor)
		spec.MinimumBar = s.cfg.MinimumBarFloor
	}
	s.trail.Add("format", s.judge.Name(),
		fmt.Sprintf("type=%s, bar=%.1f", spec.FormatType, spec.MinimumBar))
	return spec, nil
}

// ComposeDraft produces the version-1 draft under the word ceiling. The
// ceiling is a generation constraint, not a hard post-check: an oversized
// draft is recorded as a constraint violation and kept.
func (s *Steps) ComposeDraft(ctx context.Context, selected ScoredIdea, spec FormatSpec) (Draft, error) {
	response, err := s.creative.Generate(ctx, draftPrompt(selected, spec, s.cfg.WordLimit),
		llm.WithMaxOutputWords(s.cfg.WordLimit))
	if err != nil {
		return Draft{}, err
	}
	parsed, err := llm.DecodeStrict[draftResponse](response)
	if err != nil {
		return Draft{}, err
	}

	draft := Draft{
		Content:   parsed.Content,
		Explainer: parsed.Explainer,
		WordCount: len(strings.Fields(parsed.Content)),
		Version:   1,
	}
	s.checkWordLimit(draft)
	s.trail.Add("draft_v1", s.creative.Name(), fmt.Sprintf("words=%d", draft.WordCount))
	return draft, nil
}

// Evaluate scores a draft against the format's criteria and attaches the
// plateau signal computed over the score history including this result.
// Feedback is truncated to maxFeedback entries regardless of how many the
// provider returned.
func (s *Steps) Evaluate(ctx context.Context, draft Draft, spec FormatSpec, history []float64) (Evaluation, error) {
	response, err := s.judge.Generate(ctx, evaluationPrompt(draft, spec))
	if err != nil {
		return Evaluation{}, err
	}
	parsed, err := llm.DecodeStrict[evaluationResponse](response)
	if err != nil {
		return Evaluation{}, err
	}

	feedback := parsed.Feedback
	if len(feedback) > maxFeedback {
		feedback = feedback[:maxFeedback]
	}

	scores := make([]float64, 0, len(history)+1)
	scores = append(scores, history...)
	scores = append(scores, parsed.TotalScore)

	eval := Evaluation{
		Scores:          parsed.Scores,
		TotalScore:      parsed.TotalScore,
		Feedback:        feedback,
		PlateauDetected: DetectPlateau(scores, s.cfg.PlateauThreshold),
	}
	s.trail.Add(fmt.Sprintf("eval_v%d", draft.Version), s.judge.Name(),
		fmt.Sprintf("score=%.1f", eval.TotalScore))
	return eval, nil
}

// Refine produces the next draft version from the previous draft and its
// evaluation feedback, under the same word ceiling as the first draft.
func (s *Steps) Refine(ctx context.Context, draft Draft, eval Evaluation, spec FormatSpec, selected ScoredIdea) (Draft, error) {
	response, err := s.creative.Generate(ctx,
		refinePrompt(draft, eval, spec, selected, s.cfg.WordLimit),
		llm.WithMaxOutputWords(s.cfg.WordLimit))
	if err != nil {
		return Draft{}, err
	}
	parsed, err := llm.DecodeStrict[draftResponse](response)
	if err != nil {
		return Draft{}, err
	}

	next := Draft{
		Content:   parsed.Content,
		Explainer: parsed.Explainer,
		WordCount: len(strings.Fields(parsed.Content)),
		Version:   draft.Version + 1,
	}
	s.checkWordLimit(next)
	s.trail.Add(fmt.Sprintf("draft_v%d", next.Version), s.creative.Name(),
		fmt.Sprintf("words=%d", next.WordCount))
	return next, nil
}

// DiagnoseFailure asks the judge for a short plain-text root-cause
// explanation of a run that ended without acceptance. Advisory only: the
// diagnosis never feeds back into the state machine.
func (s *Steps) DiagnoseFailure(ctx context.Context, drafts []Draft, evals []Evaluation,
	spec FormatSpec, selected ScoredIdea) (string, error) {
	response, err := s.judge.Generate(ctx, diagnosisPrompt(drafts, evals, spec, selected))
	if err != nil {
		return "", err
	}
	s.trail.Add("failure_analysis", s.judge.Name(), "completed")
	return strings.TrimSpace(response), nil
}

func (s *Steps) checkWordLimit(draft Draft) {
	if draft.WordCount <= s.cfg.WordLimit {
		return
	}
	violation := llm.NewError(llm.ErrorTypeConstraint,
		fmt.Sprintf("draft v%d has %d words, limit is %d", draft.Version, draft.WordCount, s.cfg.WordLimit), nil)
	s.logger.Warn("word limit exceeded", "error", violation)
}
