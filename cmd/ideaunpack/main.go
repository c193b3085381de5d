// Command ideaunpack turns a short topic and intent into a compressed,
// quality-gated creative artifact by coordinating several text-generation
// providers through a fixed multi-stage pipeline.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ideaunpack/config"
	"ideaunpack/flow"
	"ideaunpack/internal/logging"
	"ideaunpack/llm"
	"ideaunpack/providers"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var topic, intent string

	cmd := &cobra.Command{
		Use:   "ideaunpack",
		Short: "Unpack a topic into a compressed, insightful artifact",
		Long: `ideaunpack runs a multi-provider pipeline: grounded idea generation,
dual-rater originality scoring, format design, then an iterative
draft-evaluate-refine loop gated on explicit quality criteria.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), topic, intent)
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "topic to unpack (3-5 words)")
	cmd.Flags().StringVar(&intent, "intent", "", "your intent or lived experience (1 sentence)")
	return cmd
}

func run(ctx context.Context, topic, intent string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	logger := logging.NewLogger(cfg.LogLevel)

	reader := bufio.NewReader(os.Stdin)
	if topic == "" {
		topic = ask(reader, "Enter topic (3-5 words): ")
	}
	if intent == "" {
		intent = ask(reader, "Enter your intent/lived experience (1 sentence): ")
	}
	input := flow.UserInput{Topic: topic, Intent: intent}

	registry := providers.NewRegistry()

	// Token counting is advisory; the pipeline runs without it.
	estimator, err := llm.NewTokenEstimator(cfg.OpenAIModel)
	if err != nil {
		logger.Warn("token estimator unavailable", "error", err)
		estimator = nil
	}

	creative, err := newGenerator(cfg, logger, registry, estimator, cfg.CreativeProvider)
	if err != nil {
		return err
	}
	raterA, err := newGenerator(cfg, logger, registry, estimator, cfg.RaterAProvider)
	if err != nil {
		return err
	}
	raterB, err := newGenerator(cfg, logger, registry, estimator, cfg.RaterBProvider)
	if err != nil {
		return err
	}
	judge, err := newGenerator(cfg, logger, registry, estimator, cfg.JudgeProvider)
	if err != nil {
		return err
	}

	banner("IDEA UNPACKER")

	hooks := flow.Hooks{
		ConfirmIdea: func(scored []flow.ScoredIdea, top int, diverged bool) int {
			return confirmIdea(reader, cfg, scored, top, diverged)
		},
		OnFormat: func(spec flow.FormatSpec) {
			fmt.Printf("\nFormat: %s\n", color.CyanString(string(spec.FormatType)))
			fmt.Printf("Minimum bar: %s\n", color.CyanString("%.1f", spec.MinimumBar))
			fmt.Printf("Criteria: %s\n", strings.Join(spec.Criteria, ", "))
		},
		OnCycle: func(cycle int, draft flow.Draft, eval flow.Evaluation) {
			fmt.Printf("Cycle %d/%d: v%d scored %s\n",
				cycle, cfg.MaxRefinementCycles, draft.Version,
				color.CyanString("%.1f", eval.TotalScore))
		},
	}

	session := flow.NewSession(cfg, logger, creative, raterA, raterB, judge, hooks)
	result, err := session.Run(ctx, input)
	if err != nil {
		return err
	}

	display(result)
	return nil
}

func newGenerator(cfg *config.Config, logger logging.Logger, registry *providers.Registry,
	estimator *llm.TokenEstimator, name string) (llm.Generator, error) {
	model, err := cfg.ModelFor(name)
	if err != nil {
		return nil, err
	}
	provider, err := registry.Get(name, cfg.APIKeys[name], model)
	if err != nil {
		return nil, err
	}
	client := llm.NewClient(cfg, logger, provider)
	if estimator != nil {
		client.SetTokenEstimator(estimator)
	}
	return client, nil
}

func ask(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func confirmIdea(reader *bufio.Reader, cfg *config.Config,
	scored []flow.ScoredIdea, top int, diverged bool) int {
	fmt.Println()
	banner("SCORED IDEAS")
	for i, si := range scored {
		marker := "  "
		if i == top {
			marker = color.GreenString("> ")
		}
		fmt.Printf("%s%d. %s\n", marker, i+1, si.Idea.Name)
		line := fmt.Sprintf("     score %.1f (delta %.1f), source: %s", si.CombinedScore, si.ScoreDelta, si.Idea.Source)
		if si.ScoreDelta > cfg.DivergenceThreshold {
			line += color.YellowString("  [raters disagree]")
		}
		fmt.Println(line)
	}
	if diverged {
		color.Yellow("High divergence on the selected idea: contested territory.")
	}

	choice := ask(reader, fmt.Sprintf("Press Enter to confirm #%d, or enter a different number (1-%d): ", top+1, len(scored)))
	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(scored) {
		return n - 1
	}
	return top
}

func display(result *flow.FlowResult) {
	fmt.Println()
	if result.Success {
		banner(color.GreenString("SUCCESS"))
	} else {
		banner(color.RedString("DID NOT MEET BAR"))
	}

	fmt.Printf("\nFINAL OUTPUT (v%d):\n\n%s\n", result.FinalDraft.Version, result.FinalDraft.Content)
	fmt.Printf("\nEXPLAINER:\n%s\n", result.FinalDraft.Explainer)
	fmt.Printf("\nFinal score: %s\n", color.CyanString("%.1f", result.FinalScore))
	fmt.Printf("Cycles used: %d\n", result.CyclesUsed)

	if result.FailureReason != "" {
		fmt.Printf("\nFAILURE ANALYSIS:\n%s\n", result.FailureReason)
	}

	fmt.Println("\nPROVENANCE TRACE:")
	for _, record := range result.Provenance {
		fmt.Printf("   [%s] %s: %s\n", record.Step, record.Provider, record.Detail)
	}
}

func banner(title string) {
	line := strings.Repeat("=", 50)
	fmt.Println(line)
	fmt.Println(title)
	fmt.Println(line)
}
