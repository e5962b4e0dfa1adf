package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cantuslabs/cantus/internal/llm"
	"github.com/cantuslabs/cantus/internal/loop"
	"github.com/cantuslabs/cantus/internal/model"
	"github.com/cantuslabs/cantus/internal/pipeline"
	"github.com/cantuslabs/cantus/internal/scorefile"
)

var (
	maxIterations  int
	threshold      float64
	genProvider    string
	genModel       string
	genBaseURL     string
	composeOut     string
	composeTimeout time.Duration
)

// composeCmd represents the compose command
var composeCmd = &cobra.Command{
	Use:   "compose <score-file>",
	Short: "Drive a generator through the verify/regenerate feedback loop",
	Long: `Compose verifies a candidate score and, while it falls short of the
conformance threshold, hands the violations to an external generator
for a revised candidate. The loop ends when a candidate converges or
the iteration budget is exhausted.

The generator is any OpenAI-compatible chat endpoint; point --base-url
at a local inference server to run without an API key.

Exit codes: 0 converged, 1 exhausted without converging, 2 failure.

Example:
  cantus compose draft.json
  cantus compose draft.json --max-iterations 8 --threshold 0.95
  cantus compose draft.json --provider openai --model gpt-4o --out final.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCompose,
}

func init() {
	rootCmd.AddCommand(composeCmd)

	composeCmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "iteration budget (0: config default)")
	composeCmd.Flags().Float64Var(&threshold, "threshold", 0, "conformance threshold to converge (0: config default)")
	composeCmd.Flags().StringVar(&genProvider, "provider", "", "generator provider (openai)")
	composeCmd.Flags().StringVar(&genModel, "model", "", "generator model name")
	composeCmd.Flags().StringVar(&genBaseURL, "base-url", "", "OpenAI-compatible endpoint URL")
	composeCmd.Flags().StringVar(&composeOut, "out", "", "write the final candidate score here")
	composeCmd.Flags().DurationVar(&composeTimeout, "timeout", 15*time.Minute, "total timeout for the loop")

	composeCmd.Flags().StringVar(&solverEngine, "engine", "", "solver engine (gini, gini-relax)")
	composeCmd.Flags().DurationVar(&solverTimeout, "solver-timeout", 0, "per-call solver timeout (0: config default)")
	composeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable result memoization")
}

func runCompose(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), composeTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	applySolverFlags(cfg)
	applyLoopFlags(cfg)

	score, err := scorefile.Load(path)
	if err != nil {
		return err
	}

	verifier, err := pipeline.NewVerifier(cfg)
	if err != nil {
		return err
	}

	generator, err := llm.NewGenerator(llm.ConfigFromModel(cfg.Generator))
	if err != nil {
		return err
	}
	if generator == nil && verbose {
		fmt.Fprintln(os.Stderr, "No generator configured: a non-conformant score ends the run immediately.")
	}

	coordinator := loop.NewCoordinator(verifier, generator, cfg.Loop,
		float64(cfg.Generator.RequestsPerMinute), verbose)

	outcome, err := coordinator.Run(ctx, score)
	if err != nil {
		return err
	}

	last := outcome.Iterations[len(outcome.Iterations)-1]
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  Loop finished: %s\n", outcome.Final)
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  Iterations:     %d/%d\n", len(outcome.Iterations), cfg.Loop.MaxIterations)
	fmt.Printf("  Conformance:    %.3f (threshold %.3f)\n", last.Result.Conformance, cfg.Loop.Threshold)
	fmt.Printf("  Violations:     %d\n", len(last.Result.Violations))
	for _, it := range outcome.Iterations {
		fmt.Printf("    %d. %.3f  %s  %s\n", it.Number, it.Result.Conformance,
			shortFingerprint(it.ScoreFingerprint), it.StateAfter)
	}
	fmt.Println()

	if composeOut != "" {
		if err := scorefile.Save(outcome.FinalScore, composeOut); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote final candidate: %s\n", composeOut)
	}

	if outcome.Final != loop.StateConverged {
		return fmt.Errorf("loop %s: %w", outcome.Final, model.ErrViolations)
	}
	return nil
}

func applyLoopFlags(cfg *model.Config) {
	if maxIterations > 0 {
		cfg.Loop.MaxIterations = maxIterations
	}
	if threshold > 0 {
		cfg.Loop.Threshold = threshold
	}
	if genProvider != "" {
		cfg.Generator.Provider = genProvider
	}
	if genModel != "" {
		cfg.Generator.Model = genModel
	}
	if genBaseURL != "" {
		cfg.Generator.BaseURL = genBaseURL
	}
	if cfg.Generator.Provider == "openai" && cfg.Generator.APIKey == "" {
		cfg.Generator.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
