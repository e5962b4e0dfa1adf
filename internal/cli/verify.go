package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cantuslabs/cantus/internal/model"
	"github.com/cantuslabs/cantus/internal/pipeline"
	"github.com/cantuslabs/cantus/internal/scorefile"
)

var (
	outPath       string
	solverEngine  string
	solverTimeout time.Duration
	noCache       bool
	noFooter      bool
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <score-file>",
	Short: "Verify a single score against the active rule set",
	Long: `Verify checks one score file:
- Validate and load the intermediate score representation
- Compile the score under the active rules into logical constraints
- Decide the constraint system with a SAT solver
- Extract every violation with its location and explanation

Exit codes: 0 conformant, 1 violations found, 2 malformed input or
verification failure.

Example:
  cantus verify chorale.json
  cantus verify chorale.json --rules strict.yaml --out report.json
  cantus verify chorale.json --engine gini-relax --solver-timeout 10s`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	// Output flags
	verifyCmd.Flags().StringVar(&outPath, "out", "", "output JSON report path (optional)")
	verifyCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in the summary")

	// Solver flags
	verifyCmd.Flags().StringVar(&solverEngine, "engine", "", "solver engine (gini, gini-relax)")
	verifyCmd.Flags().DurationVar(&solverTimeout, "solver-timeout", 0, "per-call solver timeout (0: config default)")
	verifyCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable result memoization")
}

func runVerify(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx := context.Background()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	applySolverFlags(cfg)

	if verbose {
		fmt.Fprintf(os.Stderr, "Verifying: %s\n", path)
		fmt.Fprintf(os.Stderr, "Engine: %s\n", cfg.Solver.Engine)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	score, err := scorefile.Load(path)
	if err != nil {
		return err
	}

	verifier, err := pipeline.NewVerifier(cfg)
	if err != nil {
		return err
	}

	report, err := verifier.Report(ctx, score, path)
	if err != nil {
		return err
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if outPath != "" {
		if err := renderer.RenderJSON(report, outPath); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outPath)
		}
	}
	renderer.RenderSummary(report)

	return verdictErr(path, report.Result.Status)
}

// verdictErr maps a verification status to the command error main
// turns into the exit code: nil for conformant, ErrViolations (exit 1)
// for violations, a plain error (exit 2) for an unknown verdict. An
// unknown verdict is a solver failure, never a pass.
func verdictErr(path string, status model.Status) error {
	switch status {
	case model.StatusViolations:
		return fmt.Errorf("%s: %w", path, model.ErrViolations)
	case model.StatusUnknown:
		return fmt.Errorf("%s: solver verdict unknown", path)
	}
	return nil
}

func applySolverFlags(cfg *model.Config) {
	if solverEngine != "" {
		cfg.Solver.Engine = solverEngine
	}
	if solverTimeout > 0 {
		cfg.Solver.Timeout = solverTimeout
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
}
