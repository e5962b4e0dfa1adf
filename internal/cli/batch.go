package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/cantuslabs/cantus/internal/model"
	"github.com/cantuslabs/cantus/internal/pipeline"
)

var (
	concurrency  int
	batchOut     string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <path>",
	Short: "Verify a corpus of score files in parallel",
	Long: `Batch verifies every *.json score under a directory (or a single
file) concurrently and writes one aggregate report:
- Per-file verdict, conformance, and violations
- Corpus tallies: conformant, with violations, failed to load
- Malformed files are recorded, not fatal

Example:
  cantus batch ./chorales
  cantus batch ./chorales --concurrency 8 --json corpus.json
  cantus batch ./chorales --rules strict.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&batchOut, "json", "batch-report.json", "output JSON path for the aggregate report")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	batchCmd.Flags().StringVar(&solverEngine, "engine", "", "solver engine (gini, gini-relax)")
	batchCmd.Flags().DurationVar(&solverTimeout, "solver-timeout", 0, "per-call solver timeout (0: config default)")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable result memoization")
}

func runBatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	applySolverFlags(cfg)
	cfg.Concurrency.BatchWorkers = concurrency

	files, err := pipeline.CollectFiles(path)
	if err != nil {
		return fmt.Errorf("collect score files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no score files under %s", path)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Cantus Batch Verification\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Corpus:       %s (%d files)\n", path, len(files))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	verifier, err := pipeline.NewVerifier(cfg)
	if err != nil {
		return err
	}
	batch := pipeline.NewBatchVerifier(verifier, concurrency)

	report, err := batch.Process(ctx, files)
	if err != nil {
		return fmt.Errorf("batch processing: %w", err)
	}

	for _, a := range report.Analyses {
		switch {
		case a.Error != "":
			fmt.Fprintf(os.Stderr, "✗ %s: %s\n", a.Filename, a.Error)
		case a.Status == model.StatusUnknown:
			fmt.Fprintf(os.Stderr, "? %s (solver verdict unknown)\n", a.Filename)
		case a.Conformant:
			fmt.Fprintf(os.Stderr, "✓ %s (conformance: %.3f)\n", a.Filename, a.Conformance)
		default:
			fmt.Fprintf(os.Stderr, "✗ %s (%d violation(s), conformance: %.3f)\n",
				a.Filename, len(a.Violations), a.Conformance)
		}
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if err := renderer.RenderBatchJSON(report, batchOut); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:          %d files\n", report.TotalFiles)
	fmt.Fprintf(os.Stderr, "  Conformant:     %d\n", report.ConformantFiles)
	fmt.Fprintf(os.Stderr, "  Violations:     %d\n", report.FilesWithViolations)
	fmt.Fprintf(os.Stderr, "  Unknown:        %d\n", report.UnknownFiles)
	fmt.Fprintf(os.Stderr, "  Failed:         %d\n", report.FailedFiles)
	fmt.Fprintf(os.Stderr, "  Report:         %s\n", batchOut)
	fmt.Fprintf(os.Stderr, "\n")

	if report.FilesWithViolations > 0 {
		return fmt.Errorf("%d file(s): %w", report.FilesWithViolations, model.ErrViolations)
	}
	if report.UnknownFiles > 0 {
		return fmt.Errorf("%d file(s) with unknown solver verdict", report.UnknownFiles)
	}
	return nil
}
