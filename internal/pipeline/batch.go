package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cantuslabs/cantus/internal/model"
	"github.com/cantuslabs/cantus/internal/scorefile"
	"github.com/cantuslabs/cantus/internal/worker"
)

// BatchVerifier verifies a corpus of score files in parallel. Safe
// because Score and VerificationResult instances are immutable and
// carry no cross-run shared state.
type BatchVerifier struct {
	verifier *Verifier
	pool     *worker.Pool
}

// NewBatchVerifier creates a batch verifier.
func NewBatchVerifier(v *Verifier, workers int) *BatchVerifier {
	return &BatchVerifier{verifier: v, pool: worker.NewPool(workers)}
}

// CollectFiles lists the score files of a corpus path: either a single
// file or every *.json under a directory, sorted.
func CollectFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Process verifies every file and aggregates the outcome. Per-file
// failures (malformed scores) are recorded in the report, not fatal.
func (b *BatchVerifier) Process(ctx context.Context, files []string) (*model.BatchReport, error) {
	report := &model.BatchReport{
		Timestamp:  time.Now().UTC(),
		TotalFiles: len(files),
		Analyses:   make([]model.FileAnalysis, len(files)),
	}

	err := b.pool.Run(ctx, len(files), func(ctx context.Context, i int) {
		report.Analyses[i] = b.analyzeFile(ctx, files[i])
	})
	if err != nil {
		return nil, err
	}

	tally(report)
	return report, nil
}

// tally fills the corpus counters from the per-file analyses. An
// unknown solver verdict is its own class: the file neither passed nor
// failed.
func tally(report *model.BatchReport) {
	for _, a := range report.Analyses {
		switch {
		case a.Error != "":
			report.FailedFiles++
		case a.Status == model.StatusUnknown:
			report.UnknownFiles++
		case a.Conformant:
			report.ConformantFiles++
		default:
			report.FilesWithViolations++
		}
	}
}

func (b *BatchVerifier) analyzeFile(ctx context.Context, path string) model.FileAnalysis {
	analysis := model.FileAnalysis{Filename: filepath.Base(path)}

	score, err := scorefile.Load(path)
	if err != nil {
		analysis.Error = err.Error()
		return analysis
	}

	rep, err := b.verifier.Report(ctx, score, path)
	if err != nil {
		analysis.Error = err.Error()
		return analysis
	}

	analysis.KeySignature = rep.KeySignature
	analysis.TimeSignature = rep.TimeSignature
	analysis.Measures = rep.Measures
	analysis.Status = rep.Result.Status
	analysis.Conformant = rep.Result.Satisfied
	analysis.Conformance = rep.Result.Conformance
	analysis.Violations = rep.Result.Violations
	return analysis
}
