package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cantuslabs/cantus/internal/model"
)

// Renderer writes reports to files and summaries to stdout.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON.
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderBatchJSON writes the aggregate batch report.
func (r *Renderer) RenderBatchJSON(report *model.BatchReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal batch report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write batch report: %w", err)
	}
	return nil
}

// RenderSummary prints the human-readable verdict to stdout.
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  %s\n", report.Subject)
	fmt.Println("═══════════════════════════════════════════════════════════")
	if report.KeySignature != "" {
		fmt.Printf("  Key:            %s\n", report.KeySignature)
	}
	if report.TimeSignature != "" {
		fmt.Printf("  Time:           %s\n", report.TimeSignature)
	}
	fmt.Printf("  Measures:       %d\n", report.Measures)
	fmt.Printf("  Voices:         %d\n", report.Voices)
	fmt.Printf("  Rules:          %d applied\n", len(report.RulesApplied))
	fmt.Printf("  Constraints:    %d compiled, %d violated\n",
		report.Result.Stats.TotalConstraints, report.Result.Stats.ViolatedConstraints)
	fmt.Printf("  Conformance:    %.3f\n", report.Result.Conformance)

	switch report.Result.Status {
	case model.StatusConformant:
		fmt.Println("  Verdict:        ✓ conformant")
	case model.StatusUnknown:
		fmt.Printf("  Verdict:        ? inconclusive (solver gave no answer within %v)\n", report.Solver.Timeout)
	default:
		fmt.Printf("  Verdict:        ✗ %d violation(s)\n", len(report.Result.Violations))
		for _, v := range report.Result.Violations {
			fmt.Printf("    - [%s] %s: %s\n", v.Severity, v.Rule, v.Explanation)
		}
	}

	if len(report.Result.Warnings) > 0 {
		fmt.Printf("  Skipped:        %d location(s) could not be evaluated\n", len(report.Result.Warnings))
	}

	if r.includeFooter {
		fmt.Println()
		fmt.Println("  cantus evaluates conformance to a configured rule set,")
		fmt.Println("  not musical quality.")
	}
	fmt.Println()
}
