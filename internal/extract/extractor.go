// Package extract maps abstract unsatisfiability back to concrete,
// human-meaningful violations: each failed constraint tag is resolved
// through the compiler's provenance table to its rule and score
// location, explained, graded and deduplicated.
package extract

import (
	"sort"

	"github.com/cantuslabs/cantus/internal/compile"
	"github.com/cantuslabs/cantus/internal/model"
	"github.com/cantuslabs/cantus/internal/rules"
	"github.com/cantuslabs/cantus/internal/solver"
)

// Extractor turns solver answers into VerificationResults.
type Extractor struct {
	cfg model.RuleConfig
}

// NewExtractor creates an extractor with the run's rule configuration,
// which supplies the per-rule severity weights.
func NewExtractor(cfg model.RuleConfig) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract builds the immutable VerificationResult for one run.
// Violations mapping to the same (rule, location) are deduplicated;
// the conformance score is one minus the fraction of evaluated
// locations with at least one violation.
func (e *Extractor) Extract(sys *compile.System, ans *solver.Answer) model.VerificationResult {
	res := model.VerificationResult{
		Warnings: sys.Warnings,
		Stats: model.ConstraintStats{
			TotalConstraints:   len(sys.Constraints),
			EvaluatedLocations: sys.EvaluatedLocations,
			SkippedLocations:   sys.SkippedLocations,
		},
	}

	if ans.Unknown {
		res.Status = model.StatusUnknown
		return res
	}

	type locKey struct {
		rule string
		loc  string
	}
	seen := map[locKey]bool{}
	violatedLocs := map[string]bool{}

	var violations []model.Violation
	for _, tag := range ans.Violated {
		if tag < 0 || tag >= len(sys.Constraints) {
			continue
		}
		con := sys.Constraints[tag]
		k := locKey{rule: con.Rule, loc: con.Loc.Key()}
		if seen[k] {
			continue
		}
		seen[k] = true
		violatedLocs[con.Rule+"|"+con.Loc.Key()] = true

		w := rules.Weight(e.cfg, con.Rule)
		violations = append(violations, model.Violation{
			Rule:        con.Rule,
			Location:    con.Loc,
			Where:       con.Loc.String(),
			Severity:    model.SeverityFromWeight(w),
			Weight:      w,
			Explanation: con.Explain,
		})
	}

	sort.Slice(violations, func(a, b int) bool {
		la, lb := violations[a].Location, violations[b].Location
		if la.Measure != lb.Measure {
			return la.Measure < lb.Measure
		}
		if la.Index != lb.Index {
			return la.Index < lb.Index
		}
		if la.Voice != lb.Voice {
			return la.Voice < lb.Voice
		}
		return violations[a].Rule < violations[b].Rule
	})

	res.Violations = violations
	res.Stats.ViolatedConstraints = len(ans.Violated)
	res.Satisfied = len(violations) == 0
	if res.Satisfied {
		res.Status = model.StatusConformant
	} else {
		res.Status = model.StatusViolations
	}
	res.Conformance = conformance(len(violatedLocs), sys.EvaluatedLocations)
	return res
}

func conformance(violating, evaluated int) float64 {
	if evaluated == 0 {
		return 1.0
	}
	return 1.0 - float64(violating)/float64(evaluated)
}
