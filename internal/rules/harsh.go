package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cantuslabs/cantus/internal/logic"
	"github.com/cantuslabs/cantus/internal/model"
)

// HarshSonority flags a sonority of three or more pitch classes whose
// interval set stacks a minor second, a tritone and a minor seventh at
// once. Milder dissonances are the dissonance-resolution rule's
// business; this rule only catches the combination that no resolution
// redeems.
type HarshSonority struct{}

func (r *HarshSonority) ID() string { return RuleHarshSonority }

func (r *HarshSonority) Describe() string {
	return "no sonority may combine a minor second, a tritone and a minor seventh"
}

// Scope covers every sonority with at least three distinct sounding
// pitch classes.
func (r *HarshSonority) Scope(s *model.Score) []model.Location {
	var locs []model.Location
	for _, son := range s.Sonorities() {
		if len(distinctClasses(son)) >= 3 {
			locs = append(locs, model.SonorityLocation(son.MeasureIndex, -1, -1, son.Seq))
		}
	}
	return locs
}

func (r *HarshSonority) Compile(s *model.Score, loc model.Location) ([]logic.Constraint, []model.Warning) {
	son := s.Sonorities()[loc.Index]
	classes := distinctClasses(son)

	// Directed differences of the sorted classes only: a major second
	// does not count as a minor seventh from the other side.
	intervals := map[int]bool{}
	for i := 0; i < len(classes); i++ {
		for j := i + 1; j < len(classes); j++ {
			intervals[classes[j]-classes[i]] = true
		}
	}
	harsh := intervals[1] && intervals[6] && intervals[10]

	clear := logic.Fact(
		fmt.Sprintf("harsh/s%d/clear", loc.Index),
		!harsh,
	)

	c := logic.Constraint{
		Rule: r.ID(),
		Loc:  loc,
		Clauses: []logic.Clause{
			{logic.Pos(clear)},
		},
		Explain: fmt.Sprintf(
			"sonority %s stacks a minor second, a tritone and a minor seventh",
			describeSonority(son),
		),
	}
	return []logic.Constraint{c}, nil
}

func distinctClasses(son model.Sonority) []int {
	set := map[int]bool{}
	for _, e := range son.Entries {
		if e.Sounding {
			set[e.Pitch.Class()] = true
		}
	}
	out := make([]int, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

func describeSonority(son model.Sonority) string {
	var parts []string
	for _, e := range son.Entries {
		if e.Sounding {
			parts = append(parts, e.Pitch.String())
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}
