package rules

import (
	"fmt"

	"github.com/cantuslabs/cantus/internal/logic"
	"github.com/cantuslabs/cantus/internal/model"
)

// VoiceCrossing flags a lower-indexed voice sounding above a
// higher-indexed voice at the same onset. Voices are indexed from the
// bottom up, so voice order and pitch order must agree.
type VoiceCrossing struct{}

func (r *VoiceCrossing) ID() string { return RuleVoiceCrossing }

func (r *VoiceCrossing) Describe() string {
	return "a lower voice must not sound above a higher voice at the same onset"
}

// Scope covers every voice pair sounding together at every sonority.
func (r *VoiceCrossing) Scope(s *model.Score) []model.Location {
	var locs []model.Location
	for _, son := range s.Sonorities() {
		for _, pair := range soundingPairs(son) {
			locs = append(locs, model.SonorityLocation(son.MeasureIndex, pair[0], pair[1], son.Seq))
		}
	}
	return locs
}

func (r *VoiceCrossing) Compile(s *model.Score, loc model.Location) ([]logic.Constraint, []model.Warning) {
	son := s.Sonorities()[loc.Index]
	lo, _ := son.PitchOf(loc.Voice)
	hi, _ := son.PitchOf(loc.Voice2)

	ordered := logic.Fact(
		fmt.Sprintf("crossing/s%d/v%d-%d/ordered", loc.Index, loc.Voice, loc.Voice2),
		lo.MIDI() <= hi.MIDI(),
	)

	c := logic.Constraint{
		Rule: r.ID(),
		Loc:  loc,
		Clauses: []logic.Clause{
			{logic.Pos(ordered)},
		},
		Explain: fmt.Sprintf(
			"voice %d (%s) sounds above voice %d (%s)",
			loc.Voice, lo, loc.Voice2, hi,
		),
	}
	return []logic.Constraint{c}, nil
}
