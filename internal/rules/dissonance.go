package rules

import (
	"fmt"

	"github.com/cantuslabs/cantus/internal/logic"
	"github.com/cantuslabs/cantus/internal/model"
)

// DissonanceResolution requires a dissonant harmonic interval to reach
// a consonance within Window subsequent onsets, with at least one of
// the two voices arriving by step.
type DissonanceResolution struct {
	Window int
}

func (r *DissonanceResolution) ID() string { return RuleDissonanceResolution }

func (r *DissonanceResolution) Describe() string {
	return fmt.Sprintf("a dissonant interval must resolve to a consonance by stepwise motion within %d onset(s)", r.Window)
}

// Scope covers every voice pair forming a dissonant interval at a
// sonority.
func (r *DissonanceResolution) Scope(s *model.Score) []model.Location {
	var locs []model.Location
	for _, son := range s.Sonorities() {
		for _, pair := range soundingPairs(son) {
			pa, _ := son.PitchOf(pair[0])
			pb, _ := son.PitchOf(pair[1])
			if model.HarmonicInterval(pa, pb).IsDissonant() {
				locs = append(locs, model.SonorityLocation(son.MeasureIndex, pair[0], pair[1], son.Seq))
			}
		}
	}
	return locs
}

func (r *DissonanceResolution) Compile(s *model.Score, loc model.Location) ([]logic.Constraint, []model.Warning) {
	sons := s.Sonorities()
	t := loc.Index
	va, vb := loc.Voice, loc.Voice2
	pa, _ := sons[t].PitchOf(va)
	pb, _ := sons[t].PitchOf(vb)
	iv := model.HarmonicInterval(pa, pb)

	resolvedVal, evaluable := r.resolves(sons, t, va, vb)
	if !evaluable {
		return nil, []model.Warning{{
			Rule: r.ID(), Location: loc,
			Reason: "a voice stops sounding inside the resolution window",
		}}
	}

	resolved := logic.Fact(
		fmt.Sprintf("dissonance/s%d/v%d-%d/resolved", t, va, vb),
		resolvedVal,
	)

	c := logic.Constraint{
		Rule: r.ID(),
		Loc:  loc,
		Clauses: []logic.Clause{
			{logic.Pos(resolved)},
		},
		Explain: fmt.Sprintf(
			"dissonant %s between voices %d (%s) and %d (%s) does not resolve by step within %d onset(s)",
			iv.Name(), va, pa, vb, pb, r.Window,
		),
	}
	return []logic.Constraint{c}, nil
}

// resolves scans the resolution window. The second result is false
// when the window cannot be evaluated because a voice rests.
func (r *DissonanceResolution) resolves(sons []model.Sonority, t int, va, vb model.VoiceID) (bool, bool) {
	prevA, _ := sons[t].PitchOf(va)
	prevB, _ := sons[t].PitchOf(vb)

	for k := 1; k <= r.Window && t+k < len(sons); k++ {
		curA, okA := sons[t+k].PitchOf(va)
		curB, okB := sons[t+k].PitchOf(vb)
		if !okA || !okB {
			return false, false
		}
		stepA := model.Interval{Semitones: curA.MIDI() - prevA.MIDI()}
		stepB := model.Interval{Semitones: curB.MIDI() - prevB.MIDI()}
		if !model.HarmonicInterval(curA, curB).IsDissonant() &&
			((stepA.IsStep()) || (stepB.IsStep())) {
			return true, true
		}
		prevA, prevB = curA, curB
	}
	// A dissonance at the final onset has nowhere to resolve.
	return false, true
}
