package rules

import (
	"fmt"

	"github.com/cantuslabs/cantus/internal/logic"
	"github.com/cantuslabs/cantus/internal/model"
)

// ParallelPerfects flags two consecutive sonorities where the same
// voice pair moves in the same direction while holding the same
// perfect interval (fifth or octave) in both sonorities.
type ParallelPerfects struct {
	// AllowOuterFifths exempts parallel fifths between the outermost
	// voice pair.
	AllowOuterFifths bool
}

func (r *ParallelPerfects) ID() string { return RuleParallelPerfects }

func (r *ParallelPerfects) Describe() string {
	return "no two voices may move in the same direction through consecutive perfect fifths or octaves"
}

// Scope covers every consecutive sonority pair and every voice pair
// sounding in the first of the two. A pair that stops sounding before
// the next sonority compiles to a warning, not a constraint.
func (r *ParallelPerfects) Scope(s *model.Score) []model.Location {
	sons := s.Sonorities()
	var locs []model.Location
	for t := 0; t+1 < len(sons); t++ {
		for _, pair := range soundingPairs(sons[t]) {
			locs = append(locs, model.SonorityPairLocation(sons[t].MeasureIndex, pair[0], pair[1], t))
		}
	}
	return locs
}

func (r *ParallelPerfects) Compile(s *model.Score, loc model.Location) ([]logic.Constraint, []model.Warning) {
	sons := s.Sonorities()
	t := loc.Index
	va, vb := loc.Voice, loc.Voice2

	pa1, _ := sons[t].PitchOf(va)
	pb1, _ := sons[t].PitchOf(vb)
	pa2, ok1 := sons[t+1].PitchOf(va)
	pb2, ok2 := sons[t+1].PitchOf(vb)
	if !ok1 || !ok2 {
		return nil, []model.Warning{{Rule: r.ID(), Location: loc, Reason: "voice stops sounding before the next sonority"}}
	}

	iv1 := model.HarmonicInterval(pa1, pb1)
	iv2 := model.HarmonicInterval(pa2, pb2)
	motionA := model.Interval{Semitones: pa2.MIDI() - pa1.MIDI()}
	motionB := model.Interval{Semitones: pb2.MIDI() - pb1.MIDI()}

	parallel := motionA.Direction() != 0 &&
		motionA.Direction() == motionB.Direction() &&
		iv1.IsPerfect() && iv2.IsPerfect() &&
		iv1.Class() == iv2.Class()

	if parallel && r.AllowOuterFifths && iv1.IsFifth() && r.isOuterPair(s, va, vb) {
		parallel = false
	}

	clear := logic.Fact(
		fmt.Sprintf("parallel/s%d/v%d-%d/clear", t, va, vb),
		!parallel,
	)

	c := logic.Constraint{
		Rule: r.ID(),
		Loc:  loc,
		Clauses: []logic.Clause{
			{logic.Pos(clear)},
		},
		Explain: fmt.Sprintf(
			"voices %d and %d move in parallel %ss (%s-%s to %s-%s)",
			va, vb, iv1.Name(), pa1, pb1, pa2, pb2,
		),
	}
	return []logic.Constraint{c}, nil
}

func (r *ParallelPerfects) isOuterPair(s *model.Score, va, vb model.VoiceID) bool {
	ids := s.VoiceIDs()
	if len(ids) < 2 {
		return false
	}
	return va == ids[0] && vb == ids[len(ids)-1]
}
