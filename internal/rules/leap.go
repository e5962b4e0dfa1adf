package rules

import (
	"fmt"

	"github.com/cantuslabs/cantus/internal/logic"
	"github.com/cantuslabs/cantus/internal/model"
)

// MelodicLeap flags any melodic interval wider than Max semitones,
// unless a contrary-motion stepwise resolution follows within Window
// notes. A leap of exactly Max semitones is compliant.
type MelodicLeap struct {
	Max    int
	Window int
}

func (r *MelodicLeap) ID() string { return RuleMelodicLeap }

func (r *MelodicLeap) Describe() string {
	return fmt.Sprintf("melodic leaps wider than %d semitones must resolve by contrary stepwise motion within %d notes", r.Max, r.Window)
}

// Scope covers every pair of consecutive sounding notes in a voice,
// across barlines. Pairs broken by a rest are out of scope: no melodic
// interval exists across silence.
func (r *MelodicLeap) Scope(s *model.Score) []model.Location {
	var locs []model.Location
	for _, v := range s.VoiceIDs() {
		line := s.Line(v)
		for i := 0; i+1 < len(line); i++ {
			if line[i].Note.Rest || line[i+1].Note.Rest {
				continue
			}
			locs = append(locs, model.NoteLocation(line[i].MeasureIndex, v, i))
		}
	}
	return locs
}

func (r *MelodicLeap) Compile(s *model.Score, loc model.Location) ([]logic.Constraint, []model.Warning) {
	line := s.Line(loc.Voice)
	a, b := line[loc.Index], line[loc.Index+1]
	iv, ok := model.MelodicInterval(a.Note, b.Note)
	if !ok {
		return nil, []model.Warning{{Rule: r.ID(), Location: loc, Reason: "no melodic interval across a rest"}}
	}

	within := logic.Fact(
		fmt.Sprintf("leap/v%d/n%d/within", loc.Voice, loc.Index),
		iv.Abs() <= r.Max,
	)
	resolved := logic.Fact(
		fmt.Sprintf("leap/v%d/n%d/resolved", loc.Voice, loc.Index),
		r.resolves(line, loc.Index, iv),
	)

	c := logic.Constraint{
		Rule: r.ID(),
		Loc:  loc,
		Clauses: []logic.Clause{
			{logic.Pos(within), logic.Pos(resolved)},
		},
		Explain: fmt.Sprintf(
			"melodic leap of %d semitones (%s to %s) in voice %d exceeds %d semitones and is not resolved by contrary stepwise motion",
			iv.Abs(), a.Note.Pitch, b.Note.Pitch, loc.Voice, r.Max,
		),
	}
	return []logic.Constraint{c}, nil
}

// resolves checks for contrary stepwise motion within the window after
// the leap's landing note.
func (r *MelodicLeap) resolves(line []model.VoiceNote, i int, leap model.Interval) bool {
	dir := leap.Direction()
	if dir == 0 {
		return true
	}
	prev := line[i+1]
	for k := 1; k <= r.Window && i+1+k < len(line); k++ {
		next := line[i+1+k]
		step, ok := model.MelodicInterval(prev.Note, next.Note)
		if !ok {
			return false // resolution line broken by a rest
		}
		if step.IsStep() && step.Direction() == -dir {
			return true
		}
		prev = next
	}
	return false
}
