package model

import "fmt"

// Interval is a signed semitone distance between two pitches. Melodic
// intervals are signed by direction; harmonic intervals are measured
// from the lower voice upward. Intervals are derived on demand and
// never stored on the score.
type Interval struct {
	Semitones int
}

// MelodicInterval computes the signed interval from note a to note b in
// the same voice. The second result is false when either note is a
// rest, in which case no interval exists.
func MelodicInterval(a, b Note) (Interval, bool) {
	if a.Rest || b.Rest {
		return Interval{}, false
	}
	return Interval{Semitones: b.Pitch.MIDI() - a.Pitch.MIDI()}, true
}

// HarmonicInterval computes the interval between two simultaneous
// pitches, measured from low to high.
func HarmonicInterval(low, high Pitch) Interval {
	return Interval{Semitones: high.MIDI() - low.MIDI()}
}

// Abs returns the unsigned semitone distance.
func (iv Interval) Abs() int {
	if iv.Semitones < 0 {
		return -iv.Semitones
	}
	return iv.Semitones
}

// Class returns the interval class reduced to one octave (0-11).
func (iv Interval) Class() int {
	return iv.Abs() % 12
}

// IsPerfect reports whether the interval is a perfect consonance of
// the kind covered by the parallel-motion prohibition: a unison/octave
// or a perfect fifth (in any compounding).
func (iv Interval) IsPerfect() bool {
	c := iv.Class()
	return c == 0 || c == 7
}

// IsFifth reports whether the interval reduces to a perfect fifth.
func (iv Interval) IsFifth() bool { return iv.Class() == 7 }

// IsDissonant reports whether the interval is treated as dissonant:
// seconds, sevenths and the tritone. The perfect fourth is treated as
// consonant here.
func (iv Interval) IsDissonant() bool {
	switch iv.Class() {
	case 1, 2, 6, 10, 11:
		return true
	}
	return false
}

// IsStep reports whether the interval is stepwise motion (a semitone
// or whole tone).
func (iv Interval) IsStep() bool {
	a := iv.Abs()
	return a == 1 || a == 2
}

// Direction returns -1, 0 or 1 for descending, oblique and ascending
// motion respectively.
func (iv Interval) Direction() int {
	switch {
	case iv.Semitones < 0:
		return -1
	case iv.Semitones > 0:
		return 1
	default:
		return 0
	}
}

var intervalNames = [12]string{
	"unison", "minor second", "major second", "minor third",
	"major third", "perfect fourth", "tritone", "perfect fifth",
	"minor sixth", "major sixth", "minor seventh", "major seventh",
}

// Name returns the conventional name of the interval, e.g.
// "perfect fifth" or "octave". Compound intervals are reduced.
func (iv Interval) Name() string {
	a := iv.Abs()
	if a == 0 {
		return "unison"
	}
	if a%12 == 0 {
		return "octave"
	}
	if a > 12 {
		return fmt.Sprintf("compound %s", intervalNames[a%12])
	}
	return intervalNames[a%12]
}
