package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Pitch identifies a tempered pitch in scientific notation: letter,
// accidental offset in semitones, octave. C4 is middle C (MIDI 60).
type Pitch struct {
	Letter     byte `json:"letter"`     // 'A'..'G'
	Accidental int  `json:"accidental"` // -2..+2 semitones
	Octave     int  `json:"octave"`
}

// letterSemitones maps a letter to its semitone offset above C.
var letterSemitones = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// MIDI returns the MIDI note number for the pitch.
func (p Pitch) MIDI() int {
	return (p.Octave+1)*12 + letterSemitones[p.Letter] + p.Accidental
}

// Class returns the pitch class (0-11).
func (p Pitch) Class() int {
	c := p.MIDI() % 12
	if c < 0 {
		c += 12
	}
	return c
}

// String renders the pitch, e.g. "C4", "F#3", "Bb5".
func (p Pitch) String() string {
	acc := ""
	switch {
	case p.Accidental > 0:
		acc = strings.Repeat("#", p.Accidental)
	case p.Accidental < 0:
		acc = strings.Repeat("b", -p.Accidental)
	}
	return fmt.Sprintf("%c%s%d", p.Letter, acc, p.Octave)
}

// ParsePitch parses scientific pitch notation: a letter A-G, optional
// sharps (#) or flats (b), and an octave number. "rest" and the empty
// string are not pitches; callers handle rests separately.
func ParsePitch(s string) (Pitch, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Pitch{}, fmt.Errorf("invalid pitch %q", s)
	}
	letter := s[0]
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}
	if _, ok := letterSemitones[letter]; !ok {
		return Pitch{}, fmt.Errorf("invalid pitch letter in %q", s)
	}
	rest := s[1:]
	acc := 0
	for len(rest) > 0 && (rest[0] == '#' || rest[0] == 'b') {
		if rest[0] == '#' {
			acc++
		} else {
			acc--
		}
		rest = rest[1:]
	}
	if acc < -2 || acc > 2 {
		return Pitch{}, fmt.Errorf("invalid accidental in %q", s)
	}
	oct, err := strconv.Atoi(rest)
	if err != nil {
		return Pitch{}, fmt.Errorf("invalid octave in %q", s)
	}
	return Pitch{Letter: letter, Accidental: acc, Octave: oct}, nil
}
