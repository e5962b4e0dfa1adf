package model

import "testing"

func mustPitch(t *testing.T, s string) Pitch {
	t.Helper()
	p, err := ParsePitch(s)
	if err != nil {
		t.Fatalf("ParsePitch(%q): %v", s, err)
	}
	return p
}

func TestHarmonicInterval(t *testing.T) {
	tests := []struct {
		low, high string
		semitones int
		name      string
		dissonant bool
		perfect   bool
	}{
		{"C4", "G4", 7, "perfect fifth", false, true},
		{"C4", "C5", 12, "octave", false, true},
		{"C4", "E4", 4, "major third", false, false},
		{"C4", "D4", 2, "major second", true, false},
		{"C4", "F#4", 6, "tritone", true, false},
		{"C4", "B4", 11, "major seventh", true, false},
		{"C4", "Bb4", 10, "minor seventh", true, false},
		{"C4", "F4", 5, "perfect fourth", false, false},
		{"C3", "G4", 19, "compound perfect fifth", false, true},
	}

	for _, tt := range tests {
		iv := HarmonicInterval(mustPitch(t, tt.low), mustPitch(t, tt.high))
		if iv.Semitones != tt.semitones {
			t.Errorf("%s-%s: %d semitones, expected %d", tt.low, tt.high, iv.Semitones, tt.semitones)
		}
		if iv.Name() != tt.name {
			t.Errorf("%s-%s: name %q, expected %q", tt.low, tt.high, iv.Name(), tt.name)
		}
		if iv.IsDissonant() != tt.dissonant {
			t.Errorf("%s-%s: IsDissonant() = %v, expected %v", tt.low, tt.high, iv.IsDissonant(), tt.dissonant)
		}
		if iv.IsPerfect() != tt.perfect {
			t.Errorf("%s-%s: IsPerfect() = %v, expected %v", tt.low, tt.high, iv.IsPerfect(), tt.perfect)
		}
	}
}

func TestMelodicInterval_Rests(t *testing.T) {
	a := Note{Pitch: mustPitch(t, "C4")}
	rest := Note{Rest: true}

	if _, ok := MelodicInterval(a, rest); ok {
		t.Error("Expected no interval into a rest")
	}
	if _, ok := MelodicInterval(rest, a); ok {
		t.Error("Expected no interval out of a rest")
	}

	b := Note{Pitch: mustPitch(t, "E4")}
	iv, ok := MelodicInterval(a, b)
	if !ok {
		t.Fatal("Expected an interval between two sounding notes")
	}
	if iv.Semitones != 4 {
		t.Errorf("C4 to E4 = %d semitones, expected 4", iv.Semitones)
	}
	if iv.Direction() != 1 {
		t.Errorf("C4 to E4 direction = %d, expected 1", iv.Direction())
	}
}

func TestInterval_IsStep(t *testing.T) {
	tests := []struct {
		semitones int
		want      bool
	}{
		{0, false}, {1, true}, {2, true}, {-1, true}, {-2, true}, {3, false}, {12, false},
	}
	for _, tt := range tests {
		iv := Interval{Semitones: tt.semitones}
		if iv.IsStep() != tt.want {
			t.Errorf("Interval{%d}.IsStep() = %v, expected %v", tt.semitones, iv.IsStep(), tt.want)
		}
	}
}
