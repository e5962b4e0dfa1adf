package model

import (
	"errors"
	"testing"
)

func quarterNotes(voice int, pitches ...string) VoiceInput {
	v := VoiceInput{Voice: voice}
	for i, p := range pitches {
		v.Notes = append(v.Notes, NoteInput{
			Pitch:    p,
			Onset:    NewBeat(int64(i), 1).String(),
			Duration: "1",
		})
	}
	return v
}

func TestNewScore_Valid(t *testing.T) {
	in := ScoreInput{
		Title: "test piece",
		Measures: []MeasureInput{
			{
				Time: "4/4",
				Key:  "C major",
				Voices: []VoiceInput{
					quarterNotes(0, "C3", "D3", "E3", "F3"),
					quarterNotes(1, "E4", "F4", "G4", "A4"),
				},
			},
		},
	}

	s, err := NewScore(in)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if s.Title() != "test piece" {
		t.Errorf("Title = %q, expected %q", s.Title(), "test piece")
	}
	if s.NumMeasures() != 1 {
		t.Fatalf("NumMeasures = %d, expected 1", s.NumMeasures())
	}
	if got := len(s.VoiceIDs()); got != 2 {
		t.Fatalf("Expected 2 voices, got %d", got)
	}
	if got := len(s.Line(0)); got != 4 {
		t.Errorf("Voice 0 line has %d notes, expected 4", got)
	}
	if got := len(s.Sonorities()); got != 4 {
		t.Fatalf("Expected 4 sonorities, got %d", got)
	}

	// Second sonority: D3 below, F4 above, both attacked.
	son := s.Sonorities()[1]
	lo, ok := son.PitchOf(0)
	if !ok || lo.String() != "D3" {
		t.Errorf("Sonority 1 voice 0 = %v (sounding=%v), expected D3", lo, ok)
	}
	hi, ok := son.PitchOf(1)
	if !ok || hi.String() != "F4" {
		t.Errorf("Sonority 1 voice 1 = %v (sounding=%v), expected F4", hi, ok)
	}
}

func TestNewScore_SustainedNoteSounds(t *testing.T) {
	// Voice 1 holds a whole note while voice 0 moves in halves: the
	// held pitch must be sounding (not attacked) at the later onset.
	in := ScoreInput{
		Measures: []MeasureInput{
			{
				Time: "4/4",
				Voices: []VoiceInput{
					{Voice: 0, Notes: []NoteInput{
						{Pitch: "C3", Onset: "0", Duration: "2"},
						{Pitch: "E3", Onset: "2", Duration: "2"},
					}},
					{Voice: 1, Notes: []NoteInput{
						{Pitch: "G4", Onset: "0", Duration: "4"},
					}},
				},
			},
		},
	}

	s, err := NewScore(in)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	sons := s.Sonorities()
	if len(sons) != 2 {
		t.Fatalf("Expected 2 sonorities, got %d", len(sons))
	}

	var held SonorityEntry
	for _, e := range sons[1].Entries {
		if e.Voice == 1 {
			held = e
		}
	}
	if !held.Sounding {
		t.Error("Expected held G4 to be sounding at the second onset")
	}
	if held.Attacked {
		t.Error("Expected held G4 not to be attacked at the second onset")
	}
}

func TestNewScore_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   ScoreInput
	}{
		{
			name: "no measures",
			in:   ScoreInput{},
		},
		{
			name: "gap in voice",
			in: ScoreInput{Measures: []MeasureInput{{
				Time: "4/4",
				Voices: []VoiceInput{{Voice: 0, Notes: []NoteInput{
					{Pitch: "C4", Onset: "0", Duration: "1"},
					{Pitch: "D4", Onset: "2", Duration: "2"}, // gap at beat 1
				}}},
			}}},
		},
		{
			name: "overlapping notes",
			in: ScoreInput{Measures: []MeasureInput{{
				Time: "4/4",
				Voices: []VoiceInput{{Voice: 0, Notes: []NoteInput{
					{Pitch: "C4", Onset: "0", Duration: "3"},
					{Pitch: "D4", Onset: "2", Duration: "2"},
				}}},
			}}},
		},
		{
			name: "durations exceed measure",
			in: ScoreInput{Measures: []MeasureInput{{
				Time: "4/4",
				Voices: []VoiceInput{{Voice: 0, Notes: []NoteInput{
					{Pitch: "C4", Onset: "0", Duration: "3"},
					{Pitch: "D4", Onset: "3", Duration: "2"},
				}}},
			}}},
		},
		{
			name: "durations short of measure",
			in: ScoreInput{Measures: []MeasureInput{{
				Time: "4/4",
				Voices: []VoiceInput{{Voice: 0, Notes: []NoteInput{
					{Pitch: "C4", Onset: "0", Duration: "3"},
				}}},
			}}},
		},
		{
			name: "zero duration",
			in: ScoreInput{Measures: []MeasureInput{{
				Time: "4/4",
				Voices: []VoiceInput{{Voice: 0, Notes: []NoteInput{
					{Pitch: "C4", Onset: "0", Duration: "0"},
					{Pitch: "D4", Onset: "0", Duration: "4"},
				}}},
			}}},
		},
		{
			name: "invalid time signature",
			in: ScoreInput{Measures: []MeasureInput{{
				Time:   "waltz",
				Voices: []VoiceInput{quarterNotes(0, "C4", "D4", "E4", "F4")},
			}}},
		},
		{
			name: "duplicate voice",
			in: ScoreInput{Measures: []MeasureInput{{
				Time: "4/4",
				Voices: []VoiceInput{
					quarterNotes(0, "C4", "D4", "E4", "F4"),
					quarterNotes(0, "E4", "F4", "G4", "A4"),
				},
			}}},
		},
		{
			name: "negative voice id",
			in: ScoreInput{Measures: []MeasureInput{{
				Time:   "4/4",
				Voices: []VoiceInput{quarterNotes(-1, "C4", "D4", "E4", "F4")},
			}}},
		},
		{
			name: "bad pitch",
			in: ScoreInput{Measures: []MeasureInput{{
				Time:   "4/4",
				Voices: []VoiceInput{quarterNotes(0, "X4", "D4", "E4", "F4")},
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScore(tt.in)
			if err == nil {
				t.Fatal("Expected a malformed score error, got nil")
			}
			var mse *MalformedScoreError
			if !errors.As(err, &mse) {
				t.Errorf("Expected *MalformedScoreError, got %T: %v", err, err)
			}
		})
	}
}

func TestNewScore_RestsAreExplicit(t *testing.T) {
	in := ScoreInput{
		Measures: []MeasureInput{{
			Time: "4/4",
			Voices: []VoiceInput{{Voice: 0, Notes: []NoteInput{
				{Pitch: "rest", Onset: "0", Duration: "2"},
				{Pitch: "C4", Onset: "2", Duration: "2"},
			}}},
		}},
	}
	s, err := NewScore(in)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	line := s.Line(0)
	if len(line) != 2 {
		t.Fatalf("Expected 2 notes in line, got %d", len(line))
	}
	if !line[0].Note.Rest {
		t.Error("Expected first note to be a rest")
	}

	// The resting voice must not be sounding at the first sonority.
	if _, ok := s.Sonorities()[0].PitchOf(0); ok {
		t.Error("Expected voice 0 not to sound during its rest")
	}
}

func TestScore_Fingerprint(t *testing.T) {
	in := ScoreInput{
		Measures: []MeasureInput{{
			Time:   "4/4",
			Voices: []VoiceInput{quarterNotes(0, "C4", "D4", "E4", "F4")},
		}},
	}

	a, err := NewScore(in)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	b, err := NewScore(in)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("Expected identical scores to fingerprint identically")
	}

	in.Measures[0].Voices[0].Notes[0].Pitch = "C#4"
	c, err := NewScore(in)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("Expected different scores to fingerprint differently")
	}
}
