package scorefile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

const validScore = `{
  "title": "two part study",
  "measures": [
    {
      "time": "4/4",
      "key": "C major",
      "voices": [
        {
          "voice": 0,
          "notes": [
            {"pitch": "C3", "onset": "0", "duration": "2"},
            {"pitch": "E3", "onset": "2", "duration": "2"}
          ]
        },
        {
          "voice": 1,
          "notes": [
            {"pitch": "G4", "onset": "0", "duration": "4"}
          ]
        }
      ]
    }
  ]
}`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(validScore))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if s.Title() != "two part study" {
		t.Errorf("Title = %q", s.Title())
	}
	if s.NumMeasures() != 1 {
		t.Errorf("NumMeasures = %d, expected 1", s.NumMeasures())
	}
	if len(s.VoiceIDs()) != 2 {
		t.Errorf("Expected 2 voices, got %d", len(s.VoiceIDs()))
	}
}

func TestParse_UnknownFieldRejected(t *testing.T) {
	doc := `{"title": "x", "tempo": 120, "measures": []}`
	if _, err := Parse([]byte(doc)); err == nil {
		t.Error("Expected strict parsing to reject an unknown field")
	}
	if _, err := ParseRelaxed([]byte(doc)); err == nil {
		// Relaxed parsing tolerates the field but the empty score is
		// still malformed.
		t.Error("Expected an empty score to be rejected")
	}
}

func TestParseRelaxed_ToleratesExtraKeys(t *testing.T) {
	doc := `{
  "title": "generated",
  "commentary": "here is the revised score",
  "measures": [
    {
      "time": "4/4",
      "voices": [
        {"voice": 0, "notes": [{"pitch": "C4", "onset": "0", "duration": "4"}]}
      ]
    }
  ]
}`
	if _, err := Parse([]byte(doc)); err == nil {
		t.Error("Expected strict parsing to reject the extra key")
	}
	s, err := ParseRelaxed([]byte(doc))
	if err != nil {
		t.Fatalf("Expected relaxed parsing to succeed, got %v", err)
	}
	if s.Title() != "generated" {
		t.Errorf("Title = %q", s.Title())
	}
}

func TestInputOf_Roundtrip(t *testing.T) {
	s, err := Parse([]byte(validScore))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	in := InputOf(s)
	back, err := Parse(mustMarshal(t, in))
	if err != nil {
		t.Fatalf("Reparse: %v", err)
	}
	if back.Fingerprint() != s.Fingerprint() {
		t.Error("Expected the reconstructed input to round-trip to the same fingerprint")
	}
}

func TestInputOf_RestsSpelledOut(t *testing.T) {
	doc := `{
  "measures": [
    {
      "time": "4/4",
      "voices": [
        {"voice": 0, "notes": [
          {"pitch": "rest", "onset": "0", "duration": "2"},
          {"pitch": "C4", "onset": "2", "duration": "2"}
        ]}
      ]
    }
  ]
}`
	s, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	in := InputOf(s)
	if got := in.Measures[0].Voices[0].Notes[0].Pitch; got != "rest" {
		t.Errorf("Expected the rest to be spelled out, got %q", got)
	}
}

func TestLoadAndSave(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.json")
	if err := os.WriteFile(src, []byte(validScore), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := Load(src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	dst := filepath.Join(dir, "out.json")
	if err := Save(s, dst); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := Load(dst)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if back.Fingerprint() != s.Fingerprint() {
		t.Error("Expected save/load to preserve the score")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}
