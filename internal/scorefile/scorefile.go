// Package scorefile reads and writes the JSON form of the validated
// intermediate score representation. Interchange formats (MusicXML and
// friends) are an external collaborator's concern; this package only
// moves ScoreInput between bytes and the immutable Score model.
package scorefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cantuslabs/cantus/internal/model"
)

// Load reads a score file and constructs the immutable Score.
// Unknown JSON fields are rejected.
func Load(path string) (*model.Score, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read score file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a strict ScoreInput document and constructs the Score.
func Parse(data []byte) (*model.Score, error) {
	in, err := decode(data, true)
	if err != nil {
		return nil, err
	}
	return model.NewScore(in)
}

// ParseRelaxed decodes a ScoreInput document, tolerating unknown
// fields. Used on generator responses, which may carry extra keys.
func ParseRelaxed(data []byte) (*model.Score, error) {
	in, err := decode(data, false)
	if err != nil {
		return nil, err
	}
	return model.NewScore(in)
}

func decode(data []byte, strict bool) (model.ScoreInput, error) {
	var in model.ScoreInput
	dec := json.NewDecoder(bytes.NewReader(data))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("decode score: %w", err)
	}
	return in, nil
}

// InputOf reconstructs the intermediate representation of a Score,
// e.g. to hand the current candidate to an external generator.
func InputOf(s *model.Score) model.ScoreInput {
	in := model.ScoreInput{Title: s.Title()}
	for i := 0; i < s.NumMeasures(); i++ {
		m := s.Measure(i)
		min := model.MeasureInput{Time: m.Time.String(), Key: m.Key.String()}
		for _, vl := range m.Voices {
			vin := model.VoiceInput{Voice: int(vl.ID)}
			for _, n := range vl.Notes {
				nin := model.NoteInput{
					Onset:    n.Onset.String(),
					Duration: n.Duration.String(),
				}
				if n.Rest {
					nin.Pitch = "rest"
				} else {
					nin.Pitch = n.Pitch.String()
				}
				vin.Notes = append(vin.Notes, nin)
			}
			min.Voices = append(min.Voices, vin)
		}
		in.Measures = append(in.Measures, min)
	}
	return in
}

// Save writes a Score back to disk in its intermediate representation.
func Save(s *model.Score, path string) error {
	data, err := json.MarshalIndent(InputOf(s), "", "  ")
	if err != nil {
		return fmt.Errorf("encode score: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write score file: %w", err)
	}
	return nil
}
