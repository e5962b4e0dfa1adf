package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// VoiceID identifies a voice within the score. Voices are indexed from
// the bottom up: voice 0 is the lowest part, higher indexes lie above.
type VoiceID int

// Note is a single note or rest, owned exclusively by its measure and
// voice. Onset and duration are in quarter-note lengths relative to
// the start of the measure.
type Note struct {
	Pitch    Pitch   `json:"pitch"`
	Rest     bool    `json:"rest,omitempty"`
	Onset    Beat    `json:"onset"`
	Duration Beat    `json:"duration"`
	Voice    VoiceID `json:"voice"`
}

// End returns the offset at which the note stops sounding.
func (n Note) End() Beat { return n.Onset.Add(n.Duration) }

// TimeSig is a time signature, e.g. 4/4 or 6/8.
type TimeSig struct {
	Beats int `json:"beats"`
	Unit  int `json:"unit"`
}

// Capacity returns the measure length in quarter-note lengths.
func (t TimeSig) Capacity() Beat {
	return NewBeat(int64(t.Beats)*4, int64(t.Unit))
}

func (t TimeSig) String() string { return fmt.Sprintf("%d/%d", t.Beats, t.Unit) }

// KeySig names the prevailing key of a measure.
type KeySig struct {
	Tonic string `json:"tonic"` // "C", "F#", "Bb"
	Mode  string `json:"mode"`  // "major" or "minor"
}

func (k KeySig) String() string {
	if k.Tonic == "" {
		return ""
	}
	return k.Tonic + " " + k.Mode
}

// VoiceLine is the ordered note sequence of one voice within a measure.
type VoiceLine struct {
	ID    VoiceID
	Notes []Note
}

// Measure is one measure of the score. Voice lines are kept sorted by
// voice id so traversal order is deterministic.
type Measure struct {
	Index  int
	Time   TimeSig
	Key    KeySig
	Voices []VoiceLine
}

// VoiceNote is a note paired with its position in the flattened,
// measure-spanning line of its voice.
type VoiceNote struct {
	MeasureIndex int
	Index        int // index within the flattened voice line
	Note         Note
}

// SonorityEntry is the state of one voice at a sonority.
type SonorityEntry struct {
	Voice    VoiceID
	Pitch    Pitch
	Sounding bool // false when the voice is resting or absent
	Attacked bool // true when the voice attacks a new note here
}

// Sonority is a vertical slice of the score at one attack onset.
// Entries are ordered by voice id.
type Sonority struct {
	Seq          int // global sequence index, score order
	MeasureIndex int
	Onset        Beat // offset within the measure
	Entries      []SonorityEntry
}

// PitchOf returns the sounding pitch of a voice at this sonority.
func (s Sonority) PitchOf(v VoiceID) (Pitch, bool) {
	for _, e := range s.Entries {
		if e.Voice == v {
			return e.Pitch, e.Sounding
		}
	}
	return Pitch{}, false
}

// Score is the immutable in-memory representation of a composition.
// All traversal structures are derived once at construction; a Score
// is safe for concurrent use without synchronization.
type Score struct {
	title      string
	measures   []Measure
	voiceIDs   []VoiceID
	lines      map[VoiceID][]VoiceNote
	sonorities []Sonority
	fp         string
}

// Title returns the optional title of the score.
func (s *Score) Title() string { return s.title }

// NumMeasures returns the number of measures.
func (s *Score) NumMeasures() int { return len(s.measures) }

// Measure returns the i-th measure.
func (s *Score) Measure(i int) Measure { return s.measures[i] }

// VoiceIDs returns all voice ids present in the score, ascending.
func (s *Score) VoiceIDs() []VoiceID { return s.voiceIDs }

// Line returns the flattened, measure-spanning note line of a voice.
func (s *Score) Line(v VoiceID) []VoiceNote { return s.lines[v] }

// Sonorities returns the vertical slices of the score, one per attack
// onset, in score order.
func (s *Score) Sonorities() []Sonority { return s.sonorities }

// Fingerprint returns a stable content hash of the score, suitable as
// a memoization key: identical scores always hash identically.
func (s *Score) Fingerprint() string { return s.fp }

// ScoreInput is the validated intermediate representation a Score is
// constructed from. Interchange-format parsing (MusicXML and friends)
// is an external concern; this is the hand-off shape.
type ScoreInput struct {
	Title    string         `json:"title,omitempty"`
	Measures []MeasureInput `json:"measures"`
}

// MeasureInput describes one measure of input.
type MeasureInput struct {
	Time   string       `json:"time"`          // "4/4"
	Key    string       `json:"key,omitempty"` // "C major"
	Voices []VoiceInput `json:"voices"`
}

// VoiceInput describes one voice within a measure.
type VoiceInput struct {
	Voice int         `json:"voice"`
	Notes []NoteInput `json:"notes"`
}

// NoteInput describes one note or rest.
type NoteInput struct {
	Pitch    string `json:"pitch,omitempty"` // "C#4"; empty or "rest" for a rest
	Onset    string `json:"onset"`
	Duration string `json:"duration"`
}

// NewScore builds an immutable Score from its intermediate
// representation, rejecting malformed input with a
// *MalformedScoreError naming the offending measure and voice.
func NewScore(in ScoreInput) (*Score, error) {
	if len(in.Measures) == 0 {
		return nil, &MalformedScoreError{Measure: 0, Voice: -1, Reason: "score has no measures"}
	}

	measures := make([]Measure, 0, len(in.Measures))
	voiceSet := map[VoiceID]bool{}

	for mi, min := range in.Measures {
		ts, err := parseTimeSig(min.Time)
		if err != nil {
			return nil, &MalformedScoreError{Measure: mi, Voice: -1, Reason: err.Error()}
		}
		ks := parseKeySig(min.Key)

		m := Measure{Index: mi, Time: ts, Key: ks}
		seen := map[VoiceID]bool{}
		for _, vin := range min.Voices {
			v := VoiceID(vin.Voice)
			if v < 0 {
				return nil, &MalformedScoreError{Measure: mi, Voice: v, Reason: "negative voice id"}
			}
			if seen[v] {
				return nil, &MalformedScoreError{Measure: mi, Voice: v, Reason: "duplicate voice in measure"}
			}
			seen[v] = true

			line, err := buildVoiceLine(mi, v, vin.Notes, ts.Capacity())
			if err != nil {
				return nil, err
			}
			m.Voices = append(m.Voices, line)
			voiceSet[v] = true
		}
		sort.Slice(m.Voices, func(a, b int) bool { return m.Voices[a].ID < m.Voices[b].ID })
		measures = append(measures, m)
	}

	voiceIDs := make([]VoiceID, 0, len(voiceSet))
	for v := range voiceSet {
		voiceIDs = append(voiceIDs, v)
	}
	sort.Slice(voiceIDs, func(a, b int) bool { return voiceIDs[a] < voiceIDs[b] })

	s := &Score{title: in.Title, measures: measures, voiceIDs: voiceIDs}
	s.lines = buildLines(measures, voiceIDs)
	s.sonorities = buildSonorities(measures, voiceIDs)
	s.fp = fingerprint(s)
	return s, nil
}

func buildVoiceLine(mi int, v VoiceID, notes []NoteInput, capacity Beat) (VoiceLine, error) {
	line := VoiceLine{ID: v}
	cursor := NewBeat(0, 1)
	total := NewBeat(0, 1)

	for ni, nin := range notes {
		onset, err := ParseBeat(nin.Onset)
		if err != nil {
			return line, &MalformedScoreError{Measure: mi, Voice: v, Reason: fmt.Sprintf("note %d: %v", ni, err)}
		}
		dur, err := ParseBeat(nin.Duration)
		if err != nil {
			return line, &MalformedScoreError{Measure: mi, Voice: v, Reason: fmt.Sprintf("note %d: %v", ni, err)}
		}
		if dur.Cmp(NewBeat(0, 1)) <= 0 {
			return line, &MalformedScoreError{Measure: mi, Voice: v, Reason: fmt.Sprintf("note %d: non-positive duration", ni)}
		}

		n := Note{Onset: onset, Duration: dur, Voice: v}
		ps := strings.TrimSpace(strings.ToLower(nin.Pitch))
		if ps == "" || ps == "rest" || ps == "r" {
			n.Rest = true
		} else {
			p, err := ParsePitch(nin.Pitch)
			if err != nil {
				return line, &MalformedScoreError{Measure: mi, Voice: v, Reason: fmt.Sprintf("note %d: %v", ni, err)}
			}
			n.Pitch = p
		}

		if ni > 0 && onset.Cmp(cursor) < 0 {
			return line, &MalformedScoreError{Measure: mi, Voice: v, Reason: fmt.Sprintf("note %d: overlaps previous note", ni)}
		}
		if !onset.Equal(cursor) {
			return line, &MalformedScoreError{Measure: mi, Voice: v, Reason: fmt.Sprintf("note %d: gap before onset %s", ni, onset)}
		}
		cursor = onset.Add(dur)
		total = total.Add(dur)
		line.Notes = append(line.Notes, n)
	}

	if len(line.Notes) > 0 && !total.Equal(capacity) {
		return line, &MalformedScoreError{
			Measure: mi, Voice: v,
			Reason: fmt.Sprintf("durations sum to %s, time signature requires %s", total, capacity),
		}
	}
	return line, nil
}

func buildLines(measures []Measure, voiceIDs []VoiceID) map[VoiceID][]VoiceNote {
	lines := make(map[VoiceID][]VoiceNote, len(voiceIDs))
	for _, m := range measures {
		for _, vl := range m.Voices {
			for _, n := range vl.Notes {
				idx := len(lines[vl.ID])
				lines[vl.ID] = append(lines[vl.ID], VoiceNote{
					MeasureIndex: m.Index,
					Index:        idx,
					Note:         n,
				})
			}
		}
	}
	return lines
}

// buildSonorities collects every distinct attack onset and records the
// sounding note of each voice at that point.
func buildSonorities(measures []Measure, voiceIDs []VoiceID) []Sonority {
	var out []Sonority
	seq := 0
	for _, m := range measures {
		// Gather distinct onsets in this measure, ascending.
		var onsets []Beat
		for _, vl := range m.Voices {
			for _, n := range vl.Notes {
				onsets = append(onsets, n.Onset)
			}
		}
		sort.Slice(onsets, func(a, b int) bool { return onsets[a].Cmp(onsets[b]) < 0 })
		onsets = dedupeBeats(onsets)

		for _, t := range onsets {
			son := Sonority{Seq: seq, MeasureIndex: m.Index, Onset: t}
			for _, v := range voiceIDs {
				entry := SonorityEntry{Voice: v}
				for _, vl := range m.Voices {
					if vl.ID != v {
						continue
					}
					for _, n := range vl.Notes {
						if n.Onset.Cmp(t) <= 0 && t.Cmp(n.End()) < 0 {
							if !n.Rest {
								entry.Pitch = n.Pitch
								entry.Sounding = true
							}
							entry.Attacked = n.Onset.Equal(t)
						}
					}
				}
				son.Entries = append(son.Entries, entry)
			}
			out = append(out, son)
			seq++
		}
	}
	return out
}

func dedupeBeats(bs []Beat) []Beat {
	out := bs[:0]
	for _, b := range bs {
		if len(out) == 0 || !out[len(out)-1].Equal(b) {
			out = append(out, b)
		}
	}
	return out
}

// fingerprint hashes the canonical traversal of the score.
func fingerprint(s *Score) string {
	h := sha256.New()
	fmt.Fprintf(h, "title=%s;", s.title)
	for _, m := range s.measures {
		fmt.Fprintf(h, "m%d:%s:%s;", m.Index, m.Time, m.Key)
		for _, vl := range m.Voices {
			fmt.Fprintf(h, "v%d:", vl.ID)
			for _, n := range vl.Notes {
				if n.Rest {
					fmt.Fprintf(h, "rest@%s+%s,", n.Onset, n.Duration)
				} else {
					fmt.Fprintf(h, "%s@%s+%s,", n.Pitch, n.Onset, n.Duration)
				}
			}
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func parseTimeSig(s string) (TimeSig, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "/", 2)
	if len(parts) != 2 {
		return TimeSig{}, fmt.Errorf("invalid time signature %q", s)
	}
	var ts TimeSig
	if _, err := fmt.Sscanf(parts[0], "%d", &ts.Beats); err != nil || ts.Beats <= 0 {
		return TimeSig{}, fmt.Errorf("invalid time signature %q", s)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &ts.Unit); err != nil || ts.Unit <= 0 {
		return TimeSig{}, fmt.Errorf("invalid time signature %q", s)
	}
	return ts, nil
}

func parseKeySig(s string) KeySig {
	fields := strings.Fields(strings.TrimSpace(s))
	switch len(fields) {
	case 0:
		return KeySig{}
	case 1:
		return KeySig{Tonic: fields[0], Mode: "major"}
	default:
		return KeySig{Tonic: fields[0], Mode: strings.ToLower(fields[1])}
	}
}
