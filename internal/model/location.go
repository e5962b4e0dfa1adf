package model

import "fmt"

// LocationKind says what a location points at.
type LocationKind string

const (
	// LocNotePair addresses two consecutive notes of one voice:
	// Index is the flattened index of the first note.
	LocNotePair LocationKind = "note_pair"
	// LocSonority addresses one vertical slice: Index is the
	// sonority sequence number.
	LocSonority LocationKind = "sonority"
	// LocSonorityPair addresses two consecutive sonorities: Index is
	// the sequence number of the first.
	LocSonorityPair LocationKind = "sonority_pair"
)

// Location addresses the exact spot in the score a rule applies to or
// a violation occurred at. Voice2 is -1 for single-voice locations.
type Location struct {
	Kind    LocationKind `json:"kind"`
	Measure int          `json:"measure"`
	Voice   VoiceID      `json:"voice"`
	Voice2  VoiceID      `json:"voice2"`
	Index   int          `json:"index"`
}

// NoteLocation addresses a note pair within one voice.
func NoteLocation(measure int, v VoiceID, index int) Location {
	return Location{Kind: LocNotePair, Measure: measure, Voice: v, Voice2: -1, Index: index}
}

// SonorityLocation addresses a single sonority, optionally a voice pair
// within it.
func SonorityLocation(measure int, v, v2 VoiceID, seq int) Location {
	return Location{Kind: LocSonority, Measure: measure, Voice: v, Voice2: v2, Index: seq}
}

// SonorityPairLocation addresses two consecutive sonorities for a
// voice pair.
func SonorityPairLocation(measure int, v, v2 VoiceID, seq int) Location {
	return Location{Kind: LocSonorityPair, Measure: measure, Voice: v, Voice2: v2, Index: seq}
}

// Key returns a stable, total-order sort key. Tag assignment sorts on
// (rule id, Key, sub-index), so Key must order identically across runs.
func (l Location) Key() string {
	return fmt.Sprintf("%06d:%06d:%s:%03d:%03d", l.Measure, l.Index, l.Kind, l.Voice+1, l.Voice2+1)
}

// String renders a human-readable descriptor, measures numbered from 1.
func (l Location) String() string {
	switch {
	case l.Voice >= 0 && l.Voice2 >= 0:
		return fmt.Sprintf("measure %d, voices %d/%d", l.Measure+1, l.Voice, l.Voice2)
	case l.Voice >= 0:
		return fmt.Sprintf("measure %d, voice %d", l.Measure+1, l.Voice)
	default:
		return fmt.Sprintf("measure %d", l.Measure+1)
	}
}
