// Package rules holds the stylistic rule library. Each rule is an
// independent variant of the same capability: it names the score
// locations it applies to, and compiles each location into ground
// propositional constraints. The compiler never needs to know which
// rules exist; registering a new rule is the only change required.
package rules

import (
	"sort"

	"github.com/cantuslabs/cantus/internal/logic"
	"github.com/cantuslabs/cantus/internal/model"
)

// Rule is the capability every stylistic rule conforms to.
type Rule interface {
	// ID returns the stable rule identifier used in provenance tags
	// and reports.
	ID() string

	// Describe returns the human-readable one-line description.
	Describe() string

	// Scope returns every location the rule applies to, in a stable
	// order for the given score.
	Scope(s *model.Score) []model.Location

	// Compile translates one in-scope location into zero or more
	// constraints. A location the rule cannot evaluate yields no
	// constraints and a warning; such locations are excluded from the
	// conformance denominator. Compile must be pure: identical
	// (score, location) always yields identical output.
	Compile(s *model.Score, loc model.Location) ([]logic.Constraint, []model.Warning)
}

// defaultWeights are the built-in severity weights, overridable per
// run through RuleConfig.Weights.
var defaultWeights = map[string]float64{
	RuleMelodicLeap:          0.6,
	RuleParallelPerfects:     0.9,
	RuleVoiceCrossing:        0.5,
	RuleDissonanceResolution: 0.7,
	RuleHarshSonority:        0.9,
}

// Rule identifiers.
const (
	RuleMelodicLeap          = "melodic-leap"
	RuleParallelPerfects     = "parallel-perfects"
	RuleVoiceCrossing        = "voice-crossing"
	RuleDissonanceResolution = "dissonance-resolution"
	RuleHarshSonority        = "harsh-sonority"
)

// Known returns all registered rule ids in registration order.
func Known() []string {
	return []string{
		RuleMelodicLeap,
		RuleParallelPerfects,
		RuleVoiceCrossing,
		RuleDissonanceResolution,
		RuleHarshSonority,
	}
}

// Build instantiates the active rule set for a configuration, in fixed
// registration order. Unknown rule ids referenced by the configuration
// are rejected.
func Build(cfg model.RuleConfig) ([]Rule, error) {
	known := map[string]bool{}
	for _, id := range Known() {
		known[id] = true
	}
	for _, id := range cfg.Disabled {
		if !known[id] {
			return nil, &model.RuleConfigError{Option: "disabled", Reason: "unknown rule " + id}
		}
	}
	for id := range cfg.Weights {
		if !known[id] {
			return nil, &model.RuleConfigError{Option: "weights", Reason: "unknown rule " + id}
		}
	}

	disabled := map[string]bool{}
	for _, id := range cfg.Disabled {
		disabled[id] = true
	}

	all := []Rule{
		&MelodicLeap{Max: cfg.MaxMelodicLeap, Window: cfg.LeapResolutionWindow},
		&ParallelPerfects{AllowOuterFifths: cfg.AllowParallelFifthsInOuterVoices},
		&VoiceCrossing{},
		&DissonanceResolution{Window: cfg.DissonanceResolutionWindow},
		&HarshSonority{},
	}

	out := make([]Rule, 0, len(all))
	for _, r := range all {
		if !disabled[r.ID()] {
			out = append(out, r)
		}
	}
	return out, nil
}

// Weight returns the severity weight for a rule under a configuration.
func Weight(cfg model.RuleConfig, id string) float64 {
	if w, ok := cfg.Weights[id]; ok {
		return w
	}
	if w, ok := defaultWeights[id]; ok {
		return w
	}
	return 0.5
}

// Describe returns the description of a registered rule id, or "".
func Describe(id string) string {
	cfg := model.DefaultConfig().Rules
	all, _ := Build(cfg)
	for _, r := range all {
		if r.ID() == id {
			return r.Describe()
		}
	}
	return ""
}

// soundingPairs lists voice pairs (low id first) with both voices
// sounding at the sonority, ordered deterministically.
func soundingPairs(son model.Sonority) [][2]model.VoiceID {
	var sounding []model.VoiceID
	for _, e := range son.Entries {
		if e.Sounding {
			sounding = append(sounding, e.Voice)
		}
	}
	sort.Slice(sounding, func(a, b int) bool { return sounding[a] < sounding[b] })
	var out [][2]model.VoiceID
	for i := 0; i < len(sounding); i++ {
		for j := i + 1; j < len(sounding); j++ {
			out = append(out, [2]model.VoiceID{sounding[i], sounding[j]})
		}
	}
	return out
}
