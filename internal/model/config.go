package model

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete cantus configuration.
type Config struct {
	Rules       RuleConfig        `yaml:"rules" json:"rules"`
	Solver      SolverConfig      `yaml:"solver" json:"solver"`
	Loop        LoopConfig        `yaml:"loop" json:"loop"`
	Generator   GeneratorConfig   `yaml:"generator" json:"generator"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	Output      OutputConfig      `yaml:"output" json:"output"`
}

// RuleConfig is the enumerated set of recognized per-rule options.
// Unknown keys in a rule configuration file are rejected at load time,
// never silently ignored.
type RuleConfig struct {
	// MaxMelodicLeap is the largest compliant melodic interval in
	// semitones. A leap of exactly this size is compliant.
	MaxMelodicLeap int `yaml:"maxMelodicLeap" json:"maxMelodicLeap"`

	// LeapResolutionWindow is how many following notes may supply the
	// contrary-motion stepwise resolution that excuses a larger leap.
	LeapResolutionWindow int `yaml:"leapResolutionWindow" json:"leapResolutionWindow"`

	// AllowParallelFifthsInOuterVoices exempts perfect fifths between
	// the outermost voice pair from the parallel-motion prohibition.
	AllowParallelFifthsInOuterVoices bool `yaml:"allowParallelFifthsInOuterVoices" json:"allowParallelFifthsInOuterVoices"`

	// DissonanceResolutionWindow is how many subsequent onsets a
	// dissonance has to resolve in.
	DissonanceResolutionWindow int `yaml:"dissonanceResolutionWindow" json:"dissonanceResolutionWindow"`

	// Disabled lists rule ids excluded from this run.
	Disabled []string `yaml:"disabled,omitempty" json:"disabled,omitempty"`

	// Weights overrides the per-rule severity weight in [0,1].
	Weights map[string]float64 `yaml:"weights,omitempty" json:"weights,omitempty"`
}

// Validate checks option ranges. Rule-id references in Disabled and
// Weights are checked against the registry when rules are built.
func (c *RuleConfig) Validate() error {
	if c.MaxMelodicLeap < 0 {
		return &RuleConfigError{Option: "maxMelodicLeap", Reason: "must be >= 0"}
	}
	if c.LeapResolutionWindow < 0 {
		return &RuleConfigError{Option: "leapResolutionWindow", Reason: "must be >= 0"}
	}
	if c.DissonanceResolutionWindow < 1 {
		return &RuleConfigError{Option: "dissonanceResolutionWindow", Reason: "must be >= 1"}
	}
	for rule, w := range c.Weights {
		if w < 0 || w > 1 {
			return &RuleConfigError{Option: "weights." + rule, Reason: "must be in [0,1]"}
		}
	}
	return nil
}

// LoadRuleConfig reads a rule configuration file. Decoding is strict:
// an unrecognized key is a *RuleConfigError, not a silent no-op.
func LoadRuleConfig(path string) (RuleConfig, error) {
	cfg := DefaultConfig().Rules
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open rule config: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, &RuleConfigError{Reason: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SolverConfig configures the satisfiability boundary.
type SolverConfig struct {
	// Engine names the backing engine. "gini" is the default.
	Engine string `yaml:"engine" json:"engine"`
	// Timeout bounds a single solver call.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// LoopConfig bounds the verify/regenerate feedback loop.
type LoopConfig struct {
	MaxIterations int     `yaml:"maxIterations" json:"maxIterations"`
	Threshold     float64 `yaml:"threshold" json:"threshold"` // conformance in [0,1] that counts as converged
}

// GeneratorConfig configures the external generator boundary.
type GeneratorConfig struct {
	Provider          string  `yaml:"provider" json:"provider"` // "openai" or "" (disabled)
	Model             string  `yaml:"model" json:"model"`
	APIKey            string  `yaml:"-" json:"-"`
	BaseURL           string  `yaml:"baseURL,omitempty" json:"baseURL,omitempty"`
	Timeout           int     `yaml:"timeout" json:"timeout"` // seconds per request
	MaxTokens         int     `yaml:"maxTokens" json:"maxTokens"`
	RequestsPerMinute float64 `yaml:"requestsPerMinute" json:"requestsPerMinute"`
}

// CacheConfig configures verification memoization. Sound because
// verification is deterministic in (score, rule configuration).
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	Dir     string        `yaml:"dir" json:"dir"`
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
}

// ConcurrencyConfig sizes the worker pools.
type ConcurrencyConfig struct {
	CompileWorkers int `yaml:"compileWorkers" json:"compileWorkers"`
	BatchWorkers   int `yaml:"batchWorkers" json:"batchWorkers"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose"`
	IncludeFooter bool `yaml:"includeFooter" json:"includeFooter"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Rules: RuleConfig{
			MaxMelodicLeap:                   12,
			LeapResolutionWindow:             2,
			AllowParallelFifthsInOuterVoices: false,
			DissonanceResolutionWindow:       1,
		},
		Solver: SolverConfig{
			Engine:  "gini",
			Timeout: 30 * time.Second,
		},
		Loop: LoopConfig{
			MaxIterations: 5,
			Threshold:     1.0,
		},
		Generator: GeneratorConfig{
			Provider:          "",
			Model:             "gpt-4o-mini",
			Timeout:           60,
			MaxTokens:         4000,
			RequestsPerMinute: 20,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     defaultCacheDir(),
			TTL:     24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			CompileWorkers: runtime.NumCPU(),
			BatchWorkers:   runtime.NumCPU(),
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cantus-cache"
	}
	return home + "/.cantus/cache"
}
