package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeRuleConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write rule config: %v", err)
	}
	return path
}

func TestLoadRuleConfig(t *testing.T) {
	path := writeRuleConfig(t, `
maxMelodicLeap: 9
leapResolutionWindow: 3
allowParallelFifthsInOuterVoices: true
dissonanceResolutionWindow: 2
disabled:
  - harsh-sonority
weights:
  melodic-leap: 0.3
`)

	cfg, err := LoadRuleConfig(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.MaxMelodicLeap != 9 {
		t.Errorf("MaxMelodicLeap = %d, expected 9", cfg.MaxMelodicLeap)
	}
	if cfg.LeapResolutionWindow != 3 {
		t.Errorf("LeapResolutionWindow = %d, expected 3", cfg.LeapResolutionWindow)
	}
	if !cfg.AllowParallelFifthsInOuterVoices {
		t.Error("Expected AllowParallelFifthsInOuterVoices = true")
	}
	if len(cfg.Disabled) != 1 || cfg.Disabled[0] != "harsh-sonority" {
		t.Errorf("Disabled = %v, expected [harsh-sonority]", cfg.Disabled)
	}
	if cfg.Weights["melodic-leap"] != 0.3 {
		t.Errorf("Weights[melodic-leap] = %v, expected 0.3", cfg.Weights["melodic-leap"])
	}
}

func TestLoadRuleConfig_UnknownKeyRejected(t *testing.T) {
	path := writeRuleConfig(t, "maxMelodicLep: 9\n")

	_, err := LoadRuleConfig(path)
	if err == nil {
		t.Fatal("Expected an error for an unknown option key")
	}
	var rce *RuleConfigError
	if !errors.As(err, &rce) {
		t.Errorf("Expected *RuleConfigError, got %T: %v", err, err)
	}
}

func TestLoadRuleConfig_PartialKeepsDefaults(t *testing.T) {
	path := writeRuleConfig(t, "maxMelodicLeap: 7\n")

	cfg, err := LoadRuleConfig(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.MaxMelodicLeap != 7 {
		t.Errorf("MaxMelodicLeap = %d, expected 7", cfg.MaxMelodicLeap)
	}
	def := DefaultConfig().Rules
	if cfg.LeapResolutionWindow != def.LeapResolutionWindow {
		t.Errorf("LeapResolutionWindow = %d, expected default %d", cfg.LeapResolutionWindow, def.LeapResolutionWindow)
	}
	if cfg.DissonanceResolutionWindow != def.DissonanceResolutionWindow {
		t.Errorf("DissonanceResolutionWindow = %d, expected default %d", cfg.DissonanceResolutionWindow, def.DissonanceResolutionWindow)
	}
}

func TestRuleConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RuleConfig)
		wantErr bool
	}{
		{"defaults", func(c *RuleConfig) {}, false},
		{"negative leap", func(c *RuleConfig) { c.MaxMelodicLeap = -1 }, true},
		{"negative window", func(c *RuleConfig) { c.LeapResolutionWindow = -1 }, true},
		{"zero dissonance window", func(c *RuleConfig) { c.DissonanceResolutionWindow = 0 }, true},
		{"weight above one", func(c *RuleConfig) { c.Weights = map[string]float64{"melodic-leap": 1.5} }, true},
		{"weight below zero", func(c *RuleConfig) { c.Weights = map[string]float64{"melodic-leap": -0.1} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig().Rules
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected a validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestSeverityFromWeight(t *testing.T) {
	tests := []struct {
		w    float64
		want Severity
	}{
		{0.9, SeverityCritical},
		{0.8, SeverityCritical},
		{0.7, SeverityWarning},
		{0.4, SeverityWarning},
		{0.3, SeverityInfo},
		{0.0, SeverityInfo},
	}
	for _, tt := range tests {
		if got := SeverityFromWeight(tt.w); got != tt.want {
			t.Errorf("SeverityFromWeight(%v) = %s, expected %s", tt.w, got, tt.want)
		}
	}
}
