package llm

import (
	"strings"
	"testing"
	"time"

	"github.com/cantuslabs/cantus/internal/model"
)

func TestBuildPrompt(t *testing.T) {
	input := model.ScoreInput{
		Title: "draft",
		Measures: []model.MeasureInput{{
			Time: "4/4",
			Voices: []model.VoiceInput{
				{Voice: 0, Notes: []model.NoteInput{{Pitch: "C4", Onset: "0", Duration: "4"}}},
			},
		}},
	}
	violations := []model.Violation{{
		Rule:        "parallel-perfects",
		Where:       "measure 1, voices 0/1",
		Explanation: "voices 0 and 1 move in parallel perfect fifths",
	}}

	prompt, err := BuildPrompt(input, violations)
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}

	for _, want := range []string{
		"\"draft\"",
		"\"C4\"",
		"parallel-perfects",
		"measure 1, voices 0/1",
		"same number of voices",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := StripFences(tt.in); got != tt.want {
			t.Errorf("StripFences(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestNewGenerator(t *testing.T) {
	g, err := NewGenerator(Config{Provider: ""})
	if err != nil || g != nil {
		t.Errorf("Expected a disabled generator for an empty provider, got %v, %v", g, err)
	}

	if _, err := NewGenerator(Config{Provider: "openai"}); err == nil {
		t.Error("Expected an error without an API key or base URL")
	}

	g, err = NewGenerator(Config{Provider: "openai", APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("Expected no error with an API key, got %v", err)
	}
	if g.Name() != "openai" {
		t.Errorf("Name = %q, expected openai", g.Name())
	}

	g, err = NewGenerator(Config{Provider: "OpenAI", BaseURL: "http://localhost:8080/v1"})
	if err != nil {
		t.Fatalf("Expected a base URL to stand in for the key, got %v", err)
	}
	if g == nil {
		t.Fatal("Expected a generator")
	}

	if _, err := NewGenerator(Config{Provider: "parrot"}); err == nil {
		t.Error("Expected an error for an unknown provider")
	}
}

func TestConfigFromModel(t *testing.T) {
	mc := model.GeneratorConfig{
		Provider:  "openai",
		Model:     "gpt-4o",
		APIKey:    "sk-test",
		BaseURL:   "http://localhost:8080/v1",
		Timeout:   90,
		MaxTokens: 2000,
	}
	cfg := ConfigFromModel(mc)
	if cfg.Provider != "openai" || cfg.Model != "gpt-4o" || cfg.APIKey != "sk-test" {
		t.Errorf("ConfigFromModel dropped fields: %+v", cfg)
	}
	if cfg.BaseURL != mc.BaseURL || cfg.MaxTokens != mc.MaxTokens {
		t.Errorf("ConfigFromModel dropped fields: %+v", cfg)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, expected 90s", cfg.Timeout)
	}
}
