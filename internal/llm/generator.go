// Package llm adapts chat-completion backends into score generators
// for the feedback loop. The prompt carries the current score and its
// violations; the response must be a single score JSON document.
package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cantuslabs/cantus/internal/model"
)

// Config holds generator backend configuration.
type Config struct {
	// Provider name: "openai", "" (disabled). OpenAI-compatible
	// endpoints (local inference servers included) are reached by
	// setting BaseURL.
	Provider string

	// Model name (provider-specific).
	Model string

	// APIKey for the backend. Never serialized.
	APIKey string

	// BaseURL for custom OpenAI-compatible endpoints.
	BaseURL string

	// Timeout for one regeneration request.
	Timeout time.Duration

	// MaxTokens for response generation.
	MaxTokens int
}

// ConfigFromModel converts model.GeneratorConfig to llm.Config.
func ConfigFromModel(gc model.GeneratorConfig) Config {
	return Config{
		Provider:  gc.Provider,
		Model:     gc.Model,
		APIKey:    gc.APIKey,
		BaseURL:   gc.BaseURL,
		Timeout:   time.Duration(gc.Timeout) * time.Second,
		MaxTokens: gc.MaxTokens,
	}
}

// BuildPrompt constructs the regeneration prompt. Violations are
// passed verbatim as JSON so the backend sees the exact locations and
// explanations the verifier produced.
func BuildPrompt(input model.ScoreInput, violations []model.Violation) (string, error) {
	scoreJSON, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal score: %w", err)
	}
	violJSON, err := json.MarshalIndent(violations, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal violations: %w", err)
	}

	var b strings.Builder
	b.WriteString(`You are revising a polyphonic score that failed stylistic verification.

CRITICAL RULES:
1. Respond with ONLY a single JSON document in the exact same schema as the score below. No prose, no markdown fences.
2. Keep the same number of voices, the same number of measures, and the same time signature in every measure.
3. Every voice must fill each measure exactly: note durations per measure must sum to the measure capacity, with explicit "rest" entries for silence.
4. Change as little as possible: fix the violated locations, leave conformant passages untouched.

Current score:
`)
	b.Write(scoreJSON)
	b.WriteString("\n\nViolations to fix:\n")
	b.Write(violJSON)
	b.WriteString("\n\nReturn the revised score JSON now.")
	return b.String(), nil
}

// StripFences removes a markdown code fence if the backend wrapped the
// JSON in one despite instructions.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
