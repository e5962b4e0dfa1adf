package llm

import (
	"fmt"
	"strings"

	"github.com/cantuslabs/cantus/internal/loop"
)

// NewGenerator creates a generator based on configuration. An empty
// provider disables regeneration: the returned generator is nil and
// the loop ends after the first non-converged verification.
func NewGenerator(config Config) (loop.Generator, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIGenerator(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown generator provider: %s (supported: openai)", config.Provider)
	}
}
