package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/cantuslabs/cantus/internal/model"
	"github.com/cantuslabs/cantus/internal/scorefile"
)

// OpenAIGenerator regenerates scores through the Chat Completions API.
// A custom BaseURL points it at any OpenAI-compatible endpoint,
// including local inference servers.
type OpenAIGenerator struct {
	client *openai.Client
	config Config
}

// NewOpenAIGenerator creates a new OpenAI-backed generator.
func NewOpenAIGenerator(config Config) (*OpenAIGenerator, error) {
	if config.APIKey == "" && config.BaseURL == "" {
		return nil, fmt.Errorf("generator API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the generator name, also its rate-limit key.
func (g *OpenAIGenerator) Name() string {
	return "openai"
}

// IsAvailable checks if the backend is reachable and configured.
func (g *OpenAIGenerator) IsAvailable(ctx context.Context) bool {
	_, err := g.client.ListModels(ctx)
	return err == nil
}

// Regenerate asks the backend for a revised score and validates the
// response the same way any ingested score is validated. A response
// that changes the score's shape (voices, measures) is rejected so the
// loop never silently verifies a different piece.
func (g *OpenAIGenerator) Regenerate(ctx context.Context, score *model.Score, violations []model.Violation) (*model.Score, error) {
	prompt, err := BuildPrompt(scorefile.InputOf(score), violations)
	if err != nil {
		return nil, err
	}

	mdl := g.config.Model
	if mdl == "" {
		mdl = openai.GPT4oMini
	}
	maxTokens := g.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4000
	}
	timeout := g.config.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: mdl,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You revise polyphonic scores to satisfy stylistic rules. You respond with score JSON only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("generator API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from generator")
	}

	body := StripFences(strings.TrimSpace(resp.Choices[0].Message.Content))
	next, err := scorefile.ParseRelaxed([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("generator returned invalid score: %w", err)
	}

	if next.NumMeasures() != score.NumMeasures() {
		return nil, fmt.Errorf("generator changed measure count: %d -> %d",
			score.NumMeasures(), next.NumMeasures())
	}
	if len(next.VoiceIDs()) != len(score.VoiceIDs()) {
		return nil, fmt.Errorf("generator changed voice count: %d -> %d",
			len(score.VoiceIDs()), len(next.VoiceIDs()))
	}
	return next, nil
}
