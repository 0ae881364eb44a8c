package review

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// Gemini model IDs suitable for short prose.
const (
	ModelGemini25Flash     = "gemini-2.5-flash"
	ModelGemini25FlashLite = "gemini-2.5-flash-lite"
	ModelGemini3Flash      = "gemini-3-flash-preview"
)

// ModelGrok4 is the default model for the xai provider.
const ModelGrok4 = "grok-4"

// NewGeminiClient creates a Gemini API client for apiKey.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// GeminiGenerator generates text with a single GenerateContent call.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator wraps client. An empty model selects ModelGemini3Flash.
func NewGeminiGenerator(client *genai.Client, model string) *GeminiGenerator {
	if model == "" {
		model = ModelGemini3Flash
	}
	return &GeminiGenerator{client: client, model: model}
}

// Name implements TextGenerator.
func (g *GeminiGenerator) Name() string { return "gemini" }

// Model returns the Gemini model ID in use.
func (g *GeminiGenerator) Model() string { return g.model }

// Generate implements TextGenerator.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	log.Debug().
		Str("model", g.model).
		Int("prompt_length", len(prompt)).
		Msg("Starting Gemini API call for review draft")

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	text := resp.Text()
	log.Debug().
		Int("response_length", len(text)).
		Dur("duration", time.Since(start)).
		Msg("Gemini API response received for review draft")
	return text, nil
}
