package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fpang/review-drafter/internal/metrics"
	"github.com/rs/zerolog/log"
)

// TextGenerator is a hosted single-call text-completion provider.
type TextGenerator interface {
	// Name identifies the provider in logs and metrics.
	Name() string
	// Generate sends prompt as the entire input and returns the raw text.
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorOptions selects and configures a provider.
type GeneratorOptions struct {
	Provider string // "gemini" or "xai"
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// NewGenerator builds the TextGenerator named by opts.Provider.
func NewGenerator(ctx context.Context, opts GeneratorOptions) (TextGenerator, error) {
	switch opts.Provider {
	case "gemini", "":
		client, err := NewGeminiClient(ctx, opts.APIKey)
		if err != nil {
			return nil, err
		}
		return NewGeminiGenerator(client, opts.Model), nil
	case "xai":
		return NewChatGenerator(opts.APIKey, opts.BaseURL, opts.Model, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", opts.Provider)
	}
}

// Service turns draft requests into review prose. It holds no per-call state:
// identical requests make independent upstream calls.
type Service struct {
	gen     TextGenerator
	profile Profile
}

// NewService creates a Service that drafts reviews of the business in profile.
func NewService(gen TextGenerator, profile Profile) *Service {
	return &Service{gen: gen, profile: profile}
}

// Generator returns the underlying provider.
func (s *Service) Generator() TextGenerator { return s.gen }

// GenerateDraft renders the instruction for req and issues exactly one
// provider call. Any failure yields Failed(FailedMessage); the cause is only
// logged.
func (s *Service) GenerateDraft(ctx context.Context, req DraftRequest) DraftResponse {
	prompt := BuildPrompt(s.profile, req)

	start := time.Now()
	text, err := s.gen.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyResponse
	}
	elapsed := time.Since(start)

	if err != nil {
		pe := Classify(err)
		log.Error().
			Err(err).
			Str("provider", s.gen.Name()).
			Str("kind", pe.Kind.String()).
			Str("reason", pe.Message).
			Dur("duration", elapsed).
			Msg("Error generating review")
		metrics.RecordDraft(s.gen.Name(), pe.Kind.String(), elapsed)
		return Failed(FailedMessage)
	}

	log.Info().
		Str("provider", s.gen.Name()).
		Int("draft_length", len(text)).
		Dur("duration", elapsed).
		Msg("Review draft generated")
	metrics.RecordDraft(s.gen.Name(), "success", elapsed)
	return Succeeded(text)
}
