// Package cli holds the bootstrap shared by the review-drafter binaries.
package cli

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/review-drafter/internal/auth"
	"github.com/fpang/review-drafter/internal/config"
	"github.com/fpang/review-drafter/internal/feedback"
	"github.com/fpang/review-drafter/internal/intake"
	"github.com/fpang/review-drafter/internal/review"
)

// BuildGenerator resolves the provider API key and creates the configured
// text generator.
func BuildGenerator(ctx context.Context, cfg config.Config) (review.TextGenerator, error) {
	apiKey, err := auth.GetAPIKey(cfg.Provider)
	if err != nil {
		return nil, err
	}
	return review.NewGenerator(ctx, review.GeneratorOptions{
		Provider: cfg.Provider,
		APIKey:   apiKey,
		Model:    cfg.Model,
		BaseURL:  cfg.ProviderBaseURL,
		Timeout:  cfg.ProviderTimeout,
	})
}

// InitGenerator builds the generator and, when validate is set, probes the
// key with a minimal call. Exits fatally on failure.
func InitGenerator(ctx context.Context, cfg config.Config, validate bool) review.TextGenerator {
	gen, err := BuildGenerator(ctx, cfg)
	if err != nil {
		HandleValidationError(err)
	}
	log.Info().Str("provider", gen.Name()).Msg("Text generator initialized")

	if validate {
		if err := auth.ValidateAPIKey(ctx, gen); err != nil {
			HandleValidationError(err)
		}
		log.Info().Msg("API key validation complete")
	}
	return gen
}

// NewDraftService wraps gen in a review.Service for the configured business.
func NewDraftService(gen review.TextGenerator, cfg config.Config) *review.Service {
	return review.NewService(gen, review.Profile{
		Name:        cfg.BusinessName,
		Description: cfg.BusinessDescription,
	})
}

// NewController creates a feedback controller backed by the system clipboard,
// the default browser and the configured intake endpoint.
func NewController(cfg config.Config, drafter feedback.Drafter, onChange func(feedback.Session)) *feedback.Controller {
	return feedback.NewController(feedback.Settings{
		Business:       cfg.BusinessName,
		ReviewURL:      cfg.ReviewURL,
		ReviewPlatform: cfg.ReviewPlatform,
		DefaultService: cfg.DefaultService,
		ThanksDelay:    cfg.ThanksDelay,
	}, feedback.Deps{
		Drafter:   drafter,
		Clipboard: feedback.SystemClipboard{},
		Opener:    feedback.BrowserOpener{},
		Submitter: intake.NewClient(cfg.IntakeURL, 30*time.Second),
		OnChange:  onChange,
	})
}
