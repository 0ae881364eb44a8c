// Package config loads runtime configuration for the review-drafter binaries
// from REVIEW_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Provider names accepted by REVIEW_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderXAI    = "xai"
)

// Config is the shared configuration for the web server, the Lambda, the MCP
// server and the terminal client. Business name and review URL are static for
// a deployment.
type Config struct {
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	Provider string `envconfig:"PROVIDER" default:"gemini"`
	Model    string `envconfig:"MODEL"`
	// ProviderBaseURL overrides the OpenAI-compatible endpoint (xai provider only).
	ProviderBaseURL string        `envconfig:"PROVIDER_BASE_URL" default:"https://api.x.ai/v1"`
	ProviderTimeout time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"60s"`

	BusinessName        string `envconfig:"BUSINESS_NAME" default:"Blu' Steakhouse"`
	BusinessDescription string `envconfig:"BUSINESS_DESCRIPTION" default:"an upscale steakhouse"`
	ReviewURL           string `envconfig:"REVIEW_URL" default:"https://www.google.com/maps/place/Blu%E2%80%99+Steakhouse"`
	DefaultService      string `envconfig:"DEFAULT_SERVICE" default:"Dinner"`
	// ReviewPlatform names the review site in user-facing copy.
	ReviewPlatform string `envconfig:"REVIEW_PLATFORM" default:"Google"`

	// IntakeURL is the hosted form endpoint that receives negative feedback.
	IntakeURL   string        `envconfig:"INTAKE_URL" default:"https://formspree.io/f/mvgldjyz"`
	ThanksDelay time.Duration `envconfig:"THANKS_DELAY" default:"1s"`

	// APIBaseURL is where the terminal client reaches POST /api/generate-review.
	APIBaseURL string `envconfig:"API_BASE_URL" default:"http://localhost:8080"`

	// AllowedOrigins is a comma-separated CORS allowlist. Empty allows localhost only.
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("REVIEW", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderXAI:
	default:
		return fmt.Errorf("invalid REVIEW_PROVIDER %q: must be %q or %q", c.Provider, ProviderGemini, ProviderXAI)
	}
	if c.ReviewURL == "" {
		return fmt.Errorf("REVIEW_REVIEW_URL is required")
	}
	if c.ThanksDelay < 0 {
		return fmt.Errorf("REVIEW_THANKS_DELAY must not be negative")
	}
	return nil
}

// Origins returns the parsed CORS allowlist.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
