package auth

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// KeyEnvVar returns the environment variable holding the API key for provider.
func KeyEnvVar(provider string) string {
	if provider == "xai" {
		return "XAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}

// GetAPIKey retrieves the provider API key from the environment. On Lambda the
// variable is populated from SSM before this is called.
func GetAPIKey(provider string) (string, error) {
	envVar := KeyEnvVar(provider)
	if key := os.Getenv(envVar); key != "" {
		log.Debug().Str("env", envVar).Msg("Using API key from environment variable")
		return key, nil
	}
	return "", &ValidationError{
		Type:    ErrTypeNoKey,
		Message: fmt.Sprintf("API key not found. Set %s", envVar),
	}
}
