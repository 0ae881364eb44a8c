package cli

import (
	"errors"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/fpang/review-drafter/internal/auth"
)

// HandleValidationError logs err with a remedy for its category and exits.
func HandleValidationError(err error) {
	var validationErr *auth.ValidationError
	if errors.As(err, &validationErr) {
		switch validationErr.Type {
		case auth.ErrTypeNoKey:
			log.Fatal().Msg(validationErr.Message)
		case auth.ErrTypeInvalidKey:
			log.Fatal().Err(err).Msg("Invalid API key. Please check your API key and try again")
		case auth.ErrTypeNetworkError:
			log.Fatal().Err(err).Msg("Network error. Please check your internet connection")
		default:
			log.Fatal().Err(err).Msg("API key validation failed")
		}
	} else {
		log.Fatal().Err(err).Msg("Failed to initialize text generator")
	}
	os.Exit(1)
}
