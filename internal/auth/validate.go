package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fpang/review-drafter/internal/review"
	"github.com/rs/zerolog/log"
)

// ValidationError represents a specific type of API key validation failure.
type ValidationError struct {
	Type    ValidationErrorType
	Message string
	Err     error
}

// ValidationErrorType categorizes validation failures.
type ValidationErrorType int

const (
	// ErrTypeNoKey indicates no API key was found.
	ErrTypeNoKey ValidationErrorType = iota
	// ErrTypeInvalidKey indicates the API key is invalid or revoked.
	ErrTypeInvalidKey
	// ErrTypeNetworkError indicates a network connectivity issue.
	ErrTypeNetworkError
	// ErrTypeUnknown indicates any other provider failure.
	ErrTypeUnknown
)

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateAPIKey verifies the provider key with a minimal generation call.
func ValidateAPIKey(ctx context.Context, gen review.TextGenerator) error {
	log.Debug().Str("provider", gen.Name()).Msg("Validating API key")

	start := time.Now()
	_, err := gen.Generate(ctx, "hi")
	elapsed := time.Since(start)
	if err != nil {
		valErr := classifyError(err)
		log.Error().
			Err(err).
			Str("provider", gen.Name()).
			Dur("duration", elapsed).
			Msg("API key validation failed")
		return valErr
	}

	log.Info().Str("provider", gen.Name()).Dur("duration", elapsed).Msg("API key validated successfully")
	return nil
}

func classifyError(err error) *ValidationError {
	pe := review.Classify(err)

	var statusErr *review.StatusError
	invalidKey := errors.As(err, &statusErr) && (statusErr.Code == 401 || statusErr.Code == 403)
	errLower := strings.ToLower(err.Error())
	if strings.Contains(errLower, "api key not valid") ||
		strings.Contains(errLower, "invalid api key") ||
		strings.Contains(errLower, "permission denied") {
		invalidKey = true
	}

	switch {
	case invalidKey:
		return &ValidationError{Type: ErrTypeInvalidKey, Message: "API key is invalid or has been revoked", Err: err}
	case pe.Kind == review.FailureNetwork:
		return &ValidationError{Type: ErrTypeNetworkError, Message: "Network error - check your internet connection", Err: err}
	default:
		return &ValidationError{Type: ErrTypeUnknown, Message: "Failed to validate API key", Err: err}
	}
}
