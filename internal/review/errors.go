package review

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"google.golang.org/genai"
)

// ErrEmptyResponse is returned by a generator when the provider answered but
// produced no usable text.
var ErrEmptyResponse = errors.New("provider returned an empty response")

// FailureKind categorizes a failed draft.
type FailureKind int

const (
	// FailureProvider means the provider responded with an error or an
	// unusable payload.
	FailureProvider FailureKind = iota
	// FailureNetwork means the request never reached the provider or its
	// answer never came back.
	FailureNetwork
	// FailureRequest means the inbound draft request could not be decoded.
	FailureRequest
)

func (k FailureKind) String() string {
	switch k {
	case FailureNetwork:
		return "network"
	case FailureRequest:
		return "request"
	default:
		return "provider"
	}
}

// ProviderError is a classified draft failure.
type ProviderError struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// StatusError is an HTTP error answered by an OpenAI-compatible provider.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("provider status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("provider status %d", e.Code)
}

// Classify maps a generator error onto a ProviderError.
func Classify(err error) *ProviderError {
	if err == nil {
		return nil
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code, err)
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return classifyStatus(statusErr.Code, err)
	}

	if errors.Is(err, ErrEmptyResponse) {
		return &ProviderError{Kind: FailureProvider, Message: "provider returned no text", Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &ProviderError{Kind: FailureNetwork, Message: "provider call did not complete", Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &ProviderError{Kind: FailureNetwork, Message: "network error reaching provider", Err: err}
	}

	errLower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errLower, "connection") ||
		strings.Contains(errLower, "timeout") ||
		strings.Contains(errLower, "dial") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "unreachable"):
		return &ProviderError{Kind: FailureNetwork, Message: "network error reaching provider", Err: err}
	default:
		return &ProviderError{Kind: FailureProvider, Message: "provider call failed", Err: err}
	}
}

func classifyStatus(code int, err error) *ProviderError {
	switch code {
	case 401, 403:
		return &ProviderError{Kind: FailureProvider, Message: "provider rejected the API key", Err: err}
	case 429:
		return &ProviderError{Kind: FailureProvider, Message: "provider rate limit exceeded", Err: err}
	case 502, 503, 504:
		return &ProviderError{Kind: FailureNetwork, Message: "provider unavailable", Err: err}
	default:
		return &ProviderError{Kind: FailureProvider, Message: fmt.Sprintf("provider error (status %d)", code), Err: err}
	}
}
