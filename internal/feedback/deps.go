package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/pkg/browser"

	"github.com/fpang/review-drafter/internal/intake"
	"github.com/fpang/review-drafter/internal/review"
)

// Drafter produces a review draft. A non-nil error means the request never
// completed (transport failure); provider failures come back as a
// DraftResponse with Success false.
type Drafter interface {
	GenerateDraft(ctx context.Context, req review.DraftRequest) (review.DraftResponse, error)
}

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// Opener opens a URL in a new browsing context.
type Opener interface {
	Open(url string) error
}

// Submitter delivers a complaint to the intake endpoint.
type Submitter interface {
	Submit(ctx context.Context, s intake.Submission) error
}

// SystemClipboard is the OS clipboard.
type SystemClipboard struct{}

// WriteAll implements Clipboard.
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// BrowserOpener opens URLs in the default browser.
type BrowserOpener struct{}

// Open implements Opener.
func (BrowserOpener) Open(url string) error {
	return browser.OpenURL(url)
}

// ServiceDrafter calls a review.Service in process.
type ServiceDrafter struct {
	Service *review.Service
}

// GenerateDraft implements Drafter. It never returns a transport error.
func (d ServiceDrafter) GenerateDraft(ctx context.Context, req review.DraftRequest) (review.DraftResponse, error) {
	return d.Service.GenerateDraft(ctx, req), nil
}

// HTTPDrafter calls POST /api/generate-review on a running server.
type HTTPDrafter struct {
	http     *http.Client
	endpoint string
}

// NewHTTPDrafter creates a drafter for the server at baseURL. A non-positive
// timeout means 90s, enough for slow model responses.
func NewHTTPDrafter(baseURL string, timeout time.Duration) *HTTPDrafter {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &HTTPDrafter{
		http:     &http.Client{Timeout: timeout},
		endpoint: strings.TrimRight(baseURL, "/") + "/api/generate-review",
	}
}

// GenerateDraft implements Drafter. Both 200 and 500 carry a DraftResponse
// body; anything undecodable is a transport failure.
func (d *HTTPDrafter) GenerateDraft(ctx context.Context, req review.DraftRequest) (review.DraftResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return review.DraftResponse{}, fmt.Errorf("failed to encode draft request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return review.DraftResponse{}, fmt.Errorf("failed to build draft request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := d.http.Do(httpReq)
	if err != nil {
		return review.DraftResponse{}, fmt.Errorf("draft request failed: %w", err)
	}
	defer resp.Body.Close()

	var out review.DraftResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return review.DraftResponse{}, fmt.Errorf("failed to decode draft response (status %d): %w", resp.StatusCode, err)
	}
	return out, nil
}
