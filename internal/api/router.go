// Package api serves the review-drafting HTTP endpoint:
//
//	POST /api/generate-review  draft a review from customer hints
//	GET  /api/health           liveness probe
//	GET  /metrics              Prometheus exposition (when enabled)
//
// Draft responses are {success:true,text} with 200 or {success:false,message}
// with 500. There is no authentication, rate limiting or idempotency key.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/fpang/review-drafter/internal/metrics"
	"github.com/fpang/review-drafter/internal/review"
)

// maxBodySize caps the draft request body. Hints are short free text.
const maxBodySize = 64 << 10

// Drafter generates a review draft. *review.Service implements it.
type Drafter interface {
	GenerateDraft(ctx context.Context, req review.DraftRequest) review.DraftResponse
}

// Options configures the router.
type Options struct {
	Drafter        Drafter
	AllowedOrigins []string
	// Gatherer, when set, mounts GET /metrics.
	Gatherer prometheus.Gatherer
}

// NewRouter builds the HTTP handler with request IDs, logging, metrics,
// CORS, panic recovery and gzip compression.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(withRequestID)
	r.Use(withObservability)
	r.Use(middleware.Recoverer)
	r.Use(withCORS(opts.AllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpError(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpError(w, r, http.StatusMethodNotAllowed, "method not allowed", r.Method+" "+r.URL.Path)
	})

	h := &handler{drafter: opts.Drafter}
	r.Get("/api/health", h.health)
	r.Post("/api/generate-review", h.generateReview)
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(opts.Gatherer))
	}

	return gzhttp.GzipHandler(r)
}

type handler struct {
	drafter Drafter
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /api/generate-review
// Body: {"business","service","timeframe","price","hints","tone","length","language"}
func (h *handler) generateReview(w http.ResponseWriter, r *http.Request) {
	var req review.DraftRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Str("kind", review.FailureRequest.String()).
			Msg("Error generating review: undecodable request body")
		respondJSON(w, http.StatusInternalServerError, review.Failed(review.FailedMessage))
		return
	}

	resp := h.drafter.GenerateDraft(r.Context(), req)
	if !resp.Success {
		respondJSON(w, http.StatusInternalServerError, resp)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
