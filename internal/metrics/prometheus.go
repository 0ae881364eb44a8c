package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DraftRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "review_draft_requests_total",
		Help: "Draft generations by result (success, provider, network, request).",
	}, []string{"result"})

	DraftDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "review_draft_duration_seconds",
		Help:    "Time spent waiting on the text-generation provider.",
		Buckets: []float64{.25, .5, 1, 2, 4, 8, 15, 30, 60},
	}, []string{"provider"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "review_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)

// MustRegister registers every collector with registerer.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(DraftRequestsTotal, DraftDuration, HTTPRequestDuration)
}

// Handler serves the Prometheus exposition for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// RecordDraft records one draft generation. On Lambda it also flushes an EMF
// document so CloudWatch sees the same numbers.
func RecordDraft(provider, result string, elapsed time.Duration) {
	DraftRequestsTotal.WithLabelValues(result).Inc()
	DraftDuration.WithLabelValues(provider).Observe(elapsed.Seconds())

	if OnLambda() {
		New().
			Dimension("Result", result).
			Duration("DraftLatencyMs", elapsed).
			Count("DraftCount").
			Property("provider", provider).
			Flush()
	}
}

// RecordRequest records one HTTP request.
func RecordRequest(route, method string, status int, elapsed time.Duration) {
	HTTPRequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())

	if OnLambda() {
		New().
			Dimension("Endpoint", route).
			Duration("RequestLatencyMs", elapsed).
			Count("RequestCount").
			Property("method", method).
			Property("statusCode", status).
			Flush()
	}
}
