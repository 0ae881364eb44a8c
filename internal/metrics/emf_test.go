package metrics

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_AutoDimension(t *testing.T) {
	initOnce.Do(func() {})
	functionName = "ReviewLambda"
	defer func() { functionName = "" }()

	r := NewTo(&bytes.Buffer{})
	if r.namespace != Namespace {
		t.Errorf("expected namespace %s, got %s", Namespace, r.namespace)
	}
	if r.dimensions["FunctionName"] != "ReviewLambda" {
		t.Errorf("expected FunctionName dimension ReviewLambda, got %s", r.dimensions["FunctionName"])
	}
}

func TestRecorder_FlushOutput(t *testing.T) {
	initOnce.Do(func() {})
	functionName = ""

	var buf bytes.Buffer
	NewTo(&buf).
		Dimension("Result", "success").
		Duration("DraftLatencyMs", 1500*time.Millisecond).
		Count("DraftCount").
		Property("provider", "gemini").
		Flush()

	output := buf.String()
	if !strings.HasSuffix(output, "\n") || strings.Count(output, "\n") != 1 {
		t.Fatalf("EMF output must be a single line, got %q", output)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(output), &doc); err != nil {
		t.Fatalf("failed to parse EMF output as JSON: %v\nOutput: %s", err, output)
	}

	awsMap, ok := doc["_aws"].(map[string]any)
	if !ok {
		t.Fatal("missing _aws directive in EMF output")
	}
	if _, ok := awsMap["Timestamp"]; !ok {
		t.Error("missing Timestamp in _aws directive")
	}
	cwArr, ok := awsMap["CloudWatchMetrics"].([]any)
	if !ok || len(cwArr) != 1 {
		t.Fatal("CloudWatchMetrics should hold exactly one entry")
	}
	cw := cwArr[0].(map[string]any)
	if cw["Namespace"] != Namespace {
		t.Errorf("expected namespace %s, got %v", Namespace, cw["Namespace"])
	}

	if doc["Result"] != "success" {
		t.Errorf("expected Result=success, got %v", doc["Result"])
	}
	if doc["DraftLatencyMs"] != float64(1500) {
		t.Errorf("expected DraftLatencyMs=1500, got %v", doc["DraftLatencyMs"])
	}
	if doc["DraftCount"] != float64(1) {
		t.Errorf("expected DraftCount=1, got %v", doc["DraftCount"])
	}
	if doc["provider"] != "gemini" {
		t.Errorf("expected provider property, got %v", doc["provider"])
	}
}

func TestRecorder_FlushNoMetrics(t *testing.T) {
	var buf bytes.Buffer
	NewTo(&buf).Dimension("Result", "success").Flush()
	if buf.Len() != 0 {
		t.Errorf("expected no output without metrics, got %q", buf.String())
	}
}

func TestRecordDraft_Prometheus(t *testing.T) {
	initOnce.Do(func() {})
	functionName = ""

	before := testutil.ToFloat64(DraftRequestsTotal.WithLabelValues("network"))
	RecordDraft("xai", "network", 40*time.Millisecond)
	after := testutil.ToFloat64(DraftRequestsTotal.WithLabelValues("network"))

	if after-before != 1 {
		t.Errorf("expected network counter to grow by 1, grew by %v", after-before)
	}
}

func TestHandler_Exposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustRegister(reg)
	RecordRequest("/api/health", http.MethodGet, http.StatusOK, time.Millisecond)

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "review_http_request_duration_seconds") {
		t.Error("expected HTTP histogram in exposition")
	}
}
