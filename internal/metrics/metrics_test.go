package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveTool("list_active_events", "ok", time.Second)
	m.ObserveChild("Succeeded", "")
	m.IncrementRetries()
	m.IncrementTruncated()
	m.IncrementClients()
}

func TestObserveTool(t *testing.T) {
	m := New()
	m.ObserveTool("search_resources", "ok", 20*time.Millisecond)
	m.ObserveTool("search_resources", "ok", 30*time.Millisecond)
	m.ObserveTool("search_resources", "ValidationError", time.Millisecond)

	if got := testutil.ToFloat64(m.ToolCalls.WithLabelValues("search_resources", "ok")); got != 2 {
		t.Fatalf("expected 2 ok calls, got %v", got)
	}
	if got := testutil.ToFloat64(m.ToolCalls.WithLabelValues("search_resources", "ValidationError")); got != 1 {
		t.Fatalf("expected 1 failed call, got %v", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveChild("FailedTerminal", "AuthorizationError")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	if !strings.Contains(string(body), `gcpwatch_audit_children_total{kind="AuthorizationError",state="FailedTerminal"} 1`) {
		t.Fatalf("expected child counter in output:\n%s", body)
	}
}
