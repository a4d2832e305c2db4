package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()

	m.EntryWritten("morning", "created")
	m.EntryWritten("morning", "created")
	m.WateringResult("duplicate")
	m.CheerRecorded("goal")
	m.HealthScored(90)

	if got := testutil.ToFloat64(m.Entries.WithLabelValues("morning", "created")); got != 2 {
		t.Errorf("entries counter = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Waterings.WithLabelValues("duplicate")); got != 1 {
		t.Errorf("waterings counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Cheers.WithLabelValues("goal")); got != 1 {
		t.Errorf("cheers counter = %v, want 1", got)
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.RequestServed("/forest", "GET", "200", 0.01)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "grove_http_requests_total") {
		t.Error("expected grove_http_requests_total in output")
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.EntryWritten("morning", "created")
	m.WateringResult("ok")
	m.CheerRecorded("morning")
	m.HealthScored(10)
	m.RequestServed("/", "GET", "200", 0)
	if m.Registry() != nil {
		t.Error("nil metrics should have no registry")
	}
}
