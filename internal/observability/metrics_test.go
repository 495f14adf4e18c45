package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestMetricsExposeReportCounters(t *testing.T) {
	m := NewMetrics()
	m.ReportGenerated("xlsx")
	m.TransactionsSkipped(2)
	m.IntegrityIssue("Balance Sheet")

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	text := string(body)
	for _, want := range []string{
		`finreports_reports_generated_total{format="xlsx"} 1`,
		`finreports_skipped_transactions_total 2`,
		`finreports_integrity_issues_total{sheet="Balance Sheet"} 1`,
		`finreports_http_requests_total{code="204",route="/ok"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in metrics output", want)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ReportGenerated("csv")
	m.TransactionsSkipped(1)
	m.IntegrityIssue("Cash Flow")
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
