package reportinghttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/finreports/internal/accounting"
	"github.com/odyssey-erp/finreports/internal/accounting/reports"
	"github.com/odyssey-erp/finreports/internal/reporting"
	_ "github.com/odyssey-erp/finreports/testing"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	day := time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC)
	src := reporting.NewMemorySource(
		[]accounting.Account{{ID: "acc-1", Name: "Main Bank", Type: accounting.AccountTypeBank, IsDefault: true}},
		[]accounting.Transaction{
			{ID: "t1", Type: accounting.TransactionTypeIncome, Category: "salary", Amount: decimal.NewFromInt(8000), Date: day, AccountID: "acc-1"},
			{ID: "t2", Type: accounting.TransactionType("TRANSFER"), Amount: decimal.NewFromInt(1), Date: day, AccountID: "acc-1"},
		},
	)
	svc := reporting.NewService(reporting.ServiceParams{Source: src, Options: reports.DefaultOptions()})
	h := NewHandler(nil, svc)
	h.now = func() time.Time { return time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func TestGenerateForAccount(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/accounts/acc-1/reports?month=2026-10&format=csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="Main_Bank_2026-10-31.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "1", rec.Header().Get("X-Skipped-Transactions"))
	assert.Equal(t, "0", rec.Header().Get("X-Integrity-Issues"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "# Sheet: Chart of Accounts"))
}

func TestGenerateDefaultsToCurrentMonth(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports?format=json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Main_Bank_2026-10-31.json")
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2026-10", body["period"])
}

func TestGenerateErrors(t *testing.T) {
	cases := []struct {
		name   string
		target string
		status int
	}{
		{"bad month", "/reports?month=October", http.StatusBadRequest},
		{"bad format", "/reports?format=docx", http.StatusBadRequest},
		{"bad mode", "/reports?mode=live", http.StatusBadRequest},
		{"unknown account", "/accounts/nope/reports?format=csv", http.StatusNotFound},
	}
	router := newRouter(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.target, nil))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

const payload = `{
	"accountId": "b1",
	"month": "2026-10",
	"format": "json",
	"mode": "values",
	"accounts": [{"id":"b1","name":"Ops","type":"cash"}],
	"transactions": [
		{"id":"t1","type":"INCOME","category":"consulting","amount":"500","date":"2026-10-02","accountId":"b1"},
		{"id":"t2","type":"EXPENSE","category":"travel","amount":"120.5","date":"2026-10-04","accountId":"b1"}
	]
}`

func TestEvaluateSuppliedDataset(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(payload)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Ops_2026-10-31.json")
	assert.Equal(t, "0", rec.Header().Get("X-Skipped-Transactions"))
	assert.Contains(t, rec.Body.String(), `"account":"Ops"`)
}

func TestEvaluateRejectsInvalidRecords(t *testing.T) {
	body := strings.Replace(payload, `"amount":"500"`, `"amount":"five"`, 1)
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(`{"month":`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckSuppliedDataset(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reports/check", strings.NewReader(payload)))
	require.Equal(t, http.StatusOK, rec.Code)
	var body checkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Balanced)
	assert.Equal(t, "Ops", body.Account)
	assert.Equal(t, "2026-10", body.Period)
	assert.Empty(t, body.Issues)
}
