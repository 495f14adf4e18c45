package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/finreports/internal/accounting"
	"github.com/odyssey-erp/finreports/internal/accounting/reports"
	"github.com/odyssey-erp/finreports/internal/reporting"
	_ "github.com/odyssey-erp/finreports/testing"
)

func memorySource() *reporting.MemorySource {
	day := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	return reporting.NewMemorySource(
		[]accounting.Account{
			{ID: "acc-1", Name: "Main Bank", Type: accounting.AccountTypeBank, IsDefault: true},
			{ID: "acc-2", Name: "Petty Cash", Type: accounting.AccountTypeCash},
		},
		[]accounting.Transaction{
			{ID: "t1", Type: accounting.TransactionTypeIncome, Category: "salary", Amount: decimal.NewFromInt(900), Date: day, AccountID: "acc-1"},
			{ID: "t2", Type: accounting.TransactionTypeExpense, Category: "travel", Amount: decimal.NewFromInt(40), Date: day, AccountID: "acc-2"},
		},
	)
}

func newService(rules accounting.Rules) *reporting.Service {
	return reporting.NewService(reporting.ServiceParams{
		Source:  memorySource(),
		Options: reports.DefaultOptions(),
		Rules:   rules,
	})
}

func task(t *testing.T, typ string, payload any) *asynq.Task {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(typ, raw)
}

func TestReportJobWritesArtifact(t *testing.T) {
	dir := t.TempDir()
	job := NewReportJob(newService(nil), dir, nil, nil)
	job.clock = func() time.Time { return time.Date(2026, 10, 1, 6, 0, 0, 0, time.UTC) }

	err := job.Handle(context.Background(), task(t, TaskReportGenerate, ReportGeneratePayload{AccountID: "acc-1", Format: "csv"}))
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "Main_Bank_2026-09-30.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "# Sheet: Chart of Accounts"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReportJobSkipsRetryForBadPayloads(t *testing.T) {
	job := NewReportJob(newService(nil), t.TempDir(), nil, nil)
	cases := []*asynq.Task{
		asynq.NewTask(TaskReportGenerate, []byte("{")),
		task(t, TaskReportGenerate, ReportGeneratePayload{Month: "sept"}),
		task(t, TaskReportGenerate, ReportGeneratePayload{Month: "2026-09", Format: "docx"}),
		task(t, TaskReportGenerate, ReportGeneratePayload{Month: "2026-09", AccountID: "missing"}),
	}
	for _, tc := range cases {
		err := job.Handle(context.Background(), tc)
		assert.True(t, errors.Is(err, asynq.SkipRetry), "payload %s: %v", tc.Payload(), err)
	}
}

func TestLedgerIntegrityJobCountsIssues(t *testing.T) {
	broken := accounting.RulesFunc(func(tx accounting.Transaction, cash accounting.LedgerAccount) ([2]accounting.Leg, error) {
		return [2]accounting.Leg{{Account: cash, Side: accounting.Debit}, {Account: cash, Side: accounting.Debit}}, nil
	})
	checker := &recordingChecker{inner: newService(broken)}
	job := NewLedgerIntegrityJob(checker, memorySource(), nil, nil)

	err := job.Handle(context.Background(), task(t, TaskLedgerIntegrity, LedgerIntegrityPayload{Month: "2026-09"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"acc-1", "acc-2"}, checker.accounts)
	assert.Positive(t, checker.issues)

	err = job.Handle(context.Background(), task(t, TaskLedgerIntegrity, LedgerIntegrityPayload{Month: "bad"}))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

type recordingChecker struct {
	inner    Checker
	accounts []string
	issues   int
}

func (c *recordingChecker) Check(ctx context.Context, accountID string, period reports.Period, data reporting.Dataset) (reports.Result, error) {
	c.accounts = append(c.accounts, accountID)
	result, err := c.inner.Check(ctx, accountID, period, data)
	c.issues += len(result.Issues)
	return result, err
}

func TestMonthlyReports(t *testing.T) {
	regs, err := MonthlyReports("0 6 1 * *", "xlsx", []string{"acc-1", " acc-2 "})
	require.NoError(t, err)
	require.Len(t, regs, 2)
	var payload ReportGeneratePayload
	require.NoError(t, json.Unmarshal(regs[1].Task.Payload(), &payload))
	assert.Equal(t, "acc-2", payload.AccountID)
	assert.Empty(t, payload.Month)
	assert.Equal(t, TaskReportGenerate, regs[0].Task.Type())

	regs, err = MonthlyReports("", "xlsx", nil)
	require.NoError(t, err)
	assert.Empty(t, regs)
}

func TestNewReportGenerateTaskAssignsRequestID(t *testing.T) {
	tk, err := NewReportGenerateTask(ReportGeneratePayload{AccountID: "acc-1"})
	require.NoError(t, err)
	var payload ReportGeneratePayload
	require.NoError(t, json.Unmarshal(tk.Payload(), &payload))
	assert.Len(t, payload.RequestID, 36)
}

type fakeEnqueuer struct {
	payloads []ReportGeneratePayload
	err      error
}

func (f *fakeEnqueuer) EnqueueReport(_ context.Context, payload ReportGeneratePayload) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.payloads = append(f.payloads, payload)
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueDefault}, nil
}

func TestHandlerEnqueueReport(t *testing.T) {
	enq := &fakeEnqueuer{}
	r := chi.NewRouter()
	NewHandler(nil, enq, nil).MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(`{"accountId":"acc-1","month":"2026-09","format":"pdf"}`)))
	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp enqueueResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "task-1", resp.TaskID)
	assert.NotEmpty(t, resp.RequestID)
	require.Len(t, enq.payloads, 1)
	assert.Equal(t, "pdf", enq.payloads[0].Format)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(`{"unknown":true}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	enq.err = errors.New("redis down")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(`{"accountId":"acc-1"}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandlerHealthWithoutInspector(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(nil, nil, nil).MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
