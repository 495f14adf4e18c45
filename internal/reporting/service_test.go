package reporting

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/finreports/internal/accounting"
	"github.com/odyssey-erp/finreports/internal/accounting/reports"
	"github.com/odyssey-erp/finreports/internal/workbook"
	_ "github.com/odyssey-erp/finreports/testing"
)

type countingPDF struct {
	calls atomic.Int32
}

func (c *countingPDF) RenderPDF(_ context.Context, title string, bundle workbook.Bundle) ([]byte, error) {
	c.calls.Add(1)
	return []byte("%PDF " + title + " " + bundle.Sheets[0].Name), nil
}

type recorder struct {
	formats []string
	skipped int
	issues  []string
}

func (r *recorder) ReportGenerated(format string) { r.formats = append(r.formats, format) }
func (r *recorder) TransactionsSkipped(n int)     { r.skipped += n }
func (r *recorder) IntegrityIssue(sheet string)   { r.issues = append(r.issues, sheet) }

var october = reports.MonthOf(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))

func dataset() Dataset {
	day := time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC)
	return Dataset{
		Accounts: []accounting.Account{{ID: "acc-1", Name: "Main Bank", Type: accounting.AccountTypeBank, IsDefault: true}},
		Transactions: []accounting.Transaction{
			{ID: "t1", Type: accounting.TransactionTypeIncome, Category: "salary", Amount: decimal.NewFromInt(8000), Date: day, AccountID: "acc-1"},
			{ID: "t2", Type: accounting.TransactionTypeExpense, Category: "rent", Amount: decimal.NewFromInt(20000), Date: day, AccountID: "acc-1"},
			{ID: "t3", Type: accounting.TransactionType("TRANSFER"), Amount: decimal.NewFromInt(5), Date: day, AccountID: "acc-1"},
		},
	}
}

func newTestService(t *testing.T, pdf PDFRenderer, metrics Recorder) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	data := dataset()
	svc := NewService(ServiceParams{
		Source:  NewMemorySource(data.Accounts, data.Transactions),
		Cache:   NewCache(client, time.Minute),
		PDF:     pdf,
		Options: reports.DefaultOptions(),
		Metrics: metrics,
	})
	return svc, mr
}

func TestGenerateCachesRenderedArtifacts(t *testing.T) {
	pdf := &countingPDF{}
	metrics := &recorder{}
	svc, _ := newTestService(t, pdf, metrics)
	ctx := context.Background()
	req := Request{AccountID: "acc-1", Period: october, Format: FormatPDF}

	art, err := svc.Generate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Main_Bank_2026-10-31.pdf", art.Filename)
	assert.Equal(t, "%PDF Main Bank Chart of Accounts", string(art.Body))
	assert.Len(t, art.Skipped, 1)
	assert.Empty(t, art.Issues)

	_, err = svc.Generate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int32(1), pdf.calls.Load())
	assert.Equal(t, []string{"pdf"}, metrics.formats)
	assert.Equal(t, 1, metrics.skipped)

	require.NoError(t, svc.cache.Bump(ctx))
	_, err = svc.Generate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int32(2), pdf.calls.Load())
}

func TestEvaluateFormats(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	csv, err := svc.Evaluate(ctx, Request{Period: october, Format: FormatCSV}, dataset())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(csv.Body), "# Sheet: Chart of Accounts\r\n"))
	assert.True(t, strings.HasPrefix(csv.ContentType, "text/csv"))

	js, err := svc.Evaluate(ctx, Request{Period: october, Format: FormatJSON, Mode: workbook.ModeValues}, dataset())
	require.NoError(t, err)
	assert.Contains(t, string(js.Body), `"skipped":1`)
	assert.NotContains(t, string(js.Body), `"formula"`)

	x, err := svc.Evaluate(ctx, Request{Period: october}, dataset())
	require.NoError(t, err)
	assert.Equal(t, "Main_Bank_2026-10-31.xlsx", x.Filename)
	assert.True(t, strings.HasPrefix(string(x.Body), "PK"))

	_, err = svc.Evaluate(ctx, Request{Period: october, Format: FormatPDF}, dataset())
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = svc.Evaluate(ctx, Request{Period: october, Format: "docx"}, dataset())
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestEvaluateUnknownAccount(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	_, err := svc.Evaluate(context.Background(), Request{AccountID: "nope", Period: october, Format: FormatCSV}, dataset())
	assert.True(t, errors.Is(err, accounting.ErrAccountNotFound))
}

func TestCheckRecordsIssues(t *testing.T) {
	metrics := &recorder{}
	svc := NewService(ServiceParams{
		Options: reports.DefaultOptions(),
		Metrics: metrics,
		Rules: accounting.RulesFunc(func(tx accounting.Transaction, cash accounting.LedgerAccount) ([2]accounting.Leg, error) {
			return [2]accounting.Leg{{Account: cash, Side: accounting.Debit}, {Account: cash, Side: accounting.Debit}}, nil
		}),
	})
	result, err := svc.Check(context.Background(), "", october, dataset())
	require.NoError(t, err)
	assert.NotEmpty(t, result.Issues)
	assert.Contains(t, metrics.issues, reports.SheetTrialBalance)
}

func TestCacheWithoutClient(t *testing.T) {
	var cache *Cache
	key, err := cache.BuildKey(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a:b", key)

	art, hit, err := cache.Fetch(context.Background(), key, func(context.Context) (Artifact, error) {
		return Artifact{Filename: "x.csv"}, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "x.csv", art.Filename)
	assert.NoError(t, cache.Bump(context.Background()))
}

func TestCacheVersionedKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	cache := NewCache(client, time.Minute)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "finreports", "report", "abc")
	require.NoError(t, err)
	assert.Equal(t, "finreports:report:abc:1", key)

	loads := 0
	loader := func(context.Context) (Artifact, error) {
		loads++
		return Artifact{Body: []byte("body")}, nil
	}
	_, hit, err := cache.Fetch(ctx, key, loader)
	require.NoError(t, err)
	assert.False(t, hit)
	art, hit, err := cache.Fetch(ctx, key, loader)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "body", string(art.Body))
	assert.Equal(t, 1, loads)

	require.NoError(t, cache.Bump(ctx))
	key, err = cache.BuildKey(ctx, "finreports", "report", "abc")
	require.NoError(t, err)
	assert.Equal(t, "finreports:report:abc:2", key)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Bank_cash_2026-10-31.csv", Filename("Bank/cash", october, FormatCSV))
	assert.Equal(t, "report_2026-10-31.json", Filename("", october, FormatJSON))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	f, err = ParseFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	_, err = ParseFormat("html")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}
