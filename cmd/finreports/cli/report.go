package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/odyssey-erp/finreports/internal/accounting/reports"
	"github.com/odyssey-erp/finreports/internal/reporting"
	"github.com/odyssey-erp/finreports/internal/workbook"
)

// ReportCLI runs the report engine over JSON dataset files.
type ReportCLI struct {
	service *reporting.Service
}

// NewReportCLI wraps a service configured with engine options.
func NewReportCLI(service *reporting.Service) *ReportCLI {
	return &ReportCLI{service: service}
}

// GenerateOptions defines available flags for the generate command.
type GenerateOptions struct {
	In        string
	Out       string
	Month     string
	Format    string
	Mode      string
	AccountID string
	Stdout    io.Writer
	Stderr    io.Writer
}

// CheckOptions defines available flags for the check command.
type CheckOptions struct {
	In         string
	Month      string
	AccountID  string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// CheckSummary describes the JSON response for check.
type CheckSummary struct {
	OK          bool     `json:"ok"`
	Account     string   `json:"account"`
	Period      string   `json:"period"`
	TotalDebit  string   `json:"total_debit"`
	TotalCredit string   `json:"total_credit"`
	Skipped     int      `json:"skipped"`
	Issues      []string `json:"issues"`
}

// GenerateCommand renders one report file and returns the process exit code.
func (c *ReportCLI) GenerateCommand(ctx context.Context, opts GenerateOptions) int {
	opts.Stdout, opts.Stderr = writers(opts.Stdout, opts.Stderr)
	if strings.TrimSpace(opts.In) == "" {
		_, _ = fmt.Fprintln(opts.Stderr, "generate: -in is required")
		return 2
	}
	period, err := reports.ParseMonth(opts.Month)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "generate: invalid month %q (expected YYYY-MM)\n", opts.Month)
		return 2
	}
	rawFormat := opts.Format
	if rawFormat == "" && opts.Out != "" {
		rawFormat = strings.TrimPrefix(filepath.Ext(opts.Out), ".")
	}
	format, err := reporting.ParseFormat(rawFormat)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "generate: %v\n", err)
		return 2
	}
	mode, err := workbook.ParseMode(opts.Mode)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "generate: %v\n", err)
		return 2
	}
	data, err := loadDataset(ctx, opts.In)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "generate: %v\n", err)
		return 2
	}
	art, err := c.service.Evaluate(ctx, reporting.Request{AccountID: opts.AccountID, Period: period, Format: format, Mode: mode}, data)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "generate: %v\n", err)
		return 2
	}
	out := opts.Out
	if out == "" {
		out = art.Filename
	}
	if err := os.WriteFile(out, art.Body, 0o644); err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "generate: write %s: %v\n", out, err)
		return 2
	}
	_, _ = fmt.Fprintf(opts.Stdout, "wrote %s (%d bytes)\n", out, len(art.Body))
	if len(art.Skipped) > 0 {
		_, _ = fmt.Fprintf(opts.Stdout, "skipped %d transaction(s) with unrecognized type\n", len(art.Skipped))
	}
	for _, issue := range art.Issues {
		_, _ = fmt.Fprintf(opts.Stderr, "integrity: %s\n", issue)
	}
	return 0
}

// CheckCommand builds the ledger of one account, prints its totals and returns 1 when a
// balancing check fails.
func (c *ReportCLI) CheckCommand(ctx context.Context, opts CheckOptions) int {
	opts.Stdout, opts.Stderr = writers(opts.Stdout, opts.Stderr)
	if strings.TrimSpace(opts.In) == "" {
		_, _ = fmt.Fprintln(opts.Stderr, "check: -in is required")
		return 2
	}
	period, err := reports.ParseMonth(opts.Month)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "check: invalid month %q (expected YYYY-MM)\n", opts.Month)
		return 2
	}
	data, err := loadDataset(ctx, opts.In)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "check: %v\n", err)
		return 2
	}
	result, err := c.service.Check(ctx, opts.AccountID, period, data)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "check: %v\n", err)
		return 2
	}
	summary := CheckSummary{
		OK:          len(result.Issues) == 0,
		Account:     reporting.ReportTitle(result),
		Period:      period.Start.Format("2006-01"),
		TotalDebit:  result.Trial.TotalDebit.StringFixed(2),
		TotalCredit: result.Trial.TotalCredit.StringFixed(2),
		Skipped:     len(result.Skipped),
		Issues:      make([]string, 0, len(result.Issues)),
	}
	for _, issue := range result.Issues {
		summary.Issues = append(summary.Issues, issue.String())
	}
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "check: encode json: %v\n", err)
			return 2
		}
	} else {
		renderCheckHuman(opts.Stdout, summary)
	}
	if !summary.OK {
		return 1
	}
	return 0
}

func renderCheckHuman(w io.Writer, s CheckSummary) {
	_, _ = fmt.Fprintf(w, "Account: %s\nPeriod:  %s\n", s.Account, s.Period)
	_, _ = fmt.Fprintf(w, "Trial balance: debit %s, credit %s\n", s.TotalDebit, s.TotalCredit)
	if s.Skipped > 0 {
		_, _ = fmt.Fprintf(w, "Skipped transactions: %d\n", s.Skipped)
	}
	if s.OK {
		_, _ = fmt.Fprintln(w, "Status: Balanced")
		return
	}
	_, _ = fmt.Fprintln(w, "Status: Error")
	for _, issue := range s.Issues {
		_, _ = fmt.Fprintf(w, "  - %s\n", issue)
	}
}

func loadDataset(ctx context.Context, path string) (reporting.Dataset, error) {
	src, err := reporting.LoadFile(path)
	if err != nil {
		return reporting.Dataset{}, err
	}
	return reporting.Load(ctx, src)
}

func writers(stdout, stderr io.Writer) (io.Writer, io.Writer) {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return stdout, stderr
}
