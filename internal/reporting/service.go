package reporting

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/finreports/internal/accounting"
	"github.com/odyssey-erp/finreports/internal/accounting/reports"
	"github.com/odyssey-erp/finreports/internal/workbook"
)

// PDFRenderer converts a bundle into a PDF document.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, title string, bundle workbook.Bundle) ([]byte, error)
}

// Recorder receives report metrics.
type Recorder interface {
	ReportGenerated(format string)
	TransactionsSkipped(n int)
	IntegrityIssue(sheet string)
}

// Request selects what to render.
type Request struct {
	AccountID string
	Period    reports.Period
	Format    Format
	Mode      workbook.Mode
}

// Artifact is a rendered report.
type Artifact struct {
	Body        []byte
	ContentType string
	Filename    string
	Skipped     []accounting.SkippedTransaction
	Issues      []string
}

// ServiceParams groups the dependencies of a Service.
type ServiceParams struct {
	Source  Source
	Cache   *Cache
	PDF     PDFRenderer
	Options reports.Options
	Rules   accounting.Rules
	Metrics Recorder
	Logger  *slog.Logger
}

// Service renders reports from a Source or from caller-supplied datasets.
type Service struct {
	source  Source
	cache   *Cache
	pdf     PDFRenderer
	opts    reports.Options
	rules   accounting.Rules
	metrics Recorder
	logger  *slog.Logger
	group   singleflight.Group
}

// NewService constructs the report service.
func NewService(params ServiceParams) *Service {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		source:  params.Source,
		cache:   params.Cache,
		pdf:     params.PDF,
		opts:    params.Options,
		rules:   params.Rules,
		metrics: params.Metrics,
		logger:  logger,
	}
}

// Options returns the engine options the service renders with.
func (s *Service) Options() reports.Options {
	return s.opts
}

// Generate reads the configured source and renders the requested report.
func (s *Service) Generate(ctx context.Context, req Request) (Artifact, error) {
	if s.source == nil {
		return Artifact{}, errors.New("reporting: no source configured")
	}
	data, err := Load(ctx, s.source)
	if err != nil {
		return Artifact{}, err
	}
	return s.Evaluate(ctx, req, data)
}

// Evaluate renders the requested report over data. Identical concurrent requests share
// one rendering and rendered bytes are cached by a digest of the inputs.
func (s *Service) Evaluate(ctx context.Context, req Request, data Dataset) (Artifact, error) {
	if req.Format == "" {
		req.Format = FormatXLSX
	}
	if _, err := ParseFormat(string(req.Format)); err != nil {
		return Artifact{}, err
	}
	digest, err := s.digest(req, data)
	if err != nil {
		return Artifact{}, err
	}
	key, err := s.cache.BuildKey(ctx, "finreports", "report", digest)
	if err != nil {
		return Artifact{}, fmt.Errorf("reporting: cache key: %w", err)
	}
	art, shared, err := s.collapse(ctx, key, func(ctx context.Context) (Artifact, error) {
		art, hit, err := s.cache.Fetch(ctx, key, func(ctx context.Context) (Artifact, error) {
			return s.render(ctx, req, data)
		})
		if hit {
			s.logger.DebugContext(ctx, "report cache hit", slog.String("key", key))
		}
		return art, err
	})
	if shared {
		s.logger.DebugContext(ctx, "report render shared", slog.String("key", key))
	}
	return art, err
}

// Check builds the trial balance and statement checks of one account without rendering.
func (s *Service) Check(ctx context.Context, accountID string, period reports.Period, data Dataset) (reports.Result, error) {
	if err := ctx.Err(); err != nil {
		return reports.Result{}, err
	}
	result, err := reports.Assemble(s.assembleInput(accountID, period, data))
	if err != nil && !isIntegrity(err) {
		return reports.Result{}, err
	}
	s.record("", result)
	return result, nil
}

func (s *Service) render(ctx context.Context, req Request, data Dataset) (Artifact, error) {
	start := time.Now()
	result, err := reports.Assemble(s.assembleInput(req.AccountID, req.Period, data))
	if err != nil && !isIntegrity(err) {
		return Artifact{}, err
	}
	title := ReportTitle(result)
	body, err := s.encode(ctx, req.Format, req.Mode, title, result, req.Period)
	if err != nil {
		return Artifact{}, fmt.Errorf("reporting: render %s: %w", req.Format, err)
	}
	s.record(string(req.Format), result)
	art := Artifact{
		Body:        body,
		ContentType: req.Format.ContentType(),
		Filename:    Filename(title, req.Period, req.Format),
		Skipped:     result.Skipped,
		Issues:      issueStrings(result.Issues),
	}
	s.logger.InfoContext(ctx, "report rendered",
		slog.String("account", title),
		slog.String("format", string(req.Format)),
		slog.Int("skipped", len(art.Skipped)),
		slog.Int("issues", len(art.Issues)),
		slog.Duration("duration", time.Since(start)),
	)
	return art, nil
}

func (s *Service) assembleInput(accountID string, period reports.Period, data Dataset) reports.AssembleInput {
	return reports.AssembleInput{
		Transactions: data.Transactions,
		Accounts:     data.Accounts,
		AccountID:    accountID,
		Period:       period,
		Options:      s.opts,
		Rules:        s.rules,
	}
}

func (s *Service) record(format string, result reports.Result) {
	if s.metrics == nil {
		return
	}
	if format != "" {
		s.metrics.ReportGenerated(format)
	}
	s.metrics.TransactionsSkipped(len(result.Skipped))
	for _, issue := range result.Issues {
		s.metrics.IntegrityIssue(issue.Sheet)
	}
}

func (s *Service) digest(req Request, data Dataset) (string, error) {
	payload := struct {
		AccountID    string
		Start, End   time.Time
		Format       Format
		Mode         string
		Options      reports.Options
		Accounts     []accounting.Account
		Transactions []accounting.Transaction
	}{
		AccountID:    req.AccountID,
		Start:        req.Period.Start,
		End:          req.Period.End,
		Format:       req.Format,
		Mode:         req.Mode.String(),
		Options:      s.opts,
		Accounts:     data.Accounts,
		Transactions: data.Transactions,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("reporting: digest: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

func isIntegrity(err error) bool {
	return errors.Is(err, accounting.ErrUnbalanced) || errors.Is(err, accounting.ErrStatementUnbalanced)
}

// ReportTitle names the report after the selected account, falling back to the cash account.
func ReportTitle(result reports.Result) string {
	if result.Account.Name != "" {
		return result.Account.Name
	}
	return result.Cash.String()
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename returns "<account>_<yyyy-MM-dd>.<ext>" using the period end date.
func Filename(title string, period reports.Period, format Format) string {
	name := unsafeFilename.ReplaceAllString(title, "_")
	if name == "" || name == "_" {
		name = "report"
	}
	return name + "_" + period.AsOf() + format.Extension()
}
