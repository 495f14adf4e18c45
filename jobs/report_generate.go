package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/finreports/internal/accounting"
	"github.com/odyssey-erp/finreports/internal/accounting/reports"
	jobmetrics "github.com/odyssey-erp/finreports/internal/jobs"
	"github.com/odyssey-erp/finreports/internal/reporting"
	"github.com/odyssey-erp/finreports/internal/workbook"
)

// Generator renders report artifacts.
type Generator interface {
	Generate(ctx context.Context, req reporting.Request) (reporting.Artifact, error)
}

// ReportJob writes rendered reports into OutputDir.
type ReportJob struct {
	Generator Generator
	OutputDir string
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewReportJob wires dependencies for the generate handler.
func NewReportJob(gen Generator, outputDir string, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportJob {
	return &ReportJob{
		Generator: gen,
		OutputDir: outputDir,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes report generation tasks.
func (j *ReportJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Generator == nil {
		return errors.New("report job: handler not configured")
	}
	var payload ReportGeneratePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := j.Metrics.Track(TaskReportGenerate)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("request_id", payload.RequestID), slog.String("account_id", payload.AccountID))
	req, err := j.request(payload)
	if err != nil {
		logger.Warn("reject report task", slog.Any("error", err))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	art, err := j.Generator.Generate(ctx, req)
	if err != nil {
		if permanent(err) {
			logger.Warn("report task failed permanently", slog.Any("error", err))
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		logger.Error("generate report", slog.Any("error", err))
		return err
	}
	path, err := j.write(art)
	if err != nil {
		logger.Error("write report", slog.Any("error", err))
		return err
	}
	j.Metrics.ArtifactWritten(string(req.Format))
	logger.Info("report written",
		slog.String("path", path),
		slog.Int("skipped", len(art.Skipped)),
		slog.Int("issues", len(art.Issues)),
	)
	return nil
}

func (j *ReportJob) request(payload ReportGeneratePayload) (reporting.Request, error) {
	var period reports.Period
	if payload.Month == "" {
		now := j.now()
		period = reports.MonthOf(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0))
	} else {
		p, err := reports.ParseMonth(payload.Month)
		if err != nil {
			return reporting.Request{}, err
		}
		period = p
	}
	format, err := reporting.ParseFormat(payload.Format)
	if err != nil {
		return reporting.Request{}, err
	}
	mode, err := workbook.ParseMode(payload.Mode)
	if err != nil {
		return reporting.Request{}, err
	}
	return reporting.Request{AccountID: payload.AccountID, Period: period, Format: format, Mode: mode}, nil
}

func (j *ReportJob) write(art reporting.Artifact) (string, error) {
	if err := os.MkdirAll(j.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("report job: create output dir: %w", err)
	}
	path := filepath.Join(j.OutputDir, art.Filename)
	tmp, err := os.CreateTemp(j.OutputDir, ".report-*")
	if err != nil {
		return "", fmt.Errorf("report job: create temp file: %w", err)
	}
	if _, err := tmp.Write(art.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("report job: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("report job: rename: %w", err)
	}
	return path, nil
}

func (j *ReportJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *ReportJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

func permanent(err error) bool {
	return errors.Is(err, accounting.ErrInvalidInput) ||
		errors.Is(err, accounting.ErrAccountNotFound) ||
		errors.Is(err, reports.ErrInvalidOptions) ||
		errors.Is(err, reporting.ErrUnsupportedFormat)
}
