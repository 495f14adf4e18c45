package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/finreports/internal/accounting/reports"
	jobmetrics "github.com/odyssey-erp/finreports/internal/jobs"
	"github.com/odyssey-erp/finreports/internal/reporting"
)

// Checker runs the ledger checks of one account over a dataset.
type Checker interface {
	Check(ctx context.Context, accountID string, period reports.Period, data reporting.Dataset) (reports.Result, error)
}

// LedgerIntegrityJob checks the trial balance and statements of every account.
type LedgerIntegrityJob struct {
	Checker Checker
	Source  reporting.Source
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewLedgerIntegrityJob wires dependencies for the integrity handler.
func NewLedgerIntegrityJob(checker Checker, source reporting.Source, logger *slog.Logger, metrics *jobmetrics.Metrics) *LedgerIntegrityJob {
	return &LedgerIntegrityJob{
		Checker: checker,
		Source:  source,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes ledger integrity tasks. Failed checks are logged and counted; the task
// itself only fails when the data cannot be read.
func (j *LedgerIntegrityJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Checker == nil || j.Source == nil {
		return errors.New("ledger integrity: handler not configured")
	}
	var payload LedgerIntegrityPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	period := reports.MonthOf(j.now())
	if payload.Month != "" {
		p, err := reports.ParseMonth(payload.Month)
		if err != nil {
			return asynq.SkipRetry
		}
		period = p
	}

	tracker := j.Metrics.Track(TaskLedgerIntegrity)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("period", period.Label()))
	data, err := reporting.Load(ctx, j.Source)
	if err != nil {
		logger.Error("load ledger data", slog.Any("error", err))
		return err
	}
	ids := make([]string, 0, len(data.Accounts))
	for _, acc := range data.Accounts {
		ids = append(ids, acc.ID)
	}
	if len(ids) == 0 {
		ids = append(ids, "")
	}

	failed := 0
	for _, id := range ids {
		result, err := j.Checker.Check(ctx, id, period, data)
		if err != nil {
			logger.Error("check account", slog.String("account_id", id), slog.Any("error", err))
			return err
		}
		for _, issue := range result.Issues {
			j.Metrics.AddUnbalanced(issue.Sheet, 1)
			logger.Warn("ledger integrity issue",
				slog.String("account_id", id),
				slog.String("sheet", issue.Sheet),
				slog.String("issue", issue.String()),
			)
		}
		if len(result.Issues) > 0 {
			failed++
		}
	}
	logger.Info("ledger integrity check executed", slog.Int("accounts", len(ids)), slog.Int("failed", failed))
	return nil
}

func (j *LedgerIntegrityJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *LedgerIntegrityJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
