package jobs

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportGenerate renders one report to the output directory.
	TaskReportGenerate = "reports:generate"
	// TaskLedgerIntegrity rebuilds the trial balance of every account and records failed checks.
	TaskLedgerIntegrity = "ledger:integrity"
)

// ReportGeneratePayload describes a report file to produce. A blank month means the
// month before the job runs.
type ReportGeneratePayload struct {
	AccountID string `json:"accountId"`
	Month     string `json:"month"`
	Format    string `json:"format"`
	Mode      string `json:"mode"`
	RequestID string `json:"requestId"`
}

// LedgerIntegrityPayload selects the month checked. Blank means the current month.
type LedgerIntegrityPayload struct {
	Month string `json:"month"`
}

// NewReportGenerateTask constructs an Asynq task, assigning a request id when missing.
func NewReportGenerateTask(payload ReportGeneratePayload) (*asynq.Task, error) {
	if strings.TrimSpace(payload.RequestID) == "" {
		payload.RequestID = uuid.NewString()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("jobs: encode report payload: %w", err)
	}
	return asynq.NewTask(TaskReportGenerate, data, asynq.MaxRetry(3)), nil
}

// NewLedgerIntegrityTask constructs an Asynq task.
func NewLedgerIntegrityTask(month string) (*asynq.Task, error) {
	data, err := json.Marshal(LedgerIntegrityPayload{Month: month})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data, asynq.MaxRetry(3)), nil
}

// MonthlyReports schedules one generation task per account on spec. An empty account
// list schedules the default account.
func MonthlyReports(spec, format string, accounts []string) ([]CronRegistration, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}
	if len(accounts) == 0 {
		accounts = []string{""}
	}
	out := make([]CronRegistration, 0, len(accounts))
	for _, account := range accounts {
		task, err := NewReportGenerateTask(ReportGeneratePayload{AccountID: strings.TrimSpace(account), Format: format, RequestID: "cron"})
		if err != nil {
			return nil, err
		}
		out = append(out, CronRegistration{Spec: spec, Task: task, Options: []asynq.Option{asynq.Queue(QueueDefault)}})
	}
	return out, nil
}
