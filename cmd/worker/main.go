package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/finreports/internal/app"
	jobmetrics "github.com/odyssey-erp/finreports/internal/jobs"
	"github.com/odyssey-erp/finreports/internal/observability"
	"github.com/odyssey-erp/finreports/internal/platform/cache"
	"github.com/odyssey-erp/finreports/internal/platform/db"
	"github.com/odyssey-erp/finreports/internal/reporting"
	"github.com/odyssey-erp/finreports/jobs"
	"github.com/odyssey-erp/finreports/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	opts, err := cfg.ReportOptions()
	if err != nil {
		logger.Error("report options", slog.Any("error", err))
		os.Exit(1)
	}

	var source reporting.Source
	if cfg.SourceFile != "" {
		src, err := reporting.LoadFile(cfg.SourceFile)
		if err != nil {
			logger.Error("load source file", slog.Any("error", err))
			os.Exit(1)
		}
		source = src
	} else {
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect database", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		source = reporting.NewPostgresSource(pool)
	}

	var reportCache *reporting.Cache
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		reportCache = reporting.NewCache(redisClient, cfg.CacheTTL)
	}

	metrics := observability.NewMetrics()
	service := reporting.NewService(reporting.ServiceParams{
		Source:  source,
		Cache:   reportCache,
		PDF:     report.NewClient(cfg.GotenbergURL),
		Options: opts,
		Metrics: metrics,
		Logger:  logger,
	})
	jobMetrics := jobmetrics.NewMetrics(metrics.Registerer())

	reportJob := jobs.NewReportJob(service, cfg.ReportOutputDir, logger, jobMetrics)
	integrityJob := jobs.NewLedgerIntegrityJob(service, source, logger, jobMetrics)

	cron, err := jobs.MonthlyReports(cfg.ReportCron, cfg.ReportFormat, cfg.ReportAccounts)
	if err != nil {
		logger.Error("build report schedule", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.IntegrityCron != "" {
		integrityTask, err := jobs.NewLedgerIntegrityTask("")
		if err != nil {
			logger.Error("build integrity task", slog.Any("error", err))
			os.Exit(1)
		}
		cron = append(cron, jobs.CronRegistration{Spec: cfg.IntegrityCron, Task: integrityTask, Options: []asynq.Option{asynq.MaxRetry(3)}})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReportGenerate, Handler: reportJob.Handle},
			{Type: jobs.TaskLedgerIntegrity, Handler: integrityJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.Int("schedules", len(cron)), slog.Duration("cache_ttl", cfg.CacheTTL), slog.Time("started_at", time.Now().UTC()))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
