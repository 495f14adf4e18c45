package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/finreports/cmd/finreports/cli"
	"github.com/odyssey-erp/finreports/internal/app"
	"github.com/odyssey-erp/finreports/internal/observability"
	"github.com/odyssey-erp/finreports/internal/platform/cache"
	"github.com/odyssey-erp/finreports/internal/platform/db"
	"github.com/odyssey-erp/finreports/internal/reporting"
	reportinghttp "github.com/odyssey-erp/finreports/internal/reporting/http"
	"github.com/odyssey-erp/finreports/jobs"
	"github.com/odyssey-erp/finreports/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	command := "serve"
	args := os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		command, args = args[0], args[1:]
	}

	switch command {
	case "serve":
		os.Exit(runServe())
	case "generate":
		os.Exit(runGenerate(args))
	case "check":
		os.Exit(runCheck(args))
	case "jobs":
		os.Exit(runJobs(args))
	case "help", "-h", "--help":
		printUsage()
	default:
		_, _ = fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Println("finreports")
	fmt.Println("\nUsage:")
	fmt.Println("  finreports <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  serve      Run the HTTP server (default)")
	fmt.Println("  generate   Render a report from a JSON dataset file")
	fmt.Println("  check      Verify the ledger of a JSON dataset file")
	fmt.Println("  jobs       Trigger background jobs or inspect the queue")
	fmt.Println("\nRun 'finreports <command> -h' for the options of a command.")
}

func currentMonth() string {
	return time.Now().UTC().Format("2006-01")
}

func offlineService() (*reporting.Service, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.ReportOptions()
	if err != nil {
		return nil, err
	}
	var pdf reporting.PDFRenderer
	if cfg.GotenbergURL != "" {
		pdf = report.NewClient(cfg.GotenbergURL)
	}
	return reporting.NewService(reporting.ServiceParams{PDF: pdf, Options: opts, Logger: app.NewLogger(cfg)}), nil
}

func runGenerate(args []string) int {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	in := fs.String("in", "", "JSON dataset with accounts and transactions")
	out := fs.String("out", "", "output file (defaults to <account>_<date>.<format>)")
	month := fs.String("month", currentMonth(), "reporting month YYYY-MM")
	format := fs.String("format", "", "xlsx, csv, json or pdf (defaults to the -out extension, then xlsx)")
	mode := fs.String("mode", "formulas", "formulas or values")
	account := fs.String("account", "", "account id (defaults to the default account)")
	_ = fs.Parse(args)

	svc, err := offlineService()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "generate: %v\n", err)
		return 2
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return cli.NewReportCLI(svc).GenerateCommand(ctx, cli.GenerateOptions{
		In: *in, Out: *out, Month: *month, Format: *format, Mode: *mode, AccountID: *account,
	})
}

func runCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	in := fs.String("in", "", "JSON dataset with accounts and transactions")
	month := fs.String("month", currentMonth(), "reporting month YYYY-MM")
	account := fs.String("account", "", "account id (defaults to the default account)")
	asJSON := fs.Bool("json", false, "print the summary as JSON")
	_ = fs.Parse(args)

	svc, err := offlineService()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "check: %v\n", err)
		return 2
	}
	return cli.NewReportCLI(svc).CheckCommand(context.Background(), cli.CheckOptions{
		In: *in, Month: *month, AccountID: *account, JSONOutput: *asJSON,
	})
}

func runJobs(args []string) int {
	fs := flag.NewFlagSet("jobs", flag.ExitOnError)
	trigger := fs.String("trigger", "", "job to enqueue: report or integrity")
	account := fs.String("account", "", "account id for report jobs")
	month := fs.String("month", "", "reporting month YYYY-MM (blank lets the job choose)")
	format := fs.String("format", "xlsx", "report format")
	_ = fs.Parse(args)

	cfg, err := app.LoadConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
		return 2
	}
	jc, err := cli.NewJobsCLI(cfg.RedisAddr)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
		return 2
	}
	defer func() {
		_ = jc.Close()
	}()
	ctx := context.Background()
	if *trigger != "" {
		info, err := jc.Trigger(ctx, *trigger, *account, *month, *format)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
			return 1
		}
		fmt.Printf("enqueued %s as %s on %s\n", info.Type, info.ID, info.Queue)
		return 0
	}
	stats, err := jc.InspectQueue(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
		return 1
	}
	fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d\n", stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
	return 0
}

func runServe() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		return 1
	}
	logger := app.NewLogger(cfg)
	opts, err := cfg.ReportOptions()
	if err != nil {
		logger.Error("report options", slog.Any("error", err))
		return 1
	}

	source, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		logger.Error("open source", slog.Any("error", err))
		return 1
	}
	defer closeSource()

	var reportCache *reporting.Cache
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		reportCache = reporting.NewCache(redisClient, cfg.CacheTTL)
	}

	metrics := observability.NewMetrics()
	pdfClient := report.NewClient(cfg.GotenbergURL)
	service := reporting.NewService(reporting.ServiceParams{
		Source:  source,
		Cache:   reportCache,
		PDF:     pdfClient,
		Options: opts,
		Metrics: metrics,
		Logger:  logger,
	})

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		return 1
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		ReportingHandler: reportinghttp.NewHandler(logger, service),
		ReportHandler:    report.NewHandler(pdfClient, logger),
		JobHandler:       jobs.NewHandler(inspector, jobClient, logger),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
		return 1
	}
	return 0
}

// openSource prefers a JSON dataset file when configured, otherwise PostgreSQL.
func openSource(ctx context.Context, cfg *app.Config) (reporting.Source, func(), error) {
	if cfg.SourceFile != "" {
		src, err := reporting.LoadFile(cfg.SourceFile)
		if err != nil {
			return nil, nil, err
		}
		return src, func() {}, nil
	}
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return nil, nil, err
	}
	return reporting.NewPostgresSource(pool), pool.Close, nil
}
