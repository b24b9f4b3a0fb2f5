// Command telemetry-analyze loads device telemetry events and prints
// the analytics report as terminal text, JSON or a standalone HTML page.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"telemetry-analytics-service/internal/clock"
	"telemetry-analytics-service/internal/config"
	eventsFs "telemetry-analytics-service/internal/events/adapters/filesystem"
	eventsRepoPg "telemetry-analytics-service/internal/events/adapters/postgres"
	eventsPorts "telemetry-analytics-service/internal/events/core/ports"
	eventsUsecase "telemetry-analytics-service/internal/events/core/usecase"
	"telemetry-analytics-service/internal/logging"
	"telemetry-analytics-service/internal/metrics/adapters/render"
	metricsUsecase "telemetry-analytics-service/internal/metrics/core/usecase"

	"github.com/spf13/pflag"
)

const (
	flagJSON  = "json"
	flagHTML  = "html"
	flagSince = "since"
	flagUntil = "until"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the analyzer and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("telemetry-analyze", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	config.RegisterFlags(fs)
	asJSON := fs.Bool(flagJSON, false, "output raw JSON instead of formatted text")
	htmlPath := fs.String(flagHTML, "", "write a self-contained HTML report to `FILE`")
	since := fs.String(flagSince, "", "start date filter (YYYY-MM-DD)")
	until := fs.String(flagUntil, "", "end date filter (YYYY-MM-DD)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.FromFlags(fs)
	if err != nil {
		fmt.Fprintf(stderr, "invalid configuration: %v\n", err)
		return 2
	}
	logger := logging.New(cfg.Log, stderr)

	source, closeSource, err := openSource(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closeSource()

	getReportUC := metricsUsecase.NewGetReportUseCase(
		eventsUsecase.NewIngestUseCase(source, logger),
		metricsUsecase.NewAssembler(clock.Real(), logger),
	)

	report, err := getReportUC.Execute(ctx, metricsUsecase.GetReportInput{Since: *since, Until: *until})
	switch {
	case errors.Is(err, eventsFs.ErrDataDirNotFound):
		logger.WarnContext(ctx, "data directory not found", "dir", cfg.DataDir)
		fmt.Fprintln(stderr, "No data.")
		return 0
	case errors.Is(err, metricsUsecase.ErrNoData):
		fmt.Fprintln(stderr, "No data.")
		return 0
	case err != nil:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if *asJSON {
		raw, err := report.JSON()
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, string(raw))
		return 0
	}

	if *htmlPath != "" {
		page, err := render.NewHTML().Render(report)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		if err := os.WriteFile(*htmlPath, page, 0o644); err != nil {
			fmt.Fprintf(stderr, "Error: write html report: %v\n", err)
			return 1
		}
		fmt.Fprintf(stderr, "HTML report written to %s\n", *htmlPath)
	}

	fmt.Fprintln(stdout, render.NewText(isTerminal(stdout)).Render(report))
	return 0
}

// openSource builds the configured event source and a func releasing
// whatever it holds open.
func openSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (eventsPorts.EventSourcePort, func(), error) {
	if cfg.Source != config.SourcePostgres {
		return eventsFs.NewLoader(cfg.DataDir, cfg.Loader.Workers, logger), func() {}, nil
	}

	db, err := eventsRepoPg.Open(ctx, cfg.Postgres.DSN, eventsRepoPg.PoolOptions{
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		return nil, nil, err
	}
	repo := eventsRepoPg.NewEventRepository(eventsRepoPg.NewSQLDB(db), cfg.Postgres.Table, logger)
	return repo, func() { _ = db.Close() }, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
