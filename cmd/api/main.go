package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"telemetry-analytics-service/internal/clock"
	"telemetry-analytics-service/internal/config"
	eventsFs "telemetry-analytics-service/internal/events/adapters/filesystem"
	eventsHttp "telemetry-analytics-service/internal/events/adapters/http/fiber"
	eventsRepoPg "telemetry-analytics-service/internal/events/adapters/postgres"
	eventsPorts "telemetry-analytics-service/internal/events/core/ports"
	eventsUsecase "telemetry-analytics-service/internal/events/core/usecase"
	"telemetry-analytics-service/internal/logging"

	metricsHttp "telemetry-analytics-service/internal/metrics/adapters/http/fiber"
	metricsUsecase "telemetry-analytics-service/internal/metrics/core/usecase"

	"github.com/gofiber/fiber/v2"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/pflag"
	fiberSwagger "github.com/swaggo/fiber-swagger"

	_ "telemetry-analytics-service/docs"
)

func main() {
	// Config
	config.RegisterFlags(pflag.CommandLine)
	pflag.String(config.FlagHTTPAddr, "", "listen address (env "+config.EnvHTTPAddr+")")
	pflag.Parse()

	cfg, err := config.FromFlags(pflag.CommandLine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	logger := logging.New(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	if cfg.Postgres.DSN == "" {
		fatal(logger, config.EnvPostgresDSN+" is not set", nil)
	}

	// DB connection
	db, err := eventsRepoPg.Open(context.Background(), cfg.Postgres.DSN, eventsRepoPg.PoolOptions{
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		fatal(logger, "failed to connect to postgres", err)
	}
	defer db.Close()

	// Repositories
	eventRepository := eventsRepoPg.NewEventRepository(eventsRepoPg.NewSQLDB(db), cfg.Postgres.Table, logger)
	if err := eventRepository.EnsureSchema(context.Background()); err != nil {
		fatal(logger, "failed to create event table", err)
	}

	var source eventsPorts.EventSourcePort = eventRepository
	if cfg.Source == config.SourceFiles {
		source = eventsFs.NewLoader(cfg.DataDir, cfg.Loader.Workers, logger)
	}

	// Usecases
	storeEventUC := eventsUsecase.NewStoreEventUseCase(eventRepository, clock.Real())
	ingestUC := eventsUsecase.NewIngestUseCase(source, logger)
	getReportUC := metricsUsecase.NewGetReportUseCase(ingestUC, metricsUsecase.NewAssembler(clock.Real(), logger))

	// HTTP (Fiber) app + handlers
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(fiberLogger.New())

	// events endpoints
	eventsHandler := eventsHttp.NewEventHandler(storeEventUC)
	app.Post("/events", eventsHandler.CreateEvent)
	app.Post("/events/bulk", eventsHandler.BulkCreateEvents)

	// report endpoints
	reportHandler := metricsHttp.NewReportHandler(getReportUC)
	app.Get("/report", reportHandler.GetReport)
	app.Get("/report/text", reportHandler.GetReportText)
	app.Get("/report/html", reportHandler.GetReportHTML)

	// Swagger
	app.Get("/docs/*", fiberSwagger.WrapHandler)

	// Graceful shutdown
	go func() {
		if err := app.Listen(cfg.HTTP.Addr); err != nil {
			logger.Error("fiber stopped", "error", err)
		}
	}()

	logger.Info("server started", "addr", cfg.HTTP.Addr, "source", cfg.Source)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("fiber shutdown error", "error", err)
	}

	logger.Info("server exiting")
}

func fatal(logger *slog.Logger, msg string, err error) {
	if err != nil {
		logger.Error(msg, "error", err)
	} else {
		logger.Error(msg)
	}
	os.Exit(1)
}
