package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	sqliteadapter "github.com/ericfisherdev/prstudy/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/prstudy/internal/adapter/driven/tabular"
	"github.com/ericfisherdev/prstudy/internal/adapter/driving/report"
	"github.com/ericfisherdev/prstudy/internal/application"
	"github.com/ericfisherdev/prstudy/internal/config"
	"github.com/ericfisherdev/prstudy/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration.
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Pick the dataset source: SQLite when configured, else the CSV file.
	var source driven.RecordSource = tabular.NewCSVStore(cfg.OutputPath)
	sourceName := cfg.OutputPath
	if cfg.DBPath != "" {
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()

		if err := db.Migrate(); err != nil {
			return err
		}
		source = sqliteadapter.NewRecordRepo(db)
		sourceName = cfg.DBPath
	}
	slog.Info("reading dataset", "source", sourceName)

	// 4. Analyze.
	analysis, err := application.NewAnalysisService(source).Run(ctx)
	if err != nil {
		return err
	}

	// 5. Render the report.
	if err := report.NewWriter(cfg.ReportPath).Write(ctx, analysis); err != nil {
		return err
	}

	slog.Info("report written",
		"path", cfg.ReportPath,
		"records", analysis.Records,
		"merged", analysis.Merged,
		"closed", analysis.Closed,
	)
	return nil
}
