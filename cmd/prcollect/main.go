package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/ericfisherdev/prstudy/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/prstudy/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/prstudy/internal/adapter/driven/tabular"
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
	// 1. Load configuration (fail fast on invalid env vars).
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
	slog.Info("config loaded",
		"api_url", cfg.APIURL,
		"search_query", cfg.SearchQuery,
		"target_repos", cfg.TargetRepos,
		"min_closed_prs", cfg.MinClosedPRs,
		"output_path", cfg.OutputPath,
		"xlsx_path", cfg.XLSXPath,
		"db_path", cfg.DBPath,
	)
	if !cfg.HasGitHubToken() {
		slog.Warn("PRSTUDY_GITHUB_TOKEN not set, using unauthenticated rate limits")
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Wire file sinks.
	sinks := []driven.RecordSink{tabular.NewCSVStore(cfg.OutputPath)}
	if cfg.XLSXPath != "" {
		sinks = append(sinks, tabular.NewXLSXSink(cfg.XLSXPath))
	}
	audits := auditStores{tabular.NewAuditFile(cfg.AuditPath)}
	var runStore driven.RunStore

	// 4. Open database and run migrations when enabled.
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
		slog.Info("database ready", "path", cfg.DBPath)

		sinks = append(sinks, sqliteadapter.NewRecordRepo(db))
		audits = append(audits, sqliteadapter.NewQualificationRepo(db))
		runStore = sqliteadapter.NewRunRepo(db)
	}

	// 5. Create GitHub client over the resilient executor.
	transport, err := githubadapter.NewHTTPTransport(githubadapter.TransportConfig{
		BaseURL:           cfg.APIURL,
		Token:             cfg.GitHubToken,
		RequestTimeout:    cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		CacheDir:          cfg.CacheDir,
	})
	if err != nil {
		return err
	}
	policy := githubadapter.DefaultRetryPolicy()
	policy.MaxAttempts = cfg.MaxAttempts
	clock := githubadapter.SystemClock{}
	ghClient := githubadapter.NewClient(githubadapter.NewExecutor(transport, policy, clock, slog.Default()))

	// 6. Create services.
	discovery := application.NewDiscoveryService(ghClient, clock, cfg.SearchQuery, cfg.PageDelay)
	qualifier := application.NewQualifier(ghClient, cfg.MinClosedPRs)
	miner := application.NewMiner(ghClient, clock, application.MinerConfig{
		PageDelay:       cfg.PageDelay,
		PRDelay:         cfg.PRDelay,
		MaxPagesPerRepo: cfg.MaxPagesPerRepo,
		BotLogins:       cfg.BotLogins,
	})
	collectSvc := application.NewCollectService(discovery, qualifier, miner, sinks, audits, runStore, cfg.TargetRepos)

	// 7. Run collection until done or interrupted.
	result, err := collectSvc.Run(ctx)
	if errors.Is(err, context.Canceled) {
		slog.Info("collection interrupted, dataset holds every completed repository",
			"run_id", result.ID,
			"records", result.Records,
		)
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("prcollect finished", "run_id", result.ID, "records", result.Records, "output_path", cfg.OutputPath)
	return nil
}
