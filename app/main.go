package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minhokang/trendsnap/app/api"
	"github.com/minhokang/trendsnap/app/cfg"
	"github.com/minhokang/trendsnap/app/database"
	"github.com/minhokang/trendsnap/app/enrich"
	"github.com/minhokang/trendsnap/app/extract"
	"github.com/minhokang/trendsnap/app/llm"
	"github.com/minhokang/trendsnap/app/match"
	"github.com/minhokang/trendsnap/app/pipeline"
	"github.com/minhokang/trendsnap/app/rank"
	"github.com/minhokang/trendsnap/app/sources"
)

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appConfig == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appConfig.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting TrendSnap", "version", appConfig.Version)

	db, err := database.NewConnection(appConfig.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Migrations applied", "version", version, "dirty", dirty)

	sourceConfig, err := sources.LoadConfig(appConfig.SourcesFile)
	if err != nil {
		slog.Error("Failed to load source configuration", "error", err)
		os.Exit(1)
	}

	slots, err := pipeline.ParseSchedule(appConfig.ScheduleUTC)
	if err != nil {
		slog.Error("Failed to parse update schedule", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}

	// Registration order is the tier-priority dedup order.
	collector := sources.NewCollector(
		sources.NewRSSAdapter(sourceConfig.Feeds, httpClient, appConfig.UserAgent),
		sources.NewGitHubMarkdownAdapter(httpClient, appConfig.GitHubToken, appConfig.UserAgent, sourceConfig.GitHub.Markdown),
		sources.NewGitHubReleasesAdapter(httpClient, appConfig.GitHubToken, appConfig.UserAgent, sourceConfig.GitHub.Repos),
		sources.NewChangelogAdapter(sourceConfig.Changelogs, httpClient, appConfig.UserAgent),
		sources.NewYouTubeAdapter(sourceConfig.YouTubeChannels, httpClient, appConfig.UserAgent),
		sources.NewHackerNewsAdapter(httpClient, appConfig.UserAgent),
		sources.NewGDELTAdapter(httpClient, appConfig.UserAgent),
		sources.NewGitHubSearchAdapter(httpClient, appConfig.GitHubToken, appConfig.UserAgent, sourceConfig.GitHub.Queries),
	)

	llmClient := llm.NewClient(appConfig.OpenAIAPIKey, appConfig.OpenAIModel)

	snapshotRepo := database.NewSnapshotRepository(db)
	keywordRepo := database.NewKeywordRepository(db)
	sourceRepo := database.NewSourceRepository(db)

	enricher := enrich.NewEnricher(
		enrich.NewTavilyClient(appConfig.TavilyAPIKey),
		enrich.NewImageScraper(appConfig.UserAgent),
		enrich.NewSummarizer(llmClient, appConfig.SummaryContextLimit, appConfig.EnableEnSummary),
		enrich.NewTranslator(llmClient),
	)

	runner := pipeline.NewRunner(
		collector,
		extract.NewExtractor(llmClient),
		match.NewMatcher(),
		rank.NewRanker(),
		enricher,
		pipeline.NewReuseCache(snapshotRepo, keywordRepo, sourceRepo, appConfig.ReuseSnapshots),
		snapshotRepo,
		keywordRepo,
		sourceRepo,
		slots,
	)

	handler := api.NewHandler(runner, snapshotRepo)
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute, // pipeline runs synchronously behind the trigger
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appConfig.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("HTTP server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}
