package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DatabaseURL string `long:"database-url" env:"DATABASE_URL" description:"Postgres connection string (required)"`
	PostgresURL string `long:"postgres-url" env:"POSTGRES_URL" description:"Alternative Postgres connection string"`

	// HTTP server
	Port       string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	CronSecret string `long:"cron-secret" env:"CRON_SECRET" description:"Bearer secret required by the pipeline trigger endpoint (optional)"`

	// External services
	OpenAIAPIKey string `long:"openai-api-key" env:"OPENAI_API_KEY" description:"API key for LLM calls"`
	OpenAIModel  string `long:"openai-model" env:"OPENAI_MODEL" default:"gpt-4o-mini" description:"Model identifier for extraction and summarization"`
	TavilyAPIKey string `long:"tavily-api-key" env:"TAVILY_API_KEY" description:"API key for external search"`
	GitHubToken  string `long:"github-token" env:"GITHUB_TOKEN" description:"GitHub token; adapters are skipped when absent"`

	// Pipeline tuning
	WindowHours            int    `long:"window-hours" env:"PIPELINE_WINDOW_HOURS" default:"48" description:"Item lookback window in hours"`
	RankedKeywords         int    `long:"ranked-keywords" env:"PIPELINE_RANKED_KEYWORDS" default:"20" description:"Number of ranked keywords persisted per snapshot"`
	DetailedKeywords       int    `long:"detailed-keywords" env:"PIPELINE_DETAILED_KEYWORDS" default:"10" description:"Number of top keywords receiving full enrichment"`
	KeywordConcurrency     int    `long:"keyword-concurrency" env:"PIPELINE_KEYWORD_CONCURRENCY" default:"3" description:"Enrichment worker pool size"`
	LightweightConcurrency int    `long:"lightweight-concurrency" env:"PIPELINE_LIGHTWEIGHT_CONCURRENCY" default:"5" description:"Lightweight insert worker pool size"`
	ReuseSnapshots         int    `long:"reuse-snapshots" env:"PIPELINE_REUSE_SNAPSHOTS" default:"4" description:"Number of recent snapshots consulted by the reuse cache"`
	ScheduleUTC            string `long:"schedule-utc" env:"PIPELINE_SCHEDULE_UTC" default:"0:17,9:17" description:"Comma-separated UTC HH:MM slots for the next-update schedule"`
	EnableEnSummary        string `long:"enable-en-summary" env:"ENABLE_EN_SUMMARY" default:"true" description:"Generate English summaries alongside Korean"`
	SummaryContextLimit    int    `long:"summary-context-limit" env:"SUMMARY_CONTEXT_LIMIT" default:"5" description:"Number of sources fed to the summarizer"`
	SourcesFile            string `long:"sources-file" env:"SOURCES_FILE" description:"YAML file overriding the built-in source lists (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"TrendSnap/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	databaseURL := cmp.Or(raw.DatabaseURL, raw.PostgresURL)
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL (or POSTGRES_URL) is required")
	}

	cfg := &Cfg{
		DatabaseURL:            databaseURL,
		Port:                   raw.Port,
		CronSecret:             raw.CronSecret,
		OpenAIAPIKey:           raw.OpenAIAPIKey,
		OpenAIModel:            raw.OpenAIModel,
		TavilyAPIKey:           raw.TavilyAPIKey,
		GitHubToken:            raw.GitHubToken,
		WindowHours:            clamp(raw.WindowHours, 1, 168),
		RankedKeywords:         clamp(raw.RankedKeywords, 1, 50),
		KeywordConcurrency:     clamp(raw.KeywordConcurrency, 1, 10),
		LightweightConcurrency: clamp(raw.LightweightConcurrency, 1, 20),
		ReuseSnapshots:         clamp(raw.ReuseSnapshots, 0, 20),
		ScheduleUTC:            raw.ScheduleUTC,
		EnableEnSummary:        raw.EnableEnSummary != "false" && raw.EnableEnSummary != "0",
		SummaryContextLimit:    clamp(raw.SummaryContextLimit, 1, 10),
		SourcesFile:            raw.SourcesFile,
		UserAgent:              raw.UserAgent,
		Debug:                  raw.Debug,
		Version:                GetVersion(),
	}
	cfg.DetailedKeywords = clamp(raw.DetailedKeywords, 1, cfg.RankedKeywords)

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Intended for tests.
func Set(c *Cfg) {
	globalCfg = c
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
