// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration shared by the collector and the analyzer.
type Config struct {
	GitHubToken       string
	APIURL            string
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	MaxAttempts       int // 0 retries a request until it succeeds.

	SearchQuery     string
	TargetRepos     int
	MinClosedPRs    int
	PageDelay       time.Duration
	PRDelay         time.Duration
	MaxPagesPerRepo int
	BotLogins       []string

	OutputPath string
	XLSXPath   string // Empty disables the spreadsheet sink.
	DBPath     string // Empty disables the SQLite stores.
	AuditPath  string
	ReportPath string
	CacheDir   string // Empty disables the HTTP response cache.

	LogLevel slog.Level
}

// HasGitHubToken reports whether requests will be authenticated.
func (c *Config) HasGitHubToken() bool {
	return c.GitHubToken != ""
}

// LoadDotEnv populates the environment from the given files without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from PRSTUDY_ environment variables and returns a
// validated Config. PRSTUDY_GITHUB_TOKEN is optional; without it requests run
// under the unauthenticated rate limit.
//
// Defaults: PRSTUDY_API_URL (https://api.github.com/), PRSTUDY_REQUEST_TIMEOUT
// (30s), PRSTUDY_REQUESTS_PER_SECOND (1), PRSTUDY_MAX_ATTEMPTS (0),
// PRSTUDY_SEARCH_QUERY (stars:>1), PRSTUDY_TARGET_REPOS (200),
// PRSTUDY_MIN_CLOSED_PRS (100), PRSTUDY_PAGE_DELAY (2s), PRSTUDY_PR_DELAY
// (1s), PRSTUDY_MAX_PAGES_PER_REPO (0), PRSTUDY_OUTPUT_PATH
// (data/pull_requests.csv), PRSTUDY_AUDIT_PATH (data/qualified_repos.txt),
// PRSTUDY_REPORT_PATH (data/report.html), PRSTUDY_CACHE_DIR (data/http-cache),
// PRSTUDY_LOG_LEVEL (info).
func Load() (*Config, error) {
	cfg := &Config{
		GitHubToken:       os.Getenv("PRSTUDY_GITHUB_TOKEN"),
		APIURL:            "https://api.github.com/",
		RequestTimeout:    30 * time.Second,
		RequestsPerSecond: 1,
		SearchQuery:       "stars:>1",
		TargetRepos:       200,
		MinClosedPRs:      100,
		PageDelay:         2 * time.Second,
		PRDelay:           time.Second,
		OutputPath:        "data/pull_requests.csv",
		AuditPath:         "data/qualified_repos.txt",
		ReportPath:        "data/report.html",
		CacheDir:          "data/http-cache",
		LogLevel:          slog.LevelInfo,
		BotLogins:         []string{},
	}

	lookupString("PRSTUDY_API_URL", &cfg.APIURL)
	lookupString("PRSTUDY_SEARCH_QUERY", &cfg.SearchQuery)
	lookupString("PRSTUDY_OUTPUT_PATH", &cfg.OutputPath)
	lookupString("PRSTUDY_XLSX_PATH", &cfg.XLSXPath)
	lookupString("PRSTUDY_DB_PATH", &cfg.DBPath)
	lookupString("PRSTUDY_AUDIT_PATH", &cfg.AuditPath)
	lookupString("PRSTUDY_REPORT_PATH", &cfg.ReportPath)
	lookupString("PRSTUDY_CACHE_DIR", &cfg.CacheDir)

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"PRSTUDY_REQUEST_TIMEOUT", &cfg.RequestTimeout},
		{"PRSTUDY_PAGE_DELAY", &cfg.PageDelay},
		{"PRSTUDY_PR_DELAY", &cfg.PRDelay},
	}
	for _, d := range durations {
		if err := lookupDuration(d.key, d.dst); err != nil {
			return nil, err
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"PRSTUDY_MAX_ATTEMPTS", &cfg.MaxAttempts},
		{"PRSTUDY_TARGET_REPOS", &cfg.TargetRepos},
		{"PRSTUDY_MIN_CLOSED_PRS", &cfg.MinClosedPRs},
		{"PRSTUDY_MAX_PAGES_PER_REPO", &cfg.MaxPagesPerRepo},
	}
	for _, i := range ints {
		if err := lookupInt(i.key, i.dst); err != nil {
			return nil, err
		}
	}

	if v, ok := os.LookupEnv("PRSTUDY_REQUESTS_PER_SECOND"); ok {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("PRSTUDY_REQUESTS_PER_SECOND has invalid value %q", v)
		}
		cfg.RequestsPerSecond = parsed
	}

	if v, ok := os.LookupEnv("PRSTUDY_LOG_LEVEL"); ok {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("PRSTUDY_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	if v, ok := os.LookupEnv("PRSTUDY_BOT_LOGINS"); ok && v != "" {
		for _, login := range strings.Split(v, ",") {
			login = strings.TrimSpace(login)
			if login != "" {
				cfg.BotLogins = append(cfg.BotLogins, login)
			}
		}
	}

	if cfg.TargetRepos <= 0 {
		return nil, fmt.Errorf("PRSTUDY_TARGET_REPOS must be positive, got %d", cfg.TargetRepos)
	}
	if cfg.OutputPath == "" {
		return nil, errors.New("PRSTUDY_OUTPUT_PATH must not be empty")
	}

	return cfg, nil
}

func lookupString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func lookupDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	if parsed < 0 {
		return fmt.Errorf("%s must not be negative, got %s", key, v)
	}
	*dst = parsed
	return nil
}

func lookupInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s has invalid integer %q: %w", key, v, err)
	}
	if parsed < 0 {
		return fmt.Errorf("%s must not be negative, got %d", key, parsed)
	}
	*dst = parsed
	return nil
}
