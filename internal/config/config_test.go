package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every PRSTUDY_ env var that Load() reads.
var allConfigKeys = []string{
	"PRSTUDY_GITHUB_TOKEN",
	"PRSTUDY_API_URL",
	"PRSTUDY_REQUEST_TIMEOUT",
	"PRSTUDY_REQUESTS_PER_SECOND",
	"PRSTUDY_MAX_ATTEMPTS",
	"PRSTUDY_SEARCH_QUERY",
	"PRSTUDY_TARGET_REPOS",
	"PRSTUDY_MIN_CLOSED_PRS",
	"PRSTUDY_PAGE_DELAY",
	"PRSTUDY_PR_DELAY",
	"PRSTUDY_MAX_PAGES_PER_REPO",
	"PRSTUDY_BOT_LOGINS",
	"PRSTUDY_OUTPUT_PATH",
	"PRSTUDY_XLSX_PATH",
	"PRSTUDY_DB_PATH",
	"PRSTUDY_AUDIT_PATH",
	"PRSTUDY_REPORT_PATH",
	"PRSTUDY_CACHE_DIR",
	"PRSTUDY_LOG_LEVEL",
}

// isolateConfigEnv saves and unsets all PRSTUDY_ env vars so tests don't
// inherit values from the host environment.
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.False(t, cfg.HasGitHubToken())
	assert.Equal(t, "https://api.github.com/", cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.InDelta(t, 1.0, cfg.RequestsPerSecond, 1e-9)
	assert.Zero(t, cfg.MaxAttempts)
	assert.Equal(t, "stars:>1", cfg.SearchQuery)
	assert.Equal(t, 200, cfg.TargetRepos)
	assert.Equal(t, 100, cfg.MinClosedPRs)
	assert.Equal(t, 2*time.Second, cfg.PageDelay)
	assert.Equal(t, time.Second, cfg.PRDelay)
	assert.Zero(t, cfg.MaxPagesPerRepo)
	assert.Empty(t, cfg.BotLogins)
	assert.Equal(t, "data/pull_requests.csv", cfg.OutputPath)
	assert.Empty(t, cfg.XLSXPath)
	assert.Empty(t, cfg.DBPath)
	assert.Equal(t, "data/qualified_repos.txt", cfg.AuditPath)
	assert.Equal(t, "data/report.html", cfg.ReportPath)
	assert.Equal(t, "data/http-cache", cfg.CacheDir)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PRSTUDY_GITHUB_TOKEN", "ghp_test123")
	t.Setenv("PRSTUDY_API_URL", "https://ghe.example.com/api/v3/")
	t.Setenv("PRSTUDY_REQUEST_TIMEOUT", "45s")
	t.Setenv("PRSTUDY_REQUESTS_PER_SECOND", "0.5")
	t.Setenv("PRSTUDY_MAX_ATTEMPTS", "5")
	t.Setenv("PRSTUDY_SEARCH_QUERY", "stars:>1000 language:go")
	t.Setenv("PRSTUDY_TARGET_REPOS", "50")
	t.Setenv("PRSTUDY_MIN_CLOSED_PRS", "250")
	t.Setenv("PRSTUDY_PAGE_DELAY", "500ms")
	t.Setenv("PRSTUDY_PR_DELAY", "0s")
	t.Setenv("PRSTUDY_MAX_PAGES_PER_REPO", "3")
	t.Setenv("PRSTUDY_BOT_LOGINS", " ci-runner , ,release-bot")
	t.Setenv("PRSTUDY_OUTPUT_PATH", "/tmp/out.csv")
	t.Setenv("PRSTUDY_XLSX_PATH", "/tmp/out.xlsx")
	t.Setenv("PRSTUDY_DB_PATH", "/tmp/prstudy.db")
	t.Setenv("PRSTUDY_AUDIT_PATH", "/tmp/audit.txt")
	t.Setenv("PRSTUDY_REPORT_PATH", "/tmp/report.html")
	t.Setenv("PRSTUDY_CACHE_DIR", "/tmp/http-cache")
	t.Setenv("PRSTUDY_LOG_LEVEL", "debug")

	cfg, err := Load()

	require.NoError(t, err)
	assert.True(t, cfg.HasGitHubToken())
	assert.Equal(t, "ghp_test123", cfg.GitHubToken)
	assert.Equal(t, "https://ghe.example.com/api/v3/", cfg.APIURL)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.InDelta(t, 0.5, cfg.RequestsPerSecond, 1e-9)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, "stars:>1000 language:go", cfg.SearchQuery)
	assert.Equal(t, 50, cfg.TargetRepos)
	assert.Equal(t, 250, cfg.MinClosedPRs)
	assert.Equal(t, 500*time.Millisecond, cfg.PageDelay)
	assert.Zero(t, cfg.PRDelay)
	assert.Equal(t, 3, cfg.MaxPagesPerRepo)
	assert.Equal(t, []string{"ci-runner", "release-bot"}, cfg.BotLogins)
	assert.Equal(t, "/tmp/out.csv", cfg.OutputPath)
	assert.Equal(t, "/tmp/out.xlsx", cfg.XLSXPath)
	assert.Equal(t, "/tmp/prstudy.db", cfg.DBPath)
	assert.Equal(t, "/tmp/audit.txt", cfg.AuditPath)
	assert.Equal(t, "/tmp/report.html", cfg.ReportPath)
	assert.Equal(t, "/tmp/http-cache", cfg.CacheDir)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"PRSTUDY_REQUEST_TIMEOUT", "soon"},
		{"PRSTUDY_PAGE_DELAY", "-1s"},
		{"PRSTUDY_PR_DELAY", "10"},
		{"PRSTUDY_MAX_ATTEMPTS", "many"},
		{"PRSTUDY_TARGET_REPOS", "0"},
		{"PRSTUDY_MIN_CLOSED_PRS", "-5"},
		{"PRSTUDY_MAX_PAGES_PER_REPO", "1.5"},
		{"PRSTUDY_REQUESTS_PER_SECOND", "fast"},
		{"PRSTUDY_LOG_LEVEL", "verbose"},
		{"PRSTUDY_OUTPUT_PATH", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()

			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	isolateConfigEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PRSTUDY_TARGET_REPOS=25\nPRSTUDY_SEARCH_QUERY=stars:>10\n"), 0o600))
	t.Setenv("PRSTUDY_SEARCH_QUERY", "from-environment")

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), envFile))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.TargetRepos)
	assert.Equal(t, "from-environment", cfg.SearchQuery, "existing variables win over the file")
}
