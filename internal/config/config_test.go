package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"KEYWORDS_FILE", "FEED_URL_TEMPLATE", "WEBHOOK_URL", "STORE_BACKEND", "SPREADSHEET_ID",
	"GOOGLE_CREDENTIALS", "DATABASE_URL", "SQLITE_PATH", "FILE_STORE_DIR", "FETCH_CONCURRENCY",
	"USER_AGENT", "RETRY_ATTEMPTS", "REQUEST_TIMEOUT", "RETRY_DELAY", "DEBUG", "DRY_RUN", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeKeywords(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleKeywords = `
keywords:
  - 피자
  - "  치킨  "
  - ""
  - 피자
exclude:
  - 치킨게임
  - " "
`

func TestLoadKeywords(t *testing.T) {
	kf, err := LoadKeywords(writeKeywords(t, sampleKeywords))
	if err != nil {
		t.Fatalf("LoadKeywords: %v", err)
	}
	if strings.Join(kf.Keywords, ",") != "피자,치킨" {
		t.Errorf("unexpected keywords %q", kf.Keywords)
	}
	if len(kf.Exclude) != 1 || kf.Exclude[0] != "치킨게임" {
		t.Errorf("unexpected exclude terms %q", kf.Exclude)
	}
}

func TestLoadKeywordsErrors(t *testing.T) {
	if _, err := LoadKeywords(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadKeywords(writeKeywords(t, "keywords: [unclosed")); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	path := writeKeywords(t, sampleKeywords)
	t.Setenv("WEBHOOK_URL", "https://hook.example/x")
	t.Setenv("STORE_BACKEND", "FILE")
	t.Setenv("FILE_STORE_DIR", "/tmp/rows")
	t.Setenv("FETCH_CONCURRENCY", "8")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("RETRY_ATTEMPTS", "not-a-number")
	t.Setenv("DEBUG", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StoreBackend != "file" || cfg.FileStoreDir != "/tmp/rows" {
		t.Errorf("unexpected store settings %q %q", cfg.StoreBackend, cfg.FileStoreDir)
	}
	if cfg.FetchConcurrency != 8 || cfg.RequestTimeout != 5*time.Second {
		t.Errorf("unexpected fetch settings %d %v", cfg.FetchConcurrency, cfg.RequestTimeout)
	}
	if cfg.RetryAttempts != 2 {
		t.Errorf("invalid RETRY_ATTEMPTS should keep default, got %d", cfg.RetryAttempts)
	}
	if !cfg.Debug || cfg.DryRun {
		t.Errorf("unexpected flags debug=%v dry=%v", cfg.Debug, cfg.DryRun)
	}
	if len(cfg.Keywords) != 2 || len(cfg.ExcludeTerms) != 1 {
		t.Errorf("unexpected keyword sets %q %q", cfg.Keywords, cfg.ExcludeTerms)
	}
}

func TestLoadUsesKeywordsFileEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("KEYWORDS_FILE", writeKeywords(t, sampleKeywords))
	t.Setenv("DRY_RUN", "true")
	t.Setenv("STORE_BACKEND", "sqlite")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SQLitePath != "newswatch.db" {
		t.Errorf("expected default sqlite path, got %q", cfg.SQLitePath)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Keywords:          []string{"피자"},
			WebhookURL:        "https://hook.example/x",
			StoreBackend:      "sheets",
			SpreadsheetID:     "sheet",
			GoogleCredentials: "{}",
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no keywords", func(c *Config) { c.Keywords = nil }},
		{"no webhook", func(c *Config) { c.WebhookURL = "" }},
		{"no spreadsheet", func(c *Config) { c.SpreadsheetID = "" }},
		{"no credentials", func(c *Config) { c.GoogleCredentials = "" }},
		{"postgres without url", func(c *Config) { c.StoreBackend = "postgres" }},
		{"unknown backend", func(c *Config) { c.StoreBackend = "mongo" }},
		{"bad template", func(c *Config) { c.FeedURLTemplate = "https://feeds.example/rss" }},
	}
	for _, tt := range tests {
		c := valid()
		tt.mutate(c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}

	dry := valid()
	dry.WebhookURL = ""
	dry.DryRun = true
	if err := dry.Validate(); err != nil {
		t.Errorf("dry run should not need a webhook: %v", err)
	}
}
