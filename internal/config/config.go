// Package config loads the run configuration from a YAML keyword file and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Keyword file
	KeywordsPath    string
	Keywords        []string
	ExcludeTerms    []string
	FeedURLTemplate string

	// Notification sink
	WebhookURL string

	// Row store
	StoreBackend      string // sheets | postgres | sqlite | file
	SpreadsheetID     string
	GoogleCredentials string // service account JSON
	DatabaseURL       string
	SQLitePath        string
	FileStoreDir      string

	// Feed fetching
	FetchConcurrency int
	UserAgent        string

	// App settings
	Debug          bool
	LogFormat      string // text | json
	DryRun         bool
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
}

// KeywordsFile is the YAML layout of the keyword file.
type KeywordsFile struct {
	Keywords        []string `yaml:"keywords"`
	Exclude         []string `yaml:"exclude"`
	FeedURLTemplate string   `yaml:"feed_url_template"`
}

// Load reads the keyword file at path (KEYWORDS_FILE or configs/keywords.yaml when
// empty), applies environment settings and validates the result.
func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func load(path string) (*Config, error) {
	cfg := &Config{
		KeywordsPath:     "configs/keywords.yaml",
		StoreBackend:     "sheets",
		SQLitePath:       "newswatch.db",
		FileStoreDir:     "data",
		FetchConcurrency: 4,
		UserAgent:        "newswatch/1.0",
		LogFormat:        "text",
		RequestTimeout:   30 * time.Second,
		RetryAttempts:    2,
		RetryDelay:       2 * time.Second,
	}

	if path == "" {
		path = getEnvOrDefault("KEYWORDS_FILE", cfg.KeywordsPath)
	}
	cfg.KeywordsPath = path

	kf, err := LoadKeywords(path)
	if err != nil {
		return nil, fmt.Errorf("loading keywords: %w", err)
	}
	cfg.Keywords = kf.Keywords
	cfg.ExcludeTerms = kf.Exclude
	cfg.FeedURLTemplate = kf.FeedURLTemplate
	if v := os.Getenv("FEED_URL_TEMPLATE"); v != "" {
		cfg.FeedURLTemplate = v
	}

	cfg.WebhookURL = os.Getenv("WEBHOOK_URL")

	cfg.StoreBackend = strings.ToLower(getEnvOrDefault("STORE_BACKEND", cfg.StoreBackend))
	cfg.SpreadsheetID = os.Getenv("SPREADSHEET_ID")
	cfg.GoogleCredentials = os.Getenv("GOOGLE_CREDENTIALS")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.SQLitePath = getEnvOrDefault("SQLITE_PATH", cfg.SQLitePath)
	cfg.FileStoreDir = getEnvOrDefault("FILE_STORE_DIR", cfg.FileStoreDir)

	cfg.FetchConcurrency = getEnvIntOrDefault("FETCH_CONCURRENCY", cfg.FetchConcurrency)
	cfg.UserAgent = getEnvOrDefault("USER_AGENT", cfg.UserAgent)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)
	cfg.RequestTimeout = getEnvDurationOrDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.RetryDelay = getEnvDurationOrDefault("RETRY_DELAY", cfg.RetryDelay)

	cfg.Debug = os.Getenv("DEBUG") == "true"
	cfg.DryRun = os.Getenv("DRY_RUN") == "true"
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)

	return cfg, nil
}

// LoadKeywords reads the keyword file. Blank and duplicate entries are dropped.
func LoadKeywords(path string) (*KeywordsFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var kf KeywordsFile
	if err := yaml.NewDecoder(f).Decode(&kf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	kf.Keywords = cleanList(kf.Keywords)
	kf.Exclude = cleanList(kf.Exclude)
	kf.FeedURLTemplate = strings.TrimSpace(kf.FeedURLTemplate)
	return &kf, nil
}

func cleanList(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if len(c.Keywords) == 0 {
		return fmt.Errorf("at least one keyword is required in %s", c.KeywordsPath)
	}
	if c.FeedURLTemplate != "" && !strings.Contains(c.FeedURLTemplate, "{query}") {
		return fmt.Errorf("feed url template must contain {query}")
	}
	if !c.DryRun && c.WebhookURL == "" {
		return fmt.Errorf("WEBHOOK_URL is required")
	}

	switch c.StoreBackend {
	case "sheets":
		if c.SpreadsheetID == "" {
			return fmt.Errorf("SPREADSHEET_ID is required for the sheets backend")
		}
		if c.GoogleCredentials == "" {
			return fmt.Errorf("GOOGLE_CREDENTIALS is required for the sheets backend")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	case "file":
		if c.FileStoreDir == "" {
			return fmt.Errorf("FILE_STORE_DIR is required for the file backend")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be one of sheets, postgres, sqlite, file")
	}
	return nil
}
