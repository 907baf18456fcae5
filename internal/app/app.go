package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/deusflow/newswatch/internal/config"
	"github.com/deusflow/newswatch/internal/logger"
	"github.com/deusflow/newswatch/internal/metrics"
	"github.com/deusflow/newswatch/internal/news"
	"github.com/deusflow/newswatch/internal/retry"
	"github.com/deusflow/newswatch/internal/rss"
	"github.com/deusflow/newswatch/internal/storage"
	"github.com/deusflow/newswatch/internal/webhook"
)

// ErrNoFeeds means every keyword fetch failed; the store was not touched.
var ErrNoFeeds = errors.New("no keyword feed could be fetched")

// FeedSource returns raw entries for all keywords, in keyword order.
type FeedSource interface {
	FetchAll(ctx context.Context, keywords []string) ([]rss.FeedItem, rss.Report)
}

// Runner performs one collection run.
type Runner struct {
	Source       FeedSource
	Store        news.RowStore
	Sink         news.Sink
	Keywords     []string
	ExcludeTerms []string
	DryRun       bool
	Now          func() time.Time
	Metrics      *metrics.Metrics
}

// Result describes a finished run.
type Result struct {
	Day       string
	Fetched   int
	Collected int
	Unique    int
	Fresh     []news.Article
	Notified  bool
}

// Run collects, filters, deduplicates and reconciles against the store, then notifies
// the sink about the new articles. Only the store read and write can fail the run.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	m := r.Metrics
	if m == nil {
		m = metrics.Global
	}
	defer func() {
		m.RecordProcessingTime(time.Since(start))
	}()

	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	day := news.Day(now)
	log := logger.With("run_id", uuid.NewString(), "day", day)
	res := &Result{Day: day}

	items, report := r.Source.FetchAll(ctx, r.Keywords)
	res.Fetched = len(items)
	if len(r.Keywords) > 0 && !report.OK() {
		m.AddRun(metrics.RunCounts{KeywordFailures: len(report.Failed)})
		m.SetError(ErrNoFeeds.Error())
		return res, ErrNoFeeds
	}
	log.Info("entries fetched", "entries", len(items), "failed_keywords", len(report.Failed))

	collector := news.Collector{
		ExcludeTerms: r.ExcludeTerms,
		Window:       news.NewRecencyWindow(now),
	}
	articles, cstats := collector.Collect(items)
	res.Collected = len(articles)

	unique, dstats := news.Suppress(articles)
	res.Unique = len(unique)
	log.Info("duplicates removed",
		"candidates", len(articles),
		"unique", len(unique),
		"exact", dstats.Exact,
		"near", dstats.Near,
		"excluded", cstats.Excluded,
		"stale", cstats.Stale,
	)

	counts := metrics.RunCounts{
		Fetched:         len(items),
		KeywordFailures: len(report.Failed),
		Excluded:        cstats.Excluded,
		Stale:           cstats.Stale,
		Duplicates:      dstats.Exact + dstats.Near,
	}

	var fresh []news.Article
	var err error
	if r.DryRun {
		fresh, err = r.preview(ctx, day, unique)
	} else {
		fresh, err = news.Reconcile(ctx, r.Store, day, unique)
	}
	if err != nil {
		m.AddRun(counts)
		m.SetError(err.Error())
		log.Error("store reconciliation failed", "error", err)
		return res, err
	}
	res.Fresh = fresh

	counts.AlreadyStored = len(unique) - len(fresh)
	if !r.DryRun {
		counts.Stored = len(fresh)
	}
	m.AddRun(counts)
	m.SetLastRun()

	if len(fresh) == 0 {
		log.Info("no new articles")
		return res, nil
	}
	if r.DryRun {
		for _, a := range fresh {
			log.Info("would store", "date", a.Date, "time", a.Time, "link", a.Link, "summary", a.Summary)
		}
		log.Info("dry run, nothing stored or sent", "new", len(fresh))
		return res, nil
	}
	log.Info("new articles stored", "new", len(fresh), "already_stored", counts.AlreadyStored)

	if err := news.Notify(ctx, r.Sink, fresh); err != nil {
		m.IncrementNotificationFailures()
		log.Error("notification failed", "error", err)
		return res, nil
	}
	m.AddNoticesSent(len(fresh))
	res.Notified = true
	return res, nil
}

// preview is Reconcile without the append.
func (r *Runner) preview(ctx context.Context, day string, articles []news.Article) ([]news.Article, error) {
	known, err := r.Store.ReadFingerprints(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %w", news.ErrStoreRead, day, err)
	}
	_, fresh := news.Partition(articles, known)
	return fresh, nil
}

// OpenStore opens the row store selected by cfg.
func OpenStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	return storage.Open(ctx, storage.Options{
		Backend:         cfg.StoreBackend,
		SpreadsheetID:   cfg.SpreadsheetID,
		CredentialsJSON: []byte(cfg.GoogleCredentials),
		DatabaseURL:     cfg.DatabaseURL,
		SQLitePath:      cfg.SQLitePath,
		Dir:             cfg.FileStoreDir,
	})
}

// NewRunner wires the production collaborators from cfg. The caller closes the store.
func NewRunner(ctx context.Context, cfg *config.Config) (*Runner, storage.Store, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s store: %w", cfg.StoreBackend, err)
	}

	fetcher := rss.NewFetcher(rss.Options{
		URLTemplate: cfg.FeedURLTemplate,
		Timeout:     cfg.RequestTimeout,
		UserAgent:   cfg.UserAgent,
		Concurrency: cfg.FetchConcurrency,
		Retry: retry.RetryConfig{
			MaxAttempts: cfg.RetryAttempts,
			Delay:       cfg.RetryDelay,
			Backoff:     true,
		},
	})

	return &Runner{
		Source:       fetcher,
		Store:        store,
		Sink:         webhook.New(cfg.WebhookURL, cfg.RequestTimeout),
		Keywords:     cfg.Keywords,
		ExcludeTerms: cfg.ExcludeTerms,
		DryRun:       cfg.DryRun,
		Metrics:      metrics.Global,
	}, store, nil
}

// Run executes one collection run with the production collaborators.
func Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	runner, store, err := NewRunner(ctx, cfg)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return nil, err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}()
	return runner.Run(ctx)
}
