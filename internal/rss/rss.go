package rss

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/deusflow/newswatch/internal/logger"
	"github.com/deusflow/newswatch/internal/retry"
)

// DefaultURLTemplate is the Google News keyword search feed (Korean edition).
const DefaultURLTemplate = "https://news.google.com/rss/search?q={query}&hl=ko&gl=KR&ceid=KR:ko"

// FeedItem is one raw entry as returned by the feed, tagged with the keyword that found it.
type FeedItem struct {
	Keyword         string
	Title           string
	Description     string
	Link            string
	Published       string
	PublishedParsed *time.Time
}

// Options configures a Fetcher.
type Options struct {
	URLTemplate string
	Timeout     time.Duration
	UserAgent   string
	Concurrency int
	Retry       retry.RetryConfig
}

// Report summarizes one FetchAll call.
type Report struct {
	Fetched map[string]int
	Failed  map[string]error
}

// OK returns true if at least one keyword was fetched.
func (r Report) OK() bool {
	return len(r.Fetched) > 0
}

// Fetcher queries one feed per keyword.
type Fetcher struct {
	parser *gofeed.Parser
	opts   Options
}

// NewFetcher creates a Fetcher, filling defaults for unset options.
func NewFetcher(opts Options) *Fetcher {
	if opts.URLTemplate == "" {
		opts.URLTemplate = DefaultURLTemplate
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry.MaxAttempts = 1
	}

	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: opts.Timeout}
	if opts.UserAgent != "" {
		parser.UserAgent = opts.UserAgent
	}
	return &Fetcher{parser: parser, opts: opts}
}

// FeedURL builds the search feed URL for a keyword.
func (f *Fetcher) FeedURL(keyword string) string {
	return strings.ReplaceAll(f.opts.URLTemplate, "{query}", url.QueryEscape(keyword))
}

// FetchKeyword downloads and parses the feed for one keyword.
func (f *Fetcher) FetchKeyword(ctx context.Context, keyword string) ([]FeedItem, error) {
	feedURL := f.FeedURL(keyword)

	var feed *gofeed.Feed
	err := retry.WithRetry(ctx, f.opts.Retry, func() error {
		var err error
		feed, err = f.parser.ParseURLWithContext(feedURL, ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching feed for %q: %w", keyword, err)
	}

	items := make([]FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		items = append(items, FeedItem{
			Keyword:         keyword,
			Title:           it.Title,
			Description:     it.Description,
			Link:            it.Link,
			Published:       it.Published,
			PublishedParsed: it.PublishedParsed,
		})
	}
	return items, nil
}

// FetchAll fetches every keyword, at most Concurrency at a time. A failing keyword is
// logged and skipped. Items are returned grouped in keyword order, each group in feed order.
func (f *Fetcher) FetchAll(ctx context.Context, keywords []string) ([]FeedItem, Report) {
	type slot struct {
		items []FeedItem
		err   error
	}
	slots := make([]slot, len(keywords))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Concurrency)
	for i, kw := range keywords {
		i, kw := i, kw
		g.Go(func() error {
			items, err := f.FetchKeyword(gctx, kw)
			slots[i] = slot{items: items, err: err}
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Fetched: map[string]int{}, Failed: map[string]error{}}
	var all []FeedItem
	for i, kw := range keywords {
		s := slots[i]
		if s.err != nil {
			logger.Warn("keyword fetch failed", "keyword", kw, "error", s.err)
			report.Failed[kw] = s.err
			continue
		}
		logger.Info("keyword fetched", "keyword", kw, "entries", len(s.items))
		report.Fetched[kw] = len(s.items)
		all = append(all, s.items...)
	}

	logger.Info("feeds processed", "ok", len(report.Fetched), "total", len(keywords))
	return all, report
}
