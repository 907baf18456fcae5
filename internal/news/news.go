package news

import (
	"strings"
	"time"

	"github.com/deusflow/newswatch/internal/rss"
)

// KST is the fixed UTC+9 zone used for recency checks, display dates and store partitioning.
var KST = time.FixedZone("KST", 9*60*60)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Article is a normalized feed entry that passed the exclude and recency checks.
type Article struct {
	Title       string // only used for the fingerprint, never stored
	Summary     string
	Link        string
	PublishedAt time.Time
	Date        string
	Time        string
	Fingerprint string
	Keyword     string
}

// Row is the persisted projection of an Article.
type Row struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Summary     string `json:"summary"`
	Link        string `json:"link"`
	Fingerprint string `json:"fingerprint"`
}

// RowHeader is the header written when a day's table is created.
var RowHeader = []string{"date", "time", "summary", "link", "fingerprint"}

// Notice is what the notification sink receives for one article.
type Notice struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	Summary string `json:"summary"`
	Link    string `json:"link"`
}

// NewArticle builds an article from already normalized text.
func NewArticle(title, summary, link string, published time.Time) Article {
	local := published.In(KST)
	return Article{
		Title:       title,
		Summary:     summary,
		Link:        CanonicalLink(link),
		PublishedAt: published.UTC(),
		Date:        local.Format(DateLayout),
		Time:        local.Format(TimeLayout),
		Fingerprint: Fingerprint(title, summary),
	}
}

func (a Article) Row() Row {
	return Row{
		Date:        a.Date,
		Time:        a.Time,
		Summary:     a.Summary,
		Link:        a.Link,
		Fingerprint: a.Fingerprint,
	}
}

func (a Article) Notice() Notice {
	return Notice{
		Date:    a.Date,
		Time:    a.Time,
		Summary: a.Summary,
		Link:    a.Link,
	}
}

// CanonicalLink drops the query string: everything from the first '?' on.
func CanonicalLink(link string) string {
	if i := strings.IndexByte(link, '?'); i >= 0 {
		return link[:i]
	}
	return link
}

// Day returns the store partition key for t.
func Day(t time.Time) string {
	return t.In(KST).Format(DateLayout)
}

// CollectStats counts why raw entries were dropped during Collect.
type CollectStats struct {
	Total    int
	Excluded int
	Stale    int
	Kept     int
}

// Collector turns raw feed entries into articles.
type Collector struct {
	ExcludeTerms []string
	Window       RecencyWindow
}

// Collect normalizes each entry, drops those hitting an exclude term and those that
// are not recent, and returns the rest as articles in input order.
func (c Collector) Collect(items []rss.FeedItem) ([]Article, CollectStats) {
	stats := CollectStats{Total: len(items)}
	articles := make([]Article, 0, len(items))

	for _, item := range items {
		title := Normalize(item.Title)
		summary := Normalize(item.Description)

		if c.Excluded(title, summary) {
			stats.Excluded++
			continue
		}

		published, ok := ParsePublished(item.PublishedParsed, item.Published)
		if !ok || !c.Window.Accepts(published) {
			stats.Stale++
			continue
		}

		a := NewArticle(title, summary, item.Link, published)
		a.Keyword = item.Keyword
		articles = append(articles, a)
	}

	stats.Kept = len(articles)
	return articles, stats
}

// Excluded reports whether any exclude term occurs in title or summary.
func (c Collector) Excluded(title, summary string) bool {
	for _, term := range c.ExcludeTerms {
		if term == "" {
			continue
		}
		if strings.Contains(title, term) || strings.Contains(summary, term) {
			return true
		}
	}
	return false
}
