package news

import (
	"strings"
	"time"
)

// RecencySpan is how old an entry may be and still be collected.
const RecencySpan = 24 * time.Hour

var publishedLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	time.RFC822Z,
	time.RFC822,
}

// RecencyWindow accepts timestamps younger than Span relative to a fixed Now.
type RecencyWindow struct {
	Now  time.Time
	Span time.Duration
}

// NewRecencyWindow pins now (in KST) for a whole run.
func NewRecencyWindow(now time.Time) RecencyWindow {
	return RecencyWindow{Now: now.In(KST), Span: RecencySpan}
}

// Accepts reports whether published lies strictly less than Span before Now.
func (w RecencyWindow) Accepts(published time.Time) bool {
	if published.IsZero() {
		return false
	}
	return w.Now.Sub(published.In(KST)) < w.Span
}

// ParsePublished resolves an entry's publish time. It prefers the time already parsed
// by the feed reader and falls back to common feed layouts on the raw string. The
// result is UTC with whole seconds; ok is false when nothing could be parsed.
func ParsePublished(parsed *time.Time, raw string) (time.Time, bool) {
	if parsed != nil && !parsed.IsZero() {
		return parsed.UTC().Truncate(time.Second), true
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Truncate(time.Second), true
		}
	}
	return time.Time{}, false
}
