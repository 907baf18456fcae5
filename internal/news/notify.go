package news

import (
	"context"
	"fmt"
)

// Sink receives newly stored articles.
type Sink interface {
	Send(ctx context.Context, notices []Notice) error
}

// Notices projects articles to notification items.
func Notices(articles []Article) []Notice {
	notices := make([]Notice, len(articles))
	for i, a := range articles {
		notices[i] = a.Notice()
	}
	return notices
}

// Notify sends articles to sink in a single call. Nothing is sent for an empty list.
// The error is for logging only: by the time Notify runs the rows are already stored.
func Notify(ctx context.Context, sink Sink, articles []Article) error {
	if len(articles) == 0 {
		return nil
	}
	if err := sink.Send(ctx, Notices(articles)); err != nil {
		return fmt.Errorf("sending %d notices: %w", len(articles), err)
	}
	return nil
}
