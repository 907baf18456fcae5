package news

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrStoreRead means the persisted fingerprints could not be read; nothing was written.
	ErrStoreRead = errors.New("reading persisted fingerprints")
	// ErrStoreWrite means appending new rows failed; some rows may have been written.
	ErrStoreWrite = errors.New("appending rows")
)

// RowStore is the day-partitioned table of previously stored articles.
type RowStore interface {
	// ReadFingerprints returns every fingerprint stored for day. A day without a
	// table yields an empty set.
	ReadFingerprints(ctx context.Context, day string) (map[string]struct{}, error)
	// AppendRows appends rows in order, creating the day's table with RowHeader first
	// if needed.
	AppendRows(ctx context.Context, day string, rows []Row) error
}

// Partition splits articles by whether their fingerprint is in known. Both results
// keep input order.
func Partition(articles []Article, known map[string]struct{}) (seen, fresh []Article) {
	for _, a := range articles {
		if _, ok := known[a.Fingerprint]; ok {
			seen = append(seen, a)
		} else {
			fresh = append(fresh, a)
		}
	}
	return seen, fresh
}

// Rows projects articles to stored rows.
func Rows(articles []Article) []Row {
	rows := make([]Row, len(articles))
	for i, a := range articles {
		rows[i] = a.Row()
	}
	return rows
}

// Reconcile reads the day's fingerprints once, appends the unseen articles in one
// batch and returns them. A read failure aborts before any write.
func Reconcile(ctx context.Context, store RowStore, day string, articles []Article) ([]Article, error) {
	known, err := store.ReadFingerprints(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %w", ErrStoreRead, day, err)
	}

	_, fresh := Partition(articles, known)
	if len(fresh) == 0 {
		return nil, nil
	}

	if err := store.AppendRows(ctx, day, Rows(fresh)); err != nil {
		return nil, fmt.Errorf("%w for %s: %w", ErrStoreWrite, day, err)
	}
	return fresh, nil
}
