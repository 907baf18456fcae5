package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/deusflow/newswatch/internal/news"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "news.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()

	known, err := store.ReadFingerprints(ctx, "2026-10-17")
	if err != nil {
		t.Fatalf("ReadFingerprints: %v", err)
	}
	if len(known) != 0 {
		t.Errorf("expected empty set, got %v", known)
	}

	rows := []news.Row{
		{Date: "2026-10-17", Time: "08:00:00", Summary: "치킨 가격", Link: "https://n.example/1", Fingerprint: "h1"},
		{Date: "2026-10-17", Time: "09:00:00", Summary: "피자 할인", Link: "https://n.example/2", Fingerprint: "h2"},
	}
	if err := store.AppendRows(ctx, "2026-10-17", rows); err != nil {
		t.Fatalf("AppendRows: %v", err)
	}
	if err := store.AppendRows(ctx, "2026-10-18", []news.Row{{Fingerprint: "h9"}}); err != nil {
		t.Fatalf("AppendRows: %v", err)
	}

	known, err = store.ReadFingerprints(ctx, "2026-10-17")
	if err != nil {
		t.Fatalf("ReadFingerprints: %v", err)
	}
	if len(known) != 2 {
		t.Errorf("expected 2 fingerprints, got %v", known)
	}
	if _, ok := known["h9"]; ok {
		t.Error("fingerprints from another day leaked in")
	}

	got, err := store.Rows(ctx, "2026-10-17")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(got) != 2 || got[0] != rows[0] || got[1] != rows[1] {
		t.Errorf("unexpected rows %+v", got)
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "news.db")

	store, err := NewSQLiteStore(ctx, path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := store.AppendRows(ctx, "2026-10-17", []news.Row{{Fingerprint: "h1"}}); err != nil {
		t.Fatalf("AppendRows: %v", err)
	}
	store.Close()

	store, err = NewSQLiteStore(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()

	known, err := store.ReadFingerprints(ctx, "2026-10-17")
	if err != nil {
		t.Fatalf("ReadFingerprints: %v", err)
	}
	if _, ok := known["h1"]; !ok {
		t.Error("rows must survive a reopen")
	}
}

func TestRebind(t *testing.T) {
	pg := &SQLStore{driver: "postgres"}
	if got := pg.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Errorf("postgres rebind = %q", got)
	}
	lite := &SQLStore{driver: "sqlite3"}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Errorf("sqlite rebind = %q", got)
	}
}
