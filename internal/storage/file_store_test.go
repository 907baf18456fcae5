package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/deusflow/newswatch/internal/news"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	known, err := store.ReadFingerprints(ctx, "2026-10-17")
	if err != nil {
		t.Fatalf("ReadFingerprints on missing day: %v", err)
	}
	if len(known) != 0 {
		t.Errorf("expected empty set, got %v", known)
	}
	if _, err := os.Stat(filepath.Join(dir, "2026-10-17.json")); !os.IsNotExist(err) {
		t.Error("reading must not create the day's file")
	}

	first := []news.Row{{Date: "2026-10-17", Time: "08:00:00", Summary: "a", Link: "https://n.example/a", Fingerprint: "h1"}}
	second := []news.Row{
		{Date: "2026-10-17", Time: "09:00:00", Summary: "b", Link: "https://n.example/b", Fingerprint: "h2"},
		{Date: "2026-10-16", Time: "23:00:00", Summary: "c", Link: "https://n.example/c", Fingerprint: "h3"},
	}
	if err := store.AppendRows(ctx, "2026-10-17", first); err != nil {
		t.Fatalf("AppendRows: %v", err)
	}
	if err := store.AppendRows(ctx, "2026-10-17", second); err != nil {
		t.Fatalf("AppendRows: %v", err)
	}

	rows, err := store.Rows("2026-10-17")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 3 || rows[0].Fingerprint != "h1" || rows[2].Fingerprint != "h3" {
		t.Errorf("unexpected rows %+v", rows)
	}

	known, err = store.ReadFingerprints(ctx, "2026-10-17")
	if err != nil {
		t.Fatalf("ReadFingerprints: %v", err)
	}
	if len(known) != 3 {
		t.Errorf("expected 3 fingerprints, got %v", known)
	}

	other, err := store.ReadFingerprints(ctx, "2026-10-18")
	if err != nil || len(other) != 0 {
		t.Errorf("days must be isolated, got %v, %v", other, err)
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "2026-10-17.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := store.ReadFingerprints(context.Background(), "2026-10-17"); err == nil {
		t.Error("expected error for corrupt file")
	}
}

func TestNewFileStoreRequiresDir(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Error("expected error for empty dir")
	}
}
