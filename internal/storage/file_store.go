package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/deusflow/newswatch/internal/news"
)

// FileStore keeps one JSON file of rows per day under a directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// dayFile is the on-disk layout of one day's table.
type dayFile struct {
	Header []string   `json:"header"`
	Rows   []news.Row `json:"rows"`
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) path(day string) string {
	return filepath.Join(fs.dir, day+".json")
}

func (fs *FileStore) load(day string) (*dayFile, error) {
	data, err := os.ReadFile(fs.path(day))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fs.path(day), err)
	}
	if len(data) == 0 {
		return &dayFile{Header: news.RowHeader}, nil
	}

	var f dayFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", fs.path(day), err)
	}
	return &f, nil
}

// ReadFingerprints returns the fingerprints stored for day; a missing file is empty.
func (fs *FileStore) ReadFingerprints(ctx context.Context, day string) (map[string]struct{}, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, err := fs.load(day)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{})
	if f == nil {
		return known, nil
	}
	for _, r := range f.Rows {
		known[r.Fingerprint] = struct{}{}
	}
	return known, nil
}

// AppendRows rewrites the day's file with rows added, via a temp file and rename.
func (fs *FileStore) AppendRows(ctx context.Context, day string, rows []news.Row) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, err := fs.load(day)
	if err != nil {
		return err
	}
	if f == nil {
		f = &dayFile{Header: news.RowHeader}
	}
	f.Rows = append(f.Rows, rows...)

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}

	tmp, err := os.CreateTemp(fs.dir, day+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write rows: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fs.path(day)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", fs.path(day), err)
	}
	return nil
}

// Rows returns the stored rows for day in insertion order.
func (fs *FileStore) Rows(day string) ([]news.Row, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, err := fs.load(day)
	if err != nil || f == nil {
		return nil, err
	}
	return f.Rows, nil
}

func (fs *FileStore) Close() error {
	return nil
}
