package storage

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/api/option"

	"github.com/deusflow/newswatch/internal/news"
)

const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendFile     = "file"
)

// Store is a row store that holds resources.
type Store interface {
	news.RowStore
	io.Closer
}

// Options selects and configures a backend.
type Options struct {
	Backend string

	// sheets
	SpreadsheetID   string
	CredentialsJSON []byte
	ClientOptions   []option.ClientOption

	// postgres
	DatabaseURL string

	// sqlite
	SQLitePath string

	// file
	Dir string
}

// Open connects to the configured backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		store Store
		err   error
	)

	switch opts.Backend {
	case BackendSheets, "":
		clientOpts := opts.ClientOptions
		if len(opts.CredentialsJSON) > 0 {
			clientOpts = append([]option.ClientOption{option.WithCredentialsJSON(opts.CredentialsJSON)}, clientOpts...)
		}
		store, err = unwrap(NewSheetsStore(ctx, opts.SpreadsheetID, clientOpts...))
	case BackendPostgres:
		store, err = unwrap(NewPostgresStore(ctx, opts.DatabaseURL))
	case BackendSQLite:
		store, err = unwrap(NewSQLiteStore(ctx, opts.SQLitePath))
	case BackendFile:
		store, err = unwrap(NewFileStore(opts.Dir))
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// unwrap keeps a typed nil pointer from turning into a non-nil Store.
func unwrap[S Store](s S, err error) (Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
