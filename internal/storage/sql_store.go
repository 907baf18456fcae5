package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/deusflow/newswatch/internal/logger"
	"github.com/deusflow/newswatch/internal/news"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS news_rows (
		id SERIAL PRIMARY KEY,
		day VARCHAR(10) NOT NULL,
		date VARCHAR(10) NOT NULL,
		time VARCHAR(8) NOT NULL,
		summary TEXT NOT NULL,
		link TEXT NOT NULL,
		fingerprint VARCHAR(64) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_news_rows_day_fingerprint ON news_rows(day, fingerprint);
`

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS news_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		day TEXT NOT NULL,
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		summary TEXT NOT NULL,
		link TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_news_rows_day_fingerprint ON news_rows(day, fingerprint);
`

// SQLStore keeps every day's rows in a single news_rows table partitioned by a day column.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// NewPostgresStore connects with lib/pq and creates the schema if missing.
func NewPostgresStore(ctx context.Context, connectionString string) (*SQLStore, error) {
	if connectionString == "" {
		return nil, fmt.Errorf("postgres connection string is required")
	}
	return openSQL(ctx, "postgres", connectionString, postgresSchema)
}

// NewSQLiteStore opens (or creates) a SQLite database file.
func NewSQLiteStore(ctx context.Context, path string) (*SQLStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	return openSQL(ctx, "sqlite3", path, sqliteSchema)
}

func openSQL(ctx context.Context, driver, dsn, schema string) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Debug("sql store ready", "driver", driver)
	return &SQLStore{db: db, driver: driver}, nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) ReadFingerprints(ctx context.Context, day string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT fingerprint FROM news_rows WHERE day = ?`), day)
	if err != nil {
		return nil, fmt.Errorf("failed to query fingerprints: %w", err)
	}
	defer rows.Close()

	known := make(map[string]struct{})
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, fmt.Errorf("failed to scan fingerprint: %w", err)
		}
		known[fp] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read fingerprints: %w", err)
	}
	return known, nil
}

// AppendRows inserts rows in one transaction.
func (s *SQLStore) AppendRows(ctx context.Context, day string, rows []news.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO news_rows (day, date, time, summary, link, fingerprint)
		VALUES (?, ?, ?, ?, ?, ?)
	`))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, day, r.Date, r.Time, r.Summary, r.Link, r.Fingerprint); err != nil {
			return fmt.Errorf("failed to insert row %s: %w", r.Fingerprint, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rows: %w", err)
	}
	return nil
}

// Rows returns the stored rows for day in insertion order.
func (s *SQLStore) Rows(ctx context.Context, day string) ([]news.Row, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT date, time, summary, link, fingerprint
		FROM news_rows
		WHERE day = ?
		ORDER BY id
	`), day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []news.Row
	for rows.Next() {
		var r news.Row
		if err := rows.Scan(&r.Date, &r.Time, &r.Summary, &r.Link, &r.Fingerprint); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
