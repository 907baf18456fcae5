package storage

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/deusflow/newswatch/internal/logger"
	"github.com/deusflow/newswatch/internal/news"
)

// SheetsStore keeps one worksheet per day, named YYYY-MM-DD, in a Google spreadsheet.
// The first row of each worksheet is the header; columns are found by header name.
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewSheetsStore creates a Sheets API client. Credentials come from opts
// (option.WithCredentialsJSON in production).
func NewSheetsStore(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*SheetsStore, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}

	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}, opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets client: %w", err)
	}
	return &SheetsStore{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func (s *SheetsStore) sheetExists(ctx context.Context, title string) (bool, error) {
	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return false, fmt.Errorf("failed to get spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func headerIndex(header []interface{}, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(cellString(h)), name) {
			return i
		}
	}
	return -1
}

// ReadFingerprints reads the fingerprint column of the day's worksheet. A missing
// worksheet is an empty set.
func (s *SheetsStore) ReadFingerprints(ctx context.Context, day string) (map[string]struct{}, error) {
	known := make(map[string]struct{})

	exists, err := s.sheetExists(ctx, day)
	if err != nil {
		return nil, err
	}
	if !exists {
		return known, nil
	}

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, quoteSheet(day)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %s: %w", day, err)
	}
	if len(resp.Values) == 0 {
		return known, nil
	}

	col := headerIndex(resp.Values[0], "fingerprint")
	if col < 0 {
		return nil, fmt.Errorf("worksheet %s has no fingerprint column", day)
	}
	for _, row := range resp.Values[1:] {
		if col >= len(row) {
			continue
		}
		if fp := cellString(row[col]); fp != "" {
			known[fp] = struct{}{}
		}
	}
	return known, nil
}

// ensureSheet creates the day's worksheet with the header row if needed and returns
// the header in effect.
func (s *SheetsStore) ensureSheet(ctx context.Context, day string) ([]interface{}, error) {
	exists, err := s.sheetExists(ctx, day)
	if err != nil {
		return nil, err
	}

	if exists {
		resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, quoteSheet(day)+"!1:1").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to read header of %s: %w", day, err)
		}
		if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
			return resp.Values[0], nil
		}
	} else {
		req := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: day},
				},
			}},
		}
		if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return nil, fmt.Errorf("failed to add worksheet %s: %w", day, err)
		}
		logger.Info("worksheet created", "day", day)
	}

	header := make([]interface{}, len(news.RowHeader))
	for i, h := range news.RowHeader {
		header[i] = h
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{header}}
	if _, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, quoteSheet(day)+"!A1", vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do(); err != nil {
		return nil, fmt.Errorf("failed to write header of %s: %w", day, err)
	}
	return header, nil
}

func rowField(r news.Row, name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "date":
		return r.Date
	case "time":
		return r.Time
	case "summary":
		return r.Summary
	case "link":
		return r.Link
	case "fingerprint":
		return r.Fingerprint
	}
	return ""
}

// AppendRows appends rows after the last row of the day's worksheet in one request.
func (s *SheetsStore) AppendRows(ctx context.Context, day string, rows []news.Row) error {
	header, err := s.ensureSheet(ctx, day)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	values := make([][]interface{}, len(rows))
	for i, r := range rows {
		line := make([]interface{}, len(header))
		for j, h := range header {
			line[j] = rowField(r, cellString(h))
		}
		values[i] = line
	}

	_, err = s.svc.Spreadsheets.Values.Append(s.spreadsheetID, quoteSheet(day)+"!A1", &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append %d rows to %s: %w", len(rows), day, err)
	}
	return nil
}

func (s *SheetsStore) Close() error {
	return nil
}
