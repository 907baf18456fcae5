package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	EntriesFetched       int64
	KeywordFailures      int64
	EntriesExcluded      int64
	EntriesStale         int64
	DuplicatesFiltered   int64
	AlreadyStored        int64
	RowsStored           int64
	NoticesSent          int64
	NotificationFailures int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = New()

func New() *Metrics {
	return &Metrics{IsHealthy: true}
}

// RunCounts is what one run adds to the counters.
type RunCounts struct {
	Fetched         int
	KeywordFailures int
	Excluded        int
	Stale           int
	Duplicates      int
	AlreadyStored   int
	Stored          int
}

func (m *Metrics) AddRun(c RunCounts) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntriesFetched += int64(c.Fetched)
	m.KeywordFailures += int64(c.KeywordFailures)
	m.EntriesExcluded += int64(c.Excluded)
	m.EntriesStale += int64(c.Stale)
	m.DuplicatesFiltered += int64(c.Duplicates)
	m.AlreadyStored += int64(c.AlreadyStored)
	m.RowsStored += int64(c.Stored)
}

func (m *Metrics) AddNoticesSent(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NoticesSent += int64(n)
}

func (m *Metrics) IncrementNotificationFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotificationFailures++
}

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++

	if m.ProcessingCount > 0 {
		m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"entries_fetched":            m.EntriesFetched,
		"keyword_failures":           m.KeywordFailures,
		"entries_excluded":           m.EntriesExcluded,
		"entries_stale":              m.EntriesStale,
		"duplicates_filtered":        m.DuplicatesFiltered,
		"already_stored":             m.AlreadyStored,
		"rows_stored":                m.RowsStored,
		"notices_sent":               m.NoticesSent,
		"notification_failures":      m.NotificationFailures,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}
