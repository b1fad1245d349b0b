package telemetry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"photobatch/internal/logging"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS usage_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	completed_at TIMESTAMP NOT NULL,
	files INTEGER NOT NULL,
	succeeded INTEGER NOT NULL,
	failed INTEGER NOT NULL,
	format_counts TEXT NOT NULL DEFAULT '{}',
	archive_bytes INTEGER NOT NULL,
	resize_ms INTEGER NOT NULL,
	encode_ms INTEGER NOT NULL,
	archive_ms INTEGER NOT NULL,
	session_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_usage_events_completed_at ON usage_events(completed_at);
`

// SQLiteSink records usage events to a local SQLite database. Only
// aggregate counters are stored; image bytes never persist beyond the
// session.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (creating if needed) the events database at path.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open telemetry db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize telemetry schema: %w", err)
	}

	logging.Info("Telemetry database ready: %s", path)
	return &SQLiteSink{db: db}, nil
}

// Record implements Sink.
func (s *SQLiteSink) Record(ctx context.Context, ev Event) error {
	formats, err := json.Marshal(ev.FormatCounts)
	if err != nil {
		return fmt.Errorf("marshal format counts: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO usage_events
		 (completed_at, files, succeeded, failed, format_counts, archive_bytes,
		  resize_ms, encode_ms, archive_ms, session_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.CompletedAt, ev.Files, ev.Succeeded, ev.Failed, string(formats),
		ev.ArchiveBytes,
		ev.ResizeDuration.Milliseconds(), ev.EncodeDuration.Milliseconds(),
		ev.ArchiveDuration.Milliseconds(), ev.SessionDuration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert usage event: %w", err)
	}
	return nil
}

// Count returns the number of recorded events.
func (s *SQLiteSink) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM usage_events`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Close implements Sink.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
