package recorder

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists fetched days to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logrus.WithField("path", dbPath).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS day_records (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			day         TEXT NOT NULL,
			fields      TEXT NOT NULL,
			is_error    INTEGER NOT NULL DEFAULT 0,
			duration_ms REAL,
			fetched_at  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_day_records_day ON day_records(day)`,
		`CREATE INDEX IF NOT EXISTS idx_day_records_run ON day_records(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordDay(entry *DayEntry) error {
	fields, err := entry.Record.FieldsJSON()
	if err != nil {
		return fmt.Errorf("encode fields for %s: %w", entry.Record.Date(), err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.Exec(`INSERT INTO day_records
		(run_id, day, fields, is_error, duration_ms, fetched_at)
		VALUES (?,?,?,?,?,?)`,
		entry.RunID, entry.Record.Date(), fields, entry.Record.IsError(),
		float64(entry.Duration.Microseconds())/1000, entry.FetchedAt.Unix(),
	)
	return err
}

// CountDays returns how many rows a run has recorded.
func (r *SQLiteRecorder) CountDays(runID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM day_records WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	logrus.Info("closing sqlite recorder")
	return r.db.Close()
}
