package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"secureshred/internal/shred"
)

// Journal - журнал аудита уничтоженных записей в SQLite
type Journal struct {
	db *sql.DB
}

// Record - одна запись журнала
type Record struct {
	ID           int64
	RunID        string
	Timestamp    time.Time
	Path         string
	EntryType    string
	State        string
	FailedAt     string
	Reason       string
	ErrorMessage string
	Size         int64
	Passes       int
	BytesWritten int64
	RenamedTo    string
	DurationMs   int64
}

// Open открывает (или создаёт) журнал по пути dbPath
func Open(dbPath string) (*Journal, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory %s: %w", dir, err)
		}
	}

	// _loc=auto включает разбор DATETIME
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("failed to initialize journal (check permissions on %s): %w", dbPath, err)
	}
	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	j := &Journal{db: db}
	if err = j.initSchema(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Journal) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS shred_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		path TEXT NOT NULL,
		entry_type TEXT NOT NULL,
		state TEXT NOT NULL,
		failed_at TEXT,
		reason TEXT,
		error_message TEXT,
		size INTEGER NOT NULL,
		passes INTEGER NOT NULL,
		bytes_written INTEGER NOT NULL,
		renamed_to TEXT,
		duration_ms INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_run_id ON shred_entries(run_id);
	CREATE INDEX IF NOT EXISTS idx_timestamp ON shred_entries(timestamp);
	CREATE INDEX IF NOT EXISTS idx_reason ON shred_entries(reason);

	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`
	_, err := j.db.Exec(schema)
	return err
}

// RecordOutcome записывает каждый узел дерева одной транзакцией
func (j *Journal) RecordOutcome(runID string, root *shred.Outcome) error {
	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO shred_entries (
			run_id, timestamp, path, entry_type, state, failed_at, reason,
			error_message, size, passes, bytes_written, renamed_to, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	var insertErr error
	root.Walk(func(o *shred.Outcome) {
		if insertErr != nil {
			return
		}
		var bytesWritten int64
		for _, p := range o.Passes {
			bytesWritten += p.BytesWritten
		}
		var failedAt, errMsg sql.NullString
		if o.Failed() {
			failedAt = sql.NullString{String: string(o.FailedAt), Valid: true}
		}
		if o.Err != nil {
			errMsg = sql.NullString{String: o.Err.Error(), Valid: true}
		}
		_, insertErr = stmt.Exec(
			runID, now, o.Path, string(o.Type), string(o.State), failedAt,
			nullIfEmpty(string(o.Reason)), errMsg, o.Size, len(o.Passes),
			bytesWritten, nullIfEmpty(o.RenamedTo), o.Duration.Milliseconds(),
		)
	})
	if insertErr != nil {
		return fmt.Errorf("failed to record %s: %w", root.Path, insertErr)
	}
	return tx.Commit()
}

// Entries возвращает записи запуска в порядке вставки
func (j *Journal) Entries(runID string) ([]Record, error) {
	return j.query(`
		SELECT id, run_id, timestamp, path, entry_type, state, failed_at, reason,
		       error_message, size, passes, bytes_written, renamed_to, duration_ms
		FROM shred_entries WHERE run_id = ? ORDER BY id`, runID)
}

// Runs возвращает идентификаторы запусков в порядке записи
func (j *Journal) Runs() ([]string, error) {
	rows, err := j.db.Query(`
		SELECT run_id FROM shred_entries
		GROUP BY run_id ORDER BY MIN(id)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		runs = append(runs, id)
	}
	return runs, rows.Err()
}

// CountByReason возвращает число отказов запуска по видам
func (j *Journal) CountByReason(runID string) (map[string]int, error) {
	rows, err := j.db.Query(`
		SELECT reason, COUNT(*) FROM shred_entries
		WHERE run_id = ? AND reason IS NOT NULL
		GROUP BY reason`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var reason string
		var n int
		if err := rows.Scan(&reason, &n); err != nil {
			return nil, err
		}
		counts[reason] = n
	}
	return counts, rows.Err()
}

// DeleteOldRecords удаляет записи старше olderThanDays дней
func (j *Journal) DeleteOldRecords(olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	result, err := j.db.Exec(`DELETE FROM shred_entries WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) query(query string, args ...interface{}) ([]Record, error) {
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var failedAt, reason, errMsg, renamedTo sql.NullString
		if err := rows.Scan(
			&r.ID, &r.RunID, &r.Timestamp, &r.Path, &r.EntryType, &r.State,
			&failedAt, &reason, &errMsg, &r.Size, &r.Passes, &r.BytesWritten,
			&renamedTo, &r.DurationMs,
		); err != nil {
			return nil, err
		}
		r.FailedAt = failedAt.String
		r.Reason = reason.String
		r.ErrorMessage = errMsg.String
		r.RenamedTo = renamedTo.String
		records = append(records, r)
	}
	return records, rows.Err()
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
