package state

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Ning0612/cptrash/internal/domain"
	"github.com/Ning0612/cptrash/internal/report"
)

// Run outcomes stored in history
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// Manager handles run history persistence
type Manager struct {
	db *sql.DB
}

// RunRecord represents a single sweep
type RunRecord struct {
	ID             int64
	Account        string // user@host
	Root           string
	Mode           string // "live" or "dry-run"
	StartTime      time.Time
	EndTime        time.Time
	Status         string // "success", "partial", "failed"
	FoldersScanned int
	ItemsDeleted   int
	Error          string

	// Entries is the deletion log; only filled by SaveRun callers and GetEntries
	Entries []report.Entry
}

// Duration returns how long the sweep took
func (r RunRecord) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Outcome classifies a finished sweep
func Outcome(run *report.Run, err error) string {
	switch {
	case err != nil:
		return StatusFailed
	case run != nil && run.HasFailures():
		return StatusPartial
	default:
		return StatusSuccess
	}
}

// NewRecord builds a history record from a finished sweep
func NewRecord(account, root string, mode domain.Mode, start, end time.Time, run *report.Run, err error) RunRecord {
	record := RunRecord{
		Account:   account,
		Root:      root,
		Mode:      mode.String(),
		StartTime: start,
		EndTime:   end,
		Status:    Outcome(run, err),
	}
	if run != nil {
		record.FoldersScanned = run.FoldersScanned()
		record.ItemsDeleted = run.TotalDeleted()
		record.Entries = run.Entries()
	}
	if err != nil {
		record.Error = err.Error()
	}
	return record
}

// NewManager creates a new state manager
func NewManager(dataDir string) (*Manager, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory cannot be empty")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cptrash.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Limit connection pool to prevent "database is locked" errors
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Enable WAL mode for better concurrency and set busy timeout
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000; PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode and busy timeout: %w", err)
	}

	manager := &Manager{db: db}

	// Initialize schema
	if err := manager.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return manager, nil
}

// initSchema creates the database schema
func (m *Manager) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account TEXT NOT NULL,
		root TEXT NOT NULL,
		mode TEXT NOT NULL,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NOT NULL,
		status TEXT NOT NULL,
		folders_scanned INTEGER DEFAULT 0,
		items_deleted INTEGER DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS run_entries (
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		path TEXT NOT NULL,
		items INTEGER NOT NULL,
		status TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_account_time ON runs(account, start_time DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
	`

	_, err := m.db.Exec(schema)
	return err
}

// SaveRun records a sweep and its deletion log, returning the new run id
func (m *Manager) SaveRun(record RunRecord) (int64, error) {
	// Validate status
	if record.Status != StatusSuccess && record.Status != StatusFailed && record.Status != StatusPartial {
		return 0, fmt.Errorf("invalid status: %s (must be 'success', 'failed', or 'partial')", record.Status)
	}
	for _, e := range record.Entries {
		if !e.Status.IsValid() {
			return 0, fmt.Errorf("invalid entry status %q for %s", e.Status, e.Path)
		}
	}

	tx, err := m.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO runs (account, root, mode, start_time, end_time, status, folders_scanned, items_deleted, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.Exec(query,
		record.Account,
		record.Root,
		record.Mode,
		record.StartTime,
		record.EndTime,
		record.Status,
		record.FoldersScanned,
		record.ItemsDeleted,
		record.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	for i, e := range record.Entries {
		if _, err := tx.Exec(
			`INSERT INTO run_entries (run_id, seq, path, items, status) VALUES (?, ?, ?, ?, ?)`,
			id, i, e.Path, e.Items, string(e.Status),
		); err != nil {
			return 0, fmt.Errorf("failed to save run entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run record: %w", err)
	}

	return id, nil
}

const selectRuns = `
	SELECT id, account, root, mode, start_time, end_time, status, folders_scanned, items_deleted, error
	FROM runs
`

// GetHistory retrieves run history for an account, newest first
func (m *Manager) GetHistory(account string, limit int) ([]RunRecord, error) {
	// Validate limit
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	rows, err := m.db.Query(selectRuns+`WHERE account = ? ORDER BY start_time DESC LIMIT ?`, account, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	return scanRuns(rows)
}

// GetAllHistory retrieves run history for all accounts, newest first
func (m *Manager) GetAllHistory(limit int) ([]RunRecord, error) {
	// Validate limit
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	rows, err := m.db.Query(selectRuns+`ORDER BY start_time DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query all history: %w", err)
	}
	return scanRuns(rows)
}

// GetLastSuccess retrieves the last successful live sweep of an account
// Returns nil when there is none
func (m *Manager) GetLastSuccess(account string) (*RunRecord, error) {
	row := m.db.QueryRow(selectRuns+`WHERE account = ? AND status = ? AND mode = ? ORDER BY start_time DESC LIMIT 1`,
		account, StatusSuccess, domain.ModeLive.String())

	record, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // No successful run found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last success: %w", err)
	}

	return &record, nil
}

// GetEntries loads the deletion log of a run in its original order
func (m *Manager) GetEntries(runID int64) ([]report.Entry, error) {
	rows, err := m.db.Query(`SELECT path, items, status FROM run_entries WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run entries: %w", err)
	}
	defer rows.Close()

	var entries []report.Entry
	for rows.Next() {
		var e report.Entry
		var status string
		if err := rows.Scan(&e.Path, &e.Items, &status); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Status = domain.Status(status)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunRecord, error) {
	var record RunRecord
	err := s.Scan(
		&record.ID,
		&record.Account,
		&record.Root,
		&record.Mode,
		&record.StartTime,
		&record.EndTime,
		&record.Status,
		&record.FoldersScanned,
		&record.ItemsDeleted,
		&record.Error,
	)
	return record, err
}

func scanRuns(rows *sql.Rows) ([]RunRecord, error) {
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
