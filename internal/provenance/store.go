// Package provenance persists per-run wheel build records: which requirement
// produced which wheel, its content hash and size, and the outcome. Records
// answer "where did this cached wheel come from" after the run is gone.
package provenance

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Outcome is the terminal state of one requirement in a run.
type Outcome string

const (
	OutcomeBuilt  Outcome = "built"
	OutcomeFailed Outcome = "failed"
)

// Record is one wheel build provenance entry.
type Record struct {
	ID          int64
	RunID       string
	Requirement string
	Wheel       string
	SHA256      string
	Size        int64
	Outcome     Outcome
	CreatedAt   time.Time
}

// Store persists build records in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore opens (or creates) a provenance database.
// Use ":memory:" for an in-memory database, or a file path for persistence.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open provenance database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		requirement TEXT NOT NULL,
		wheel TEXT,
		sha256 TEXT,
		size INTEGER,
		outcome TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_run_id ON builds(run_id);
	CREATE INDEX IF NOT EXISTS idx_requirement ON builds(requirement);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds a build record.
func (s *Store) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (run_id, requirement, wheel, sha256, size, outcome, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.RunID, rec.Requirement, rec.Wheel, rec.SHA256, rec.Size, string(rec.Outcome), createdAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

// ByRun retrieves all records for a run, in insertion order.
func (s *Store) ByRun(ctx context.Context, runID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, run_id, requirement, wheel, sha256, size, outcome, created_at FROM builds WHERE run_id = ? ORDER BY id",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query build records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ByRequirement retrieves all records for a requirement name across runs.
func (s *Store) ByRequirement(ctx context.Context, name string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, run_id, requirement, wheel, sha256, size, outcome, created_at FROM builds WHERE requirement = ? ORDER BY id",
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("query build records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		var outcome string
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Requirement, &rec.Wheel, &rec.SHA256, &rec.Size, &outcome, &createdAt); err != nil {
			return nil, fmt.Errorf("scan build record: %w", err)
		}
		rec.Outcome = Outcome(outcome)
		rec.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
