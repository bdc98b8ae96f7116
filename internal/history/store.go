// Package history provides SQLite-backed persistence for assembly run
// results, usable as a coordinator history sink.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/swarmlab/convene/pkg/models"
)

// Store persists assembly results to an SQLite database.
type Store struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// DefaultDBPath returns the default history database path under the
// user's data directory.
func DefaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "convene", "history.db")
}

// Open opens (or creates) the history database at path and applies the
// schema. Parent directories are created as needed. WAL mode is enabled
// for concurrent reads.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{conn: conn, path: path}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id TEXT NOT NULL,
	assembly_name TEXT NOT NULL,
	status TEXT NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	error_message TEXT,
	outputs TEXT,
	contributions TEXT,
	metadata TEXT,
	started_at DATETIME NOT NULL,
	completed_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_task_id ON runs(task_id);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
`

// Path returns the path to the database file.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Append records one finished run. It satisfies the coordinator's
// history sink contract.
func (s *Store) Append(ctx context.Context, result *models.AssemblyResult) error {
	outputs, err := json.Marshal(result.Outputs)
	if err != nil {
		return fmt.Errorf("marshal outputs: %w", err)
	}
	contributions, err := json.Marshal(result.Contributions)
	if err != nil {
		return fmt.Errorf("marshal contributions: %w", err)
	}
	metadata, err := json.Marshal(result.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO runs (task_id, assembly_name, status, duration_ms, error_message, outputs, contributions, metadata, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.TaskID,
		result.AssemblyName,
		string(result.Status),
		result.Duration.Milliseconds(),
		result.ErrorMessage,
		string(outputs),
		string(contributions),
		string(metadata),
		result.StartedAt.UTC(),
		result.CompletedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*models.AssemblyResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT task_id, assembly_name, status, duration_ms, error_message, outputs, contributions, metadata, started_at, completed_at
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var results []*models.AssemblyResult
	for rows.Next() {
		result, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// ByTask returns all recorded runs for one task id, oldest first.
func (s *Store) ByTask(ctx context.Context, taskID string) ([]*models.AssemblyResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT task_id, assembly_name, status, duration_ms, error_message, outputs, contributions, metadata, started_at, completed_at
		FROM runs WHERE task_id = ? ORDER BY id ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var results []*models.AssemblyResult
	for rows.Next() {
		result, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// Count returns the total number of recorded runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	row := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs")
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

func scanRun(rows *sql.Rows) (*models.AssemblyResult, error) {
	var (
		result        models.AssemblyResult
		status        string
		durationMS    int64
		errorMessage  sql.NullString
		outputs       sql.NullString
		contributions sql.NullString
		metadata      sql.NullString
		startedAt     time.Time
		completedAt   time.Time
	)

	if err := rows.Scan(&result.TaskID, &result.AssemblyName, &status, &durationMS,
		&errorMessage, &outputs, &contributions, &metadata, &startedAt, &completedAt); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	result.Status = models.ExecutionStatus(status)
	result.Duration = time.Duration(durationMS) * time.Millisecond
	result.ErrorMessage = errorMessage.String
	result.StartedAt = startedAt
	result.CompletedAt = completedAt

	if outputs.Valid && outputs.String != "" {
		if err := json.Unmarshal([]byte(outputs.String), &result.Outputs); err != nil {
			return nil, fmt.Errorf("unmarshal outputs: %w", err)
		}
	}
	if contributions.Valid && contributions.String != "" {
		if err := json.Unmarshal([]byte(contributions.String), &result.Contributions); err != nil {
			return nil, fmt.Errorf("unmarshal contributions: %w", err)
		}
	}
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &result.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}

	return &result, nil
}
