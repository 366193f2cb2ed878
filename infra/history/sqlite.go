// Package history persists allocation runs in SQLite so the run history
// survives restarts.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	coremetrics "github.com/kilianp07/wasteflow/core/metrics"
	"github.com/kilianp07/wasteflow/core/runstore"
)

// SQLiteStore implements runstore.Store on a SQLite database. Each run is
// stored as one JSON document.
type SQLiteStore struct {
	db   *sql.DB
	keep int
}

var _ runstore.Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the database at path. keep bounds the
// number of retained runs, oldest finished first; zero keeps everything.
func NewSQLiteStore(path string, keep int) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	schema := `CREATE TABLE IF NOT EXISTS allocation_runs (
        run_id TEXT PRIMARY KEY,
        strategy TEXT NOT NULL,
        finished INTEGER NOT NULL,
        payload TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS allocation_runs_finished ON allocation_runs (finished);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db, keep: keep}, nil
}

// RecordRun inserts or replaces ev and prunes old runs.
func (s *SQLiteStore) RecordRun(ev coremetrics.RunEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	ctx := context.Background()
	_, err = s.db.ExecContext(ctx, `INSERT INTO allocation_runs (run_id, strategy, finished, payload)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(run_id) DO UPDATE SET
            strategy = excluded.strategy,
            finished = excluded.finished,
            payload = excluded.payload`,
		ev.RunID, ev.Strategy, ev.Finished.UnixNano(), string(b))
	if err != nil {
		return fmt.Errorf("insert run %s: %w", ev.RunID, err)
	}
	if s.keep > 0 {
		_, err = s.db.ExecContext(ctx, `DELETE FROM allocation_runs WHERE run_id NOT IN (
            SELECT run_id FROM allocation_runs ORDER BY finished DESC, run_id LIMIT ?)`, s.keep)
		if err != nil {
			return fmt.Errorf("prune runs: %w", err)
		}
	}
	return nil
}

// Get returns one run or runstore.ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, runID string) (coremetrics.RunEvent, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM allocation_runs WHERE run_id = ?`, runID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return coremetrics.RunEvent{}, runstore.ErrNotFound
	}
	if err != nil {
		return coremetrics.RunEvent{}, err
	}
	return decode(data)
}

// List returns matching runs, most recently finished first.
func (s *SQLiteStore) List(ctx context.Context, f runstore.Filter) ([]coremetrics.RunEvent, error) {
	var args []any
	query := `SELECT payload FROM allocation_runs WHERE 1=1`
	if f.Strategy != "" {
		query += ` AND strategy = ?`
		args = append(args, f.Strategy)
	}
	if !f.Since.IsZero() {
		query += ` AND finished >= ?`
		args = append(args, f.Since.UnixNano())
	}
	query += ` ORDER BY finished DESC, run_id`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	res := []coremetrics.RunEvent{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		ev, err := decode(data)
		if err != nil {
			return nil, err
		}
		res = append(res, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func decode(data string) (coremetrics.RunEvent, error) {
	var ev coremetrics.RunEvent
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		return coremetrics.RunEvent{}, fmt.Errorf("unmarshal run: %w", err)
	}
	return ev, nil
}
