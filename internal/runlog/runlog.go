// Package runlog records training runs and their per-step losses in SQLite.
package runlog

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when a run id is not in the log.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded training run.
type Run struct {
	ID        string
	Name      string
	StartedAt time.Time
	Config    map[string]any
	NumSteps  int64
	FinalLoss sql.NullFloat64 // Loss at the highest recorded step, if any
}

// Step is the loss recorded for one optimization step.
type Step struct {
	Step int64
	Loss float64
}

// Store is a run log backed by a SQLite database file.
// Safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the run log at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create run log directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	// One writer at a time; SQLite serializes anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply run log schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// StartRun records a new run and returns its id (a UUIDv7, so ids sort by
// start time).
func (s *Store) StartRun(ctx context.Context, name string, config map[string]any) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	if config == nil {
		config = map[string]any{}
	}
	cfg, err := json.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("encode run config: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, name, started_at, config) VALUES (?, ?, ?, ?)`,
		id.String(), name, time.Now().UTC().Format(timeLayout), string(cfg))
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id.String(), nil
}

// RecordStep stores the loss of one step. Recording the same step twice
// keeps the latest loss.
func (s *Store) RecordStep(ctx context.Context, runID string, step int64, loss float64) error {
	if err := s.requireRun(ctx, runID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO steps (run_id, step, loss) VALUES (?, ?, ?)
		 ON CONFLICT (run_id, step) DO UPDATE SET loss = excluded.loss`,
		runID, step, loss)
	if err != nil {
		return fmt.Errorf("insert step %d: %w", step, err)
	}
	return nil
}

// Runs lists every run, oldest first, with its step count and final loss.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.started_at, r.config,
		       (SELECT COUNT(*) FROM steps s WHERE s.run_id = r.id),
		       (SELECT s.loss FROM steps s WHERE s.run_id = r.id ORDER BY s.step DESC LIMIT 1)
		FROM runs r
		ORDER BY r.started_at, r.id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, cfg string
		if err := rows.Scan(&r.ID, &r.Name, &started, &cfg, &r.NumSteps, &r.FinalLoss); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("run %s: parse start time: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(cfg), &r.Config); err != nil {
			return nil, fmt.Errorf("run %s: decode config: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Steps returns the recorded steps of a run in step order.
func (s *Store) Steps(ctx context.Context, runID string) ([]Step, error) {
	if err := s.requireRun(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT step, loss FROM steps WHERE run_id = ? ORDER BY step`, runID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var st Step
		if err := rows.Scan(&st.Step, &st.Loss); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

// requireRun returns ErrRunNotFound unless runID exists.
func (s *Store) requireRun(ctx context.Context, runID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return fmt.Errorf("look up run %s: %w", runID, err)
	}
	return nil
}
