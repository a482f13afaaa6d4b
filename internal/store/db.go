// Package store keeps the ledger of report runs in SQLite: each run's
// status, the stages it went through, the files it wrote and its errors.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"continuum-report/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		config TEXT,
		status TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`,
	`CREATE TABLE IF NOT EXISTS run_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		error_message TEXT,
		created_at DATETIME
	);`,
	`CREATE TABLE IF NOT EXISTS run_artifacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		kind TEXT,
		dataset TEXT,
		path TEXT,
		title TEXT,
		size_bytes INTEGER,
		created_at DATETIME
	);`,
	`CREATE TABLE IF NOT EXISTS stage_progress (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		stage TEXT,
		dataset TEXT,
		status TEXT,
		start_time DATETIME,
		end_time DATETIME,
		items INTEGER
	);`,
}

// Store is a SQLite-backed run ledger. It implements pipeline.Recorder.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger at path. ":memory:" gives a
// private in-memory ledger.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger %s: %w", path, err)
	}
	// SQLite allows one writer; a single connection also keeps an in-memory
	// database alive and shared.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create ledger schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ------------------- Runs -------------------

// SaveRun stores a new pending run with a JSON snapshot of its config.
func (s *Store) SaveRun(runID string, cfg any) error {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = s.db.Exec(`INSERT INTO runs (id, config, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		runID, string(cfgJSON), model.StatusPending, now, now)
	return err
}

// UpdateRunStatus updates a run's status.
func (s *Store) UpdateRunStatus(runID, status string) error {
	now := time.Now().UTC()
	res, err := s.db.Exec(`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`, status, now, runID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// ListRuns returns every run, newest first, without config snapshots.
func (s *Store) ListRuns() ([]model.Run, error) {
	rows, err := s.db.Query(`SELECT id, status, created_at, updated_at FROM runs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []model.Run{}
	for rows.Next() {
		var r model.Run
		if err := rows.Scan(&r.ID, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun fetches one run including its config snapshot.
func (s *Store) GetRun(runID string) (*model.Run, error) {
	r := model.Run{ID: runID}
	err := s.db.QueryRow(`SELECT config, status, created_at, updated_at FROM runs WHERE id = ?`, runID).
		Scan(&r.Config, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ------------------- Errors -------------------

// SaveRunError records an error for a run.
func (s *Store) SaveRunError(runID string, err error) error {
	if err == nil {
		return nil
	}
	now := time.Now().UTC()
	_, e := s.db.Exec(`INSERT INTO run_errors (run_id, error_message, created_at) VALUES (?, ?, ?)`,
		runID, err.Error(), now)
	return e
}

// ListRunErrors returns a run's errors in the order they were recorded.
func (s *Store) ListRunErrors(runID string) ([]model.RunError, error) {
	rows, err := s.db.Query(`SELECT error_message, created_at FROM run_errors WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	errs := []model.RunError{}
	for rows.Next() {
		var e model.RunError
		if err := rows.Scan(&e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		errs = append(errs, e)
	}
	return errs, rows.Err()
}

// ------------------- Artifacts -------------------

// SaveArtifact records a file written by a run.
func (s *Store) SaveArtifact(runID string, a model.Artifact) error {
	_, err := s.db.Exec(`INSERT INTO run_artifacts (run_id, kind, dataset, path, title, size_bytes, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, a.Kind, a.Dataset, a.Path, a.Title, a.SizeBytes, a.CreatedAt.UTC())
	return err
}

// ListArtifacts returns the files a run wrote, in write order.
func (s *Store) ListArtifacts(runID string) ([]model.Artifact, error) {
	rows, err := s.db.Query(`SELECT kind, dataset, path, title, size_bytes, created_at FROM run_artifacts WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	artifacts := []model.Artifact{}
	for rows.Next() {
		var a model.Artifact
		if err := rows.Scan(&a.Kind, &a.Dataset, &a.Path, &a.Title, &a.SizeBytes, &a.CreatedAt); err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

// ------------------- Stage Progress -------------------

// SaveStageProgress records one finished stage.
func (s *Store) SaveStageProgress(runID string, p model.StageProgress) error {
	var end any
	if p.EndTime != nil {
		end = p.EndTime.UTC()
	}
	_, err := s.db.Exec(`INSERT INTO stage_progress (run_id, stage, dataset, status, start_time, end_time, items) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, p.Stage, p.Dataset, p.Status, p.StartTime.UTC(), end, p.Items)
	return err
}

// ListStages returns a run's stages in execution order.
func (s *Store) ListStages(runID string) ([]model.StageProgress, error) {
	rows, err := s.db.Query(`SELECT stage, dataset, status, start_time, end_time, items FROM stage_progress WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stages := []model.StageProgress{}
	for rows.Next() {
		var p model.StageProgress
		var end sql.NullTime
		if err := rows.Scan(&p.Stage, &p.Dataset, &p.Status, &p.StartTime, &end, &p.Items); err != nil {
			return nil, err
		}
		if end.Valid {
			t := end.Time
			p.EndTime = &t
		}
		stages = append(stages, p)
	}
	return stages, rows.Err()
}
