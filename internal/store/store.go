// Package store persists experiment runs to SQLite: the settings a run
// started with, periodic fitness progress checkpoints, and the champion
// organism (as RLE text) when the run finishes.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdturney/spots-and-stripes/internal/logging"
)

// Run statuses.
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusAborted  = "aborted"
)

// Run is one experiment run.
type Run struct {
	ID          string
	CreatedAt   time.Time
	Rule        string
	Target      int
	Settings    string // YAML snapshot of the config the run started with
	Status      string
	BestFitness int
}

// ProgressRow is one fitness checkpoint.
type ProgressRow struct {
	Birth      int
	Best       int
	Mean       float64
	RecordedAt time.Time
}

// Champion is the fittest organism of a finished run.
type Champion struct {
	RunID    string
	Fitness  int
	SeedRLE  string
	AdultRLE string
}

// RunStore is a SQLite-backed store of experiment runs.
type RunStore struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// Open initializes the run database at the given path, creating parent
// directories and the schema as needed.
func Open(path string) (*RunStore, error) {
	timer := logging.StartTimer(logging.CategoryStore, "store.Open")
	defer timer.Stop()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("failed to set busy_timeout: %v", err)
	}
	// WAL with synchronous=NORMAL: checkpoints land every few hundred
	// births, so write throughput matters more than fsync-per-row.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("failed to set journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("failed to set synchronous=NORMAL: %v", err)
	}

	s := &RunStore{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logging.Store("run database ready at %s", path)
	return s, nil
}

// Close closes the database.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// CreateRun inserts a new running run and returns its ID.
func (s *RunStore) CreateRun(rule string, target int, settings string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO runs (id, created_at, rule, target, settings, status, best_fitness)
		VALUES (?, ?, ?, ?, ?, ?, 0)`,
		id, time.Now().UTC(), rule, target, settings, StatusRunning)
	if err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}
	logging.Store("created run %s (rule %s, target %d)", id, rule, target)
	return id, nil
}

// RecordProgress appends a fitness checkpoint and refreshes the run's
// best fitness.
func (s *RunStore) RecordProgress(runID string, birth, best int, mean float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin progress tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO progress (run_id, birth, best, mean, recorded_at)
		VALUES (?, ?, ?, ?, ?)`,
		runID, birth, best, mean, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to record progress: %w", err)
	}
	if _, err := tx.Exec(`UPDATE runs SET best_fitness = ? WHERE id = ?`, best, runID); err != nil {
		return fmt.Errorf("failed to update best fitness: %w", err)
	}
	return tx.Commit()
}

// FinishRun marks a run finished (or aborted) with its final best fitness.
func (s *RunStore) FinishRun(runID, status string, best int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`UPDATE runs SET status = ?, best_fitness = ? WHERE id = ?`,
		status, best, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	logging.Store("run %s %s with best fitness %d", runID, status, best)
	return nil
}

// SaveChampion stores (or replaces) the champion of a run.
func (s *RunStore) SaveChampion(c Champion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO champions (run_id, fitness, seed_rle, adult_rle)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			fitness = excluded.fitness,
			seed_rle = excluded.seed_rle,
			adult_rle = excluded.adult_rle`,
		c.RunID, c.Fitness, c.SeedRLE, c.AdultRLE)
	if err != nil {
		return fmt.Errorf("failed to save champion: %w", err)
	}
	return nil
}

// ListRuns returns all runs, newest first.
func (s *RunStore) ListRuns() ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT id, created_at, rule, target, settings, status, best_fitness
		FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Rule, &r.Target,
			&r.Settings, &r.Status, &r.BestFitness); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun fetches one run by ID.
func (s *RunStore) GetRun(id string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var r Run
	err := s.db.QueryRow(`
		SELECT id, created_at, rule, target, settings, status, best_fitness
		FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &r.CreatedAt, &r.Rule, &r.Target, &r.Settings, &r.Status, &r.BestFitness)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &r, nil
}

// GetChampion fetches the champion of a run.
func (s *RunStore) GetChampion(runID string) (*Champion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var c Champion
	err := s.db.QueryRow(`
		SELECT run_id, fitness, seed_rle, adult_rle
		FROM champions WHERE run_id = ?`, runID).
		Scan(&c.RunID, &c.Fitness, &c.SeedRLE, &c.AdultRLE)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no champion recorded for run %s", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get champion: %w", err)
	}
	return &c, nil
}

// Progress returns a run's fitness checkpoints in birth order.
func (s *RunStore) Progress(runID string) ([]ProgressRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT birth, best, mean, recorded_at
		FROM progress WHERE run_id = ? ORDER BY birth`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	var out []ProgressRow
	for rows.Next() {
		var p ProgressRow
		if err := rows.Scan(&p.Birth, &p.Best, &p.Mean, &p.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
