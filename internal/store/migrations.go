package store

import (
	"fmt"

	"github.com/pdturney/spots-and-stripes/internal/logging"
)

// CurrentSchemaVersion tracks the run database schema.
// v1: runs, progress, champions tables.
const CurrentSchemaVersion = 1

// Migration adds one column to an existing table. Additive migrations
// keep old run databases readable after upgrades.
type Migration struct {
	Table  string
	Column string
	Def    string
}

// pendingMigrations lists column additions to apply to databases created
// by earlier versions. Empty at schema v1.
var pendingMigrations = []Migration{}

func (s *RunStore) initialize() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			rule TEXT NOT NULL,
			target INTEGER NOT NULL,
			settings TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'running',
			best_fitness INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS progress (
			run_id TEXT NOT NULL REFERENCES runs(id),
			birth INTEGER NOT NULL,
			best INTEGER NOT NULL,
			mean REAL NOT NULL,
			recorded_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_progress_run ON progress(run_id, birth)`,
		`CREATE TABLE IF NOT EXISTS champions (
			run_id TEXT PRIMARY KEY REFERENCES runs(id),
			fitness INTEGER NOT NULL,
			seed_rle TEXT NOT NULL,
			adult_rle TEXT NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if err != nil {
		if _, err := s.db.Exec(`INSERT INTO schema_version (version) VALUES (?)`,
			CurrentSchemaVersion); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
		version = CurrentSchemaVersion
	}

	for _, m := range pendingMigrations {
		if s.columnExists(m.Table, m.Column) {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Def)
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %s.%s failed: %w", m.Table, m.Column, err)
		}
		logging.Store("applied migration %s.%s", m.Table, m.Column)
	}

	if version < CurrentSchemaVersion {
		if _, err := s.db.Exec(`UPDATE schema_version SET version = ?`,
			CurrentSchemaVersion); err != nil {
			return fmt.Errorf("failed to bump schema version: %w", err)
		}
	}
	return nil
}

func (s *RunStore) columnExists(table, column string) bool {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}
