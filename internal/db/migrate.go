package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS notes (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		type       TEXT NOT NULL DEFAULT 'other'
		           CHECK(type IN ('entity','event','person','process','project','meeting','memory','other')),
		importance TEXT NOT NULL DEFAULT 'normal'
		           CHECK(importance IN ('critical','high','normal','low','archive')),
		content    TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_notes_updated ON notes(updated_at)`,

	`CREATE TABLE IF NOT EXISTS review_states (
		note_id         TEXT NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
		cycle           TEXT NOT NULL CHECK(cycle IN ('retouche','lecture')),
		easiness        REAL NOT NULL DEFAULT 2.5,
		repetition      INTEGER NOT NULL DEFAULT 0,
		interval_hours  REAL NOT NULL DEFAULT 0,
		next_due        TEXT,
		last_reviewed   TEXT,
		completed_count INTEGER NOT NULL DEFAULT 0,
		last_quality    INTEGER,
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL,
		PRIMARY KEY (note_id, cycle)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_review_states_due ON review_states(cycle, next_due)`,

	`CREATE TABLE IF NOT EXISTS digests (
		date         TEXT PRIMARY KEY,
		items_json   TEXT NOT NULL,
		generated_at TEXT NOT NULL
	)`,
}
