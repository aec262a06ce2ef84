package store

import (
	"database/sql"
	"fmt"
)

// Migrate creates the schema for the given driver. Every statement is
// idempotent so the full list re-runs safely at each open.
func Migrate(db *sql.DB, driver string) error {
	stmts := sqliteMigrations
	if driver == DriverPostgres {
		stmts = postgresMigrations
	}
	for i, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id                TEXT PRIMARY KEY,
		started_at        TEXT NOT NULL,
		ended_at          TEXT,
		notes             TEXT NOT NULL DEFAULT '',
		duration_ms       INTEGER NOT NULL DEFAULT 0,
		sample_count      INTEGER NOT NULL DEFAULT 0,
		avg_score         REAL NOT NULL DEFAULT 0,
		min_score         REAL NOT NULL DEFAULT 0,
		max_score         REAL NOT NULL DEFAULT 0,
		blink_count       INTEGER NOT NULL DEFAULT 0,
		distraction_count INTEGER NOT NULL DEFAULT 0,
		focused_count     INTEGER NOT NULL DEFAULT 0,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS samples (
		session_id     TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		seq            INTEGER NOT NULL,
		ts             INTEGER NOT NULL,
		score          REAL NOT NULL,
		eye_openness   REAL NOT NULL,
		blink          INTEGER NOT NULL DEFAULT 0,
		gaze_direction TEXT NOT NULL,
		gaze_offset    REAL NOT NULL,
		head_yaw       REAL NOT NULL,
		head_pitch     REAL NOT NULL,
		PRIMARY KEY (session_id, seq)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_samples_session_ts ON samples(session_id, ts)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		id         TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		kind       TEXT NOT NULL,
		message    TEXT NOT NULL DEFAULT '',
		score      REAL NOT NULL DEFAULT 0,
		delivered  INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_session ON alerts(session_id)`,
}

var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id                TEXT PRIMARY KEY,
		started_at        TEXT NOT NULL,
		ended_at          TEXT,
		notes             TEXT NOT NULL DEFAULT '',
		duration_ms       BIGINT NOT NULL DEFAULT 0,
		sample_count      BIGINT NOT NULL DEFAULT 0,
		avg_score         DOUBLE PRECISION NOT NULL DEFAULT 0,
		min_score         DOUBLE PRECISION NOT NULL DEFAULT 0,
		max_score         DOUBLE PRECISION NOT NULL DEFAULT 0,
		blink_count       BIGINT NOT NULL DEFAULT 0,
		distraction_count BIGINT NOT NULL DEFAULT 0,
		focused_count     BIGINT NOT NULL DEFAULT 0,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS samples (
		session_id     TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		seq            BIGINT NOT NULL,
		ts             BIGINT NOT NULL,
		score          DOUBLE PRECISION NOT NULL,
		eye_openness   DOUBLE PRECISION NOT NULL,
		blink          BOOLEAN NOT NULL DEFAULT FALSE,
		gaze_direction TEXT NOT NULL,
		gaze_offset    DOUBLE PRECISION NOT NULL,
		head_yaw       DOUBLE PRECISION NOT NULL,
		head_pitch     DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (session_id, seq)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_samples_session_ts ON samples(session_id, ts)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		id         TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		kind       TEXT NOT NULL,
		message    TEXT NOT NULL DEFAULT '',
		score      DOUBLE PRECISION NOT NULL DEFAULT 0,
		delivered  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_session ON alerts(session_id)`,
}
