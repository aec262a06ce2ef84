package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported SQL drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store bundles an open database with the repositories built on it.
type Store struct {
	DB       *sql.DB
	Sessions SessionRepo
	Samples  SampleRepo
	Alerts   AlertRepo

	driver string
}

// Open opens the database for the given driver, runs migrations, and wires
// the repositories. For SQLite the DSN is a file path (or ":memory:"); WAL
// mode and foreign key enforcement are switched on. For Postgres the DSN is
// a lib/pq connection string.
func Open(driver, dsn string) (*Store, error) {
	var db *sql.DB
	var err error

	switch driver {
	case DriverSQLite:
		db, err = openSQLite(dsn)
	case DriverPostgres:
		db, err = sql.Open("postgres", dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	if err := Migrate(db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{
		DB:       db,
		Sessions: newSessionRepo(db, driver),
		Samples:  newSampleRepo(db, driver),
		Alerts:   newAlertRepo(db, driver),
		driver:   driver,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Driver returns the driver name the store was opened with.
func (s *Store) Driver() string {
	return s.driver
}

func openSQLite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// Each pooled connection would otherwise open its own empty
		// in-memory database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	return db, nil
}
