package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"loov.dev/asmlens/internal/compile"
)

var log = commonlog.GetLogger("asmlens.storage")

// SQLite stores settings and analytics events in a database file.
type SQLite struct {
	db      *sql.DB
	path    string
	session string
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating settings table: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS events (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		session     TEXT NOT NULL,
		at          INTEGER NOT NULL,
		slot        INTEGER NOT NULL,
		compiler    TEXT NOT NULL,
		options     TEXT NOT NULL,
		code        INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating events table: %w", err)
	}

	return &SQLite{db: db, path: path, session: uuid.NewString()}, nil
}

// DefaultPath returns the database location in the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting config dir: %w", err)
	}
	return filepath.Join(dir, "asmlens", "settings.db"), nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Session is the identifier attached to recorded events.
func (s *SQLite) Session() string { return s.session }

// Load implements Store.
func (s *SQLite) Load(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("querying setting: %w", err)
	}
	return value, nil
}

// Save implements Store.
func (s *SQLite) Save(key, value string) error {
	_, err := s.db.Exec("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("saving setting: %w", err)
	}
	return nil
}

// Track records a compile outcome. Failures are only logged.
func (s *SQLite) Track(outcome compile.Outcome) {
	_, err := s.db.Exec(
		"INSERT INTO events (session, at, slot, compiler, options, code, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?)",
		s.session, time.Now().Unix(), outcome.Slot, outcome.Compiler, outcome.Options,
		outcome.Code, outcome.Duration.Milliseconds(),
	)
	if err != nil {
		log.Errorf("recording event: %v", err)
	}
}
