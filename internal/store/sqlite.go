package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// snapshotKey is the well-known address of the single state record.
const snapshotKey = "active_state"

// SQLiteStore keeps the snapshot in a one-row key-value table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed creates) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS controller_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load returns the stored snapshot, or (nil, nil) when none exists.
func (s *SQLiteStore) Load() (*Snapshot, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM controller_state WHERE key = ?`, snapshotKey).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(value), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Save replaces the stored snapshot inside an explicit transaction so a
// nil return means the write has been committed, not buffered.
func (s *SQLiteStore) Save(snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO controller_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, snapshotKey, string(data), time.Now().UTC().Unix())
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("store snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Wipe deletes the stored snapshot. Used when the schema changes.
func (s *SQLiteStore) Wipe() error {
	_, err := s.db.Exec(`DELETE FROM controller_state WHERE key = ?`, snapshotKey)
	if err != nil {
		return fmt.Errorf("wipe snapshot: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
