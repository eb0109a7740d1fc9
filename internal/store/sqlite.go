package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// Current schema version
const SchemaVersion = "2"

// SQLite is a SQLite-backed store.
type SQLite struct {
	mu      sync.Mutex
	db      *sql.DB
	session string
	log     commonlog.Logger
}

// NewSQLite opens (creating if needed) a SQLite store at the given path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS definitions (
			name TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			forms BLOB
		);
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create tables: %w", err)
	}

	s := &SQLite{db: db, session: uuid.NewString(), log: commonlog.GetLogger("monalisp.store")}

	// Check/set schema version (use unlocked versions since we're in init)
	version, err := s.getMetadataUnlocked("schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}

	if version == "" || version == "1" {
		if version == "1" {
			s.log.Warningf("migrating %s from schema version 1", path)
		}
		if err := s.migrateToV2(); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: migrate to v2: %w", err)
		}
		if err := s.setMetadataUnlocked("schema_version", SchemaVersion); err != nil {
			db.Close()
			return nil, err
		}
	} else if version != SchemaVersion {
		db.Close()
		return nil, fmt.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
	}

	s.log.Infof("opened %s (session %s)", path, s.session)
	return s, nil
}

// migrateToV2 adds the history table. Definitions stored by a v1 database
// become version 1 of their history.
func (s *SQLite) migrateToV2() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS definition_history (
			name TEXT NOT NULL,
			version INTEGER NOT NULL,
			source TEXT NOT NULL,
			session TEXT NOT NULL DEFAULT '',
			ts TEXT NOT NULL,
			PRIMARY KEY (name, version)
		);
	`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT OR IGNORE INTO definition_history (name, version, source, session, ts)
		SELECT name, 1, source, '', ? FROM definitions
	`, now())
	return err
}

// Session returns the id stamped on versions written through this store.
func (s *SQLite) Session() string {
	return s.session
}

// Get retrieves a definition by name.
func (s *SQLite) Get(name string) (*Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	def := Definition{Name: name}
	err := s.db.QueryRow("SELECT source, forms FROM definitions WHERE name = ?", name).
		Scan(&def.Source, &def.Forms)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", name, err)
	}
	return &def, nil
}

// Put stores a definition and appends a history version when its source
// differs from the latest one.
func (s *SQLite) Put(def Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: put %s: %w", def.Name, err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO definitions (name, source, forms) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET source = excluded.source, forms = excluded.forms
	`, def.Name, def.Source, def.Forms)
	if err != nil {
		return fmt.Errorf("store: put %s: %w", def.Name, err)
	}

	var latest sql.NullString
	var version int
	err = tx.QueryRow(`
		SELECT source, version FROM definition_history
		WHERE name = ? ORDER BY version DESC LIMIT 1
	`, def.Name).Scan(&latest, &version)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("store: put %s: %w", def.Name, err)
	}
	if !latest.Valid || latest.String != def.Source {
		_, err = tx.Exec(`
			INSERT INTO definition_history (name, version, source, session, ts)
			VALUES (?, ?, ?, ?, ?)
		`, def.Name, version+1, def.Source, s.session, now())
		if err != nil {
			return fmt.Errorf("store: put %s: %w", def.Name, err)
		}
	}
	return tx.Commit()
}

// Delete removes a definition and its history.
func (s *SQLite) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM definitions WHERE name = ?", name); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM definition_history WHERE name = ?", name)
	return err
}

// GetHistory returns versions of name, newest first.
func (s *SQLite) GetHistory(name string, limit int) ([]VersionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT version, source, session, ts FROM definition_history
		WHERE name = ? ORDER BY version DESC`
	args := []any{name}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: history %s: %w", name, err)
	}
	defer rows.Close()

	var entries []VersionEntry
	for rows.Next() {
		var ve VersionEntry
		if err := rows.Scan(&ve.Version, &ve.Source, &ve.Session, &ve.Ts); err != nil {
			return nil, err
		}
		entries = append(entries, ve)
	}
	return entries, rows.Err()
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// GetMetadata retrieves a metadata value by key.
func (s *SQLite) GetMetadata(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getMetadataUnlocked(key)
}

// getMetadataUnlocked retrieves metadata without locking (caller must hold lock).
func (s *SQLite) getMetadataUnlocked(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetMetadata stores a metadata value by key.
func (s *SQLite) SetMetadata(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setMetadataUnlocked(key, value)
}

// setMetadataUnlocked stores metadata without locking (caller must hold lock).
func (s *SQLite) setMetadataUnlocked(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
