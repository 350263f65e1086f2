package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natsites/nps-places/internal/logger"

	_ "modernc.org/sqlite" // Register driver
)

// SQLiteBackend keeps the Store in a single-table SQLite database.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging cache db: %w", err)
	}

	// One writer, one process.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS cache (
		key TEXT PRIMARY KEY,
		value BLOB,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating cache db: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

// Load reads every row. Query failures and rows holding invalid JSON are
// logged and skipped.
func (b *SQLiteBackend) Load() Store {
	s := Store{}

	rows, err := b.db.Query("SELECT key, value FROM cache")
	if err != nil {
		logger.Warn("cache db unreadable, starting empty", logger.Fields{"error": err.Error()})
		return s
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			logger.Warn("skipping unreadable cache row", logger.Fields{"error": err.Error()})
			continue
		}
		if !json.Valid(value) {
			logger.Warn("skipping corrupt cache row", logger.Fields{"key": redact(key)})
			continue
		}
		s[key] = json.RawMessage(value)
	}

	if err := rows.Err(); err != nil {
		logger.Warn("cache db read interrupted, starting empty", logger.Fields{"error": err.Error()})
		return Store{}
	}

	return s
}

// Save upserts every entry of s in one transaction. created_at keeps the time
// a key was first stored.
func (b *SQLiteBackend) Save(s Store) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("starting cache transaction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO cache (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing cache upsert: %w", err)
	}
	defer stmt.Close()

	for key, value := range s {
		if _, err := stmt.Exec(key, []byte(value)); err != nil {
			tx.Rollback()
			return fmt.Errorf("writing cache entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cache: %w", err)
	}
	return nil
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
