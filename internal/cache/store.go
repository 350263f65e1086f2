package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natsites/nps-places/internal/logger"
)

// DefaultFilename is the cache document used when no path is configured.
const DefaultFilename = "national_parks_cache.json"

// Store maps a cache key to its cached value.
type Store map[string]json.RawMessage

// Backend persists a whole Store at once.
type Backend interface {
	// Load returns the persisted store, or an empty one if it cannot be read.
	Load() Store
	// Save replaces the persisted store with s.
	Save(s Store) error
}

// FileBackend keeps the Store as a single JSON document on disk.
type FileBackend struct {
	path string
}

// NewFileBackend creates a backend for the document at path.
func NewFileBackend(path string) *FileBackend {
	if path == "" {
		path = DefaultFilename
	}
	return &FileBackend{path: path}
}

// Path returns the location of the cache document.
func (b *FileBackend) Path() string {
	return b.path
}

// Load reads the cache document.
func (b *FileBackend) Load() Store {
	return Load(b.path)
}

// Save overwrites the cache document.
func (b *FileBackend) Save(s Store) error {
	return Save(b.path, s)
}

// Load reads the cache document at path. Read and decode failures are logged
// and produce an empty Store.
func Load(path string) Store {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("cache file not found, starting empty", logger.Fields{"path": path})
		} else {
			logger.Warn("cache file unreadable, starting empty", logger.Fields{"path": path, "error": err.Error()})
		}
		return Store{}
	}

	var s Store
	if err := json.Unmarshal(data, &s); err != nil {
		logger.Warn("cache file is corrupt, starting empty", logger.Fields{"path": path, "error": err.Error()})
		return Store{}
	}

	if s == nil {
		s = Store{}
	}
	return s
}

// Save serializes s and overwrites the document at path. The write is not
// atomic.
func Save(path string, s Store) error {
	if s == nil {
		s = Store{}
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating cache directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}

	return nil
}
