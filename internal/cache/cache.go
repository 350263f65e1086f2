package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/natsites/nps-places/internal/logger"
)

// Kind selects how a fetched body is stored.
type Kind int

const (
	// KindText stores the body as a JSON string (HTML pages).
	KindText Kind = iota
	// KindJSON stores the body as the JSON document it contains (API responses).
	KindJSON
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindJSON:
		return "json"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

var (
	// ErrInvalidJSON is returned when a KindJSON fetch does not return JSON.
	ErrInvalidJSON = errors.New("response is not valid JSON")
	// ErrNotText is returned by GetText when the cached value is not a string.
	ErrNotText = errors.New("cached value is not text")
)

// Fetcher performs the network request for a cache miss.
type Fetcher func() ([]byte, error)

// Cache resolves keys through a Backend, fetching and persisting on a miss.
type Cache struct {
	backend Backend
	mirror  Store
	session bool
}

// New creates a Cache that reloads the backend on every lookup.
func New(backend Backend) *Cache {
	return &Cache{backend: backend}
}

// NewWithSessionMirror creates a Cache that loads the backend once and keeps
// the Store in memory for the rest of the process. Every miss still rewrites
// the backend.
func NewWithSessionMirror(backend Backend) *Cache {
	return &Cache{backend: backend, session: true}
}

func (c *Cache) load() Store {
	if c.session && c.mirror != nil {
		return c.mirror
	}
	s := c.backend.Load()
	if c.session {
		c.mirror = s
	}
	return s
}

// FetchOrGet returns the value stored under key. On a miss it calls fetch,
// stores the result according to kind, persists the whole store and returns
// the stored value. Fetch errors are returned unchanged and nothing is cached.
func (c *Cache) FetchOrGet(key string, fetch Fetcher, kind Kind) (json.RawMessage, error) {
	store := c.load()

	if value, ok := store[key]; ok {
		logger.Debug("cache hit", logger.Fields{"key": redact(key)})
		logger.IncrCounter("cache.hit")
		return value, nil
	}

	logger.Debug("cache miss", logger.Fields{"key": redact(key), "kind": kind.String()})
	logger.IncrCounter("cache.miss")

	body, err := fetch()
	if err != nil {
		return nil, err
	}

	value, err := encode(body, kind)
	if err != nil {
		return nil, fmt.Errorf("caching %s: %w", redact(key), err)
	}

	store[key] = value
	if err := c.backend.Save(store); err != nil {
		logger.Warn("cache not saved", logger.Fields{"key": redact(key), "error": err.Error()})
	}

	return value, nil
}

// GetText is FetchOrGet in KindText mode, decoded back to a string.
func (c *Cache) GetText(key string, fetch Fetcher) (string, error) {
	value, err := c.FetchOrGet(key, fetch, KindText)
	if err != nil {
		return "", err
	}

	var text string
	if err := json.Unmarshal(value, &text); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotText, redact(key))
	}
	return text, nil
}

// GetJSON is FetchOrGet in KindJSON mode, decoded into out.
func (c *Cache) GetJSON(key string, fetch Fetcher, out interface{}) error {
	value, err := c.FetchOrGet(key, fetch, KindJSON)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(value, out); err != nil {
		return fmt.Errorf("decoding cached value for %s: %w", redact(key), err)
	}
	return nil
}

// Len returns the number of entries currently persisted.
func (c *Cache) Len() int {
	return len(c.load())
}

func encode(body []byte, kind Kind) (json.RawMessage, error) {
	switch kind {
	case KindText:
		data, err := json.Marshal(string(body))
		if err != nil {
			return nil, err
		}
		return data, nil
	case KindJSON:
		var compact bytes.Buffer
		if err := json.Compact(&compact, body); err != nil {
			return nil, ErrInvalidJSON
		}
		// Match the escaping json.Marshal applies on Save so a reloaded
		// value is byte-identical to the one returned here.
		var escaped bytes.Buffer
		json.HTMLEscape(&escaped, compact.Bytes())
		return json.RawMessage(escaped.Bytes()), nil
	default:
		return nil, fmt.Errorf("unknown cache kind: %s", kind)
	}
}

var apiKeyParam = regexp.MustCompile(`([?&]key=)[^&]*`)

// redact hides the API key carried in places request keys before logging.
func redact(key string) string {
	return apiKeyParam.ReplaceAllString(key, "${1}REDACTED")
}
