package places

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/natsites/nps-places/internal/cache"
	"github.com/natsites/nps-places/internal/logger"
	"github.com/natsites/nps-places/internal/site"
)

const (
	DefaultBaseURL    = "http://www.mapquestapi.com/search/v2/radius"
	DefaultRadius     = 10
	DefaultMaxMatches = 10
)

var (
	ErrMissingAPIKey = errors.New("places API key is not set")
	ErrNoZipcode     = errors.New("site has no zipcode")
)

// Getter performs the network request for a cache miss.
type Getter interface {
	Get(url string) ([]byte, error)
}

// Options tunes the radius search. Zero values fall back to the defaults.
type Options struct {
	BaseURL    string
	Radius     int
	MaxMatches int
}

// Client is a client for the MapQuest radius search API
type Client struct {
	apiKey     string
	baseURL    string
	radius     int
	maxMatches int
	getter     Getter
	cache      *cache.Cache
}

// NewClient creates a places client that resolves requests through c.
func NewClient(apiKey string, getter Getter, c *cache.Cache, opts Options) *Client {
	client := &Client{
		apiKey:     apiKey,
		baseURL:    opts.BaseURL,
		radius:     opts.Radius,
		maxMatches: opts.MaxMatches,
		getter:     getter,
		cache:      c,
	}
	if client.baseURL == "" {
		client.baseURL = DefaultBaseURL
	}
	if client.radius <= 0 {
		client.radius = DefaultRadius
	}
	if client.maxMatches <= 0 {
		client.maxMatches = DefaultMaxMatches
	}
	return client
}

// Fields holds the per-place details; any of them may be empty.
type Fields struct {
	Category string `json:"group_sic_code_name"`
	Address  string `json:"address"`
	City     string `json:"city"`
}

// Place is one search result
type Place struct {
	Name   string `json:"name"`
	Fields Fields `json:"fields"`
}

// Info carries the API status block.
type Info struct {
	StatusCode int      `json:"statuscode"`
	Messages   []string `json:"messages"`
}

// Result represents the radius search response
type Result struct {
	Info          *Info   `json:"info,omitempty"`
	SearchResults []Place `json:"searchResults"`
}

// APIError reports a response whose status block signals a failure.
type APIError struct {
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("places API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("places API returned status %d: %s", e.StatusCode, strings.Join(e.Messages, "; "))
}

// Params returns the query parameters of a radius search around zipcode.
func (c *Client) Params(zipcode string) map[string]interface{} {
	return map[string]interface{}{
		"origin":      zipcode,
		"radius":      c.radius,
		"maxMatches":  c.maxMatches,
		"ambiguities": "ignore",
		"outFormat":   "json",
		"key":         c.apiKey,
	}
}

// RequestKey returns the cache key, and request URL, for a record.
func (c *Client) RequestKey(record site.Record) string {
	return cache.BuildKey(c.baseURL, c.Params(record.Zipcode))
}

// NearbyPlaces searches around the record's zipcode.
func (c *Client) NearbyPlaces(record site.Record) (*Result, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if !record.HasZipcode() {
		return nil, fmt.Errorf("%w: %s", ErrNoZipcode, record.Name)
	}

	key := c.RequestKey(record)

	var result Result
	err := c.cache.GetJSON(key, func() ([]byte, error) {
		body, err := c.getter.Get(key)
		if err != nil {
			return nil, err
		}
		// Failed searches are reported, not cached.
		if err := checkStatus(body); err != nil {
			return nil, err
		}
		return body, nil
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("searching near %s: %w", record.Name, err)
	}

	logger.Debug("nearby places", logger.Fields{"site": record.Name, "origin": record.Zipcode, "results": len(result.SearchResults)})
	return &result, nil
}

func checkStatus(body []byte) error {
	var probe struct {
		Info *Info `json:"info"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		// Left for the cache to reject as invalid JSON.
		return nil
	}
	if probe.Info != nil && probe.Info.StatusCode != 0 {
		return &APIError{StatusCode: probe.Info.StatusCode, Messages: probe.Info.Messages}
	}
	return nil
}

// Render formats each place as "- Name (Category): Address, City", using
// placeholders for empty fields.
func Render(result *Result) []string {
	if result == nil {
		return nil
	}

	lines := make([]string, 0, len(result.SearchResults))
	for _, p := range result.SearchResults {
		lines = append(lines, fmt.Sprintf("- %s (%s): %s, %s",
			p.Name,
			orPlaceholder(p.Fields.Category, "no category"),
			orPlaceholder(p.Fields.Address, "no address"),
			orPlaceholder(p.Fields.City, "no city"),
		))
	}
	return lines
}

func orPlaceholder(value, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}
