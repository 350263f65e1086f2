package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingFetcher(body string, calls *int) Fetcher {
	return func() ([]byte, error) {
		*calls++
		return []byte(body), nil
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		contents *string
		wantLen  int
	}{
		{name: "missing file", contents: nil, wantLen: 0},
		{name: "malformed document", contents: strPtr("{not json"), wantLen: 0},
		{name: "wrong top-level type", contents: strPtr(`["a","b"]`), wantLen: 0},
		{name: "null document", contents: strPtr("null"), wantLen: 0},
		{name: "empty file", contents: strPtr(""), wantLen: 0},
		{name: "valid document", contents: strPtr(`{"https://www.nps.gov/index.htm":"<html></html>","k":{"a":1}}`), wantLen: 2},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "cache"+string(rune('a'+i))+".json")
			if tt.contents != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.contents), 0644))
			}

			s := Load(path)
			require.NotNil(t, s)
			assert.Len(t, s, tt.wantLen)
		})
	}
}

func TestSave_WritesSingleDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.json")

	s := Store{
		"https://www.nps.gov/index.htm": json.RawMessage(`"plain page"`),
		"http://x/y?a=1":                json.RawMessage(`{"searchResults":[]}`),
	}
	require.NoError(t, Save(path, s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "plain page", decoded["https://www.nps.gov/index.htm"])
	assert.Equal(t, map[string]interface{}{"searchResults": []interface{}{}}, decoded["http://x/y?a=1"])

	assert.Equal(t, s, Load(path))
}

func TestFetchOrGet_FetchesOnce(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		body string
	}{
		{name: "text", kind: KindText, body: "<html><body>Isle Royale & friends</body></html>"},
		{name: "json", kind: KindJSON, body: "{\n  \"searchResults\": [{\"name\": \"Cafe <1>\"}]\n}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cache.json")
			c := New(NewFileBackend(path))
			calls := 0

			first, err := c.FetchOrGet("https://example.test/page", countingFetcher(tt.body, &calls), tt.kind)
			require.NoError(t, err)

			second, err := c.FetchOrGet("https://example.test/page", countingFetcher(tt.body, &calls), tt.kind)
			require.NoError(t, err)

			assert.Equal(t, 1, calls, "fetcher should run once")
			assert.Equal(t, string(first), string(second))
			assert.Contains(t, Load(path), "https://example.test/page")
		})
	}
}

func TestFetchOrGet_FetchErrorNotCached(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := New(NewFileBackend(path))
	boom := errors.New("connection refused")

	_, err := c.FetchOrGet("k", func() ([]byte, error) { return nil, boom }, KindText)
	require.ErrorIs(t, err, boom)

	calls := 0
	_, err = c.FetchOrGet("k", countingFetcher("ok", &calls), KindText)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestFetchOrGet_InvalidJSONNotCached(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := New(NewFileBackend(path))

	_, err := c.FetchOrGet("k", func() ([]byte, error) { return []byte("<html>"), nil }, KindJSON)
	require.ErrorIs(t, err, ErrInvalidJSON)
	assert.Empty(t, Load(path))
}

func TestFetchOrGet_StaleEntryReturnedForever(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, Save(path, Store{"k": json.RawMessage(`"old"`)}))

	c := New(NewFileBackend(path))
	calls := 0
	text, err := c.GetText("k", countingFetcher("new", &calls))
	require.NoError(t, err)

	assert.Equal(t, "old", text)
	assert.Zero(t, calls)
}

func TestGetText_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := New(NewFileBackend(path))
	html := "<div class=\"Hero-titleContainer\">é</div>"

	got, err := c.GetText("page", func() ([]byte, error) { return []byte(html), nil })
	require.NoError(t, err)
	assert.Equal(t, html, got)

	got, err = New(NewFileBackend(path)).GetText("page", func() ([]byte, error) {
		t.Fatal("fetch should not run on a hit")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, html, got)
}

func TestGetText_NotText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, Save(path, Store{"k": json.RawMessage(`{"a":1}`)}))

	_, err := New(NewFileBackend(path)).GetText("k", nil)
	assert.ErrorIs(t, err, ErrNotText)
}

func TestGetJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := New(NewFileBackend(path))

	var out struct {
		SearchResults []struct {
			Name string `json:"name"`
		} `json:"searchResults"`
	}
	err := c.GetJSON("k", func() ([]byte, error) {
		return []byte(`{"searchResults":[{"name":"Lakeside Diner"}]}`), nil
	}, &out)
	require.NoError(t, err)
	require.Len(t, out.SearchResults, 1)
	assert.Equal(t, "Lakeside Diner", out.SearchResults[0].Name)
}

func TestCache_ReloadsEveryCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := New(NewFileBackend(path))
	assert.Equal(t, 0, c.Len())

	require.NoError(t, Save(path, Store{"k": json.RawMessage(`"external"`)}))

	text, err := c.GetText("k", nil)
	require.NoError(t, err)
	assert.Equal(t, "external", text)
}

func TestCache_SessionMirror(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := NewWithSessionMirror(NewFileBackend(path))
	calls := 0

	_, err := c.GetText("a", countingFetcher("A", &calls))
	require.NoError(t, err)

	// Later external edits are not seen by the mirror.
	require.NoError(t, Save(path, Store{"b": json.RawMessage(`"external"`)}))

	got, err := c.GetText("b", countingFetcher("B", &calls))
	require.NoError(t, err)
	assert.Equal(t, "B", got)
	assert.Equal(t, 2, calls)

	// Each miss still rewrites the whole document from the mirror.
	s := Load(path)
	assert.Len(t, s, 2)
	assert.Equal(t, json.RawMessage(`"A"`), s["a"])
}

func TestSaveFailureDoesNotFailLookup(t *testing.T) {
	dir := t.TempDir()
	// A directory where the document should be makes every write fail.
	path := filepath.Join(dir, "cache.json")
	require.NoError(t, os.Mkdir(path, 0755))

	c := New(NewFileBackend(path))
	got, err := c.GetText("k", func() ([]byte, error) { return []byte("body"), nil })
	require.NoError(t, err)
	assert.Equal(t, "body", got)
}

func TestRedact(t *testing.T) {
	assert.Equal(t,
		"http://x/y?ambiguities=ignore&key=REDACTED&maxMatches=10",
		redact("http://x/y?ambiguities=ignore&key=secret&maxMatches=10"))
	assert.Equal(t, "http://x/y?key=REDACTED", redact("http://x/y?key=secret"))
	assert.Equal(t, "https://www.nps.gov/index.htm", redact("https://www.nps.gov/index.htm"))
	assert.Equal(t, "http://x/y?monkey=1", redact("http://x/y?monkey=1"))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "text", KindText.String())
	assert.Equal(t, "json", KindJSON.String())
	assert.Equal(t, "kind(7)", Kind(7).String())
}

func strPtr(s string) *string {
	return &s
}
