package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/natsites/nps-places/internal/places"
	"github.com/natsites/nps-places/internal/site"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

var separator = strings.Repeat("-", 40)

// ParseFormat validates a --format value.
func ParseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// SiteListResult is the output of the sites command
type SiteListResult struct {
	State     string        `json:"state"`
	URL       string        `json:"url"`
	FetchedAt time.Time     `json:"fetched_at"`
	Count     int           `json:"count"`
	Sites     []site.Record `json:"sites"`
}

// NearbyResult is the output of the nearby command
type NearbyResult struct {
	Site   site.Record    `json:"site"`
	Places []places.Place `json:"places"`
}

// StateListResult is the output of the states command
type StateListResult struct {
	States map[string]string `json:"states"`
	Names  []string          `json:"-"`
}

// WriteSites writes a state's site list in the specified format
func WriteSites(w io.Writer, result *SiteListResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		writeSiteList(w, result.State, result.Sites)
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteNearby writes the places found near a site
func WriteNearby(w io.Writer, result *NearbyResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		writePlaces(w, result.Site, &places.Result{SearchResults: result.Places})
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteStates writes the state index
func WriteStates(w io.Writer, result *StateListResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		for _, name := range result.Names {
			fmt.Fprintf(w, "%s: %s\n", titleCase(name), result.States[name])
		}
		fmt.Fprintf(w, "\nTotal: %d states\n", len(result.Names))
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeSiteList prints the numbered listing shown after a state is chosen.
func writeSiteList(w io.Writer, state string, records []site.Record) {
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "List of national sites in %s\n", titleCase(state))
	fmt.Fprintln(w, separator)
	for i, r := range records {
		fmt.Fprintf(w, "[%d] %s\n", i+1, r.Info())
	}
	fmt.Fprintln(w, separator)
}

func writePlaces(w io.Writer, record site.Record, result *places.Result) {
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "Places near %s\n", record.Name)
	fmt.Fprintln(w, separator)

	lines := places.Render(result)
	if len(lines) == 0 {
		fmt.Fprintln(w, "No nearby places found.")
		return
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

// titleCase upper-cases the first letter of each word: "new york" -> "New York".
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}
	return strings.Join(words, " ")
}
