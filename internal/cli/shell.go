package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/natsites/nps-places/internal/logger"
	"github.com/natsites/nps-places/internal/places"
	"github.com/natsites/nps-places/internal/scraper"
	"github.com/natsites/nps-places/internal/site"
)

const (
	statePrompt  = "Enter a state name (e.g. Michigan, michigan) or 'exit': "
	detailPrompt = "Choose the number for detail search or 'exit' or 'back': "
)

type siteSource interface {
	BuildStateIndex() (scraper.StateIndex, error)
	FetchSitesForState(stateURL string) ([]site.Record, error)
}

type placesSource interface {
	NearbyPlaces(record site.Record) (*places.Result, error)
}

// Shell is the interactive state / site / nearby loop.
type Shell struct {
	in     *bufio.Scanner
	out    io.Writer
	sites  siteSource
	places placesSource
}

// NewShell creates a shell reading commands from in and writing to out.
func NewShell(in io.Reader, out io.Writer, sites siteSource, places placesSource) *Shell {
	return &Shell{
		in:     bufio.NewScanner(in),
		out:    out,
		sites:  sites,
		places: places,
	}
}

// errExit ends the loop without an error.
var errExit = errors.New("exit")

// Run builds the state index once and serves prompts until the user exits or
// input ends. Invalid input is reported and re-prompted; fetch and parse
// failures end the run.
func (sh *Shell) Run() error {
	idx, err := sh.sites.BuildStateIndex()
	if err != nil {
		return fmt.Errorf("building state index: %w", err)
	}

	for {
		input, err := sh.prompt(statePrompt)
		if err != nil {
			return ignoreExit(err)
		}
		if strings.EqualFold(input, "exit") {
			return nil
		}

		stateURL, ok := idx.Lookup(input)
		if !ok {
			fmt.Fprintln(sh.out, "[Error] Enter a state name.")
			fmt.Fprintln(sh.out)
			continue
		}

		records, err := sh.sites.FetchSitesForState(stateURL)
		if err != nil {
			return fmt.Errorf("fetching sites for %s: %w", input, err)
		}
		writeSiteList(sh.out, input, records)

		if err := sh.detailLoop(records); err != nil {
			return ignoreExit(err)
		}
	}
}

// detailLoop serves the site selection prompt until "back".
func (sh *Shell) detailLoop(records []site.Record) error {
	for {
		input, err := sh.prompt(detailPrompt)
		if err != nil {
			return err
		}

		switch input {
		case "exit":
			return errExit
		case "back":
			return nil
		}

		n, ok := parseSelection(input, len(records))
		if !ok {
			fmt.Fprintln(sh.out, "[Error] Invalid Input")
			fmt.Fprintln(sh.out, separator)
			continue
		}

		record := records[n-1]
		result, err := sh.places.NearbyPlaces(record)
		if errors.Is(err, places.ErrNoZipcode) {
			fmt.Fprintf(sh.out, "[Error] %s has no zipcode to search around.\n", record.Name)
			fmt.Fprintln(sh.out, separator)
			continue
		}
		if err != nil {
			return fmt.Errorf("looking up places near %s: %w", record.Name, err)
		}

		writePlaces(sh.out, record, result)
	}
}

// prompt writes the prompt and returns the next trimmed input line. End of
// input is reported as errExit.
func (sh *Shell) prompt(text string) (string, error) {
	fmt.Fprint(sh.out, text)
	if !sh.in.Scan() {
		fmt.Fprintln(sh.out)
		if err := sh.in.Err(); err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		logger.Debug("input closed", nil)
		return "", errExit
	}
	return strings.TrimSpace(sh.in.Text()), nil
}

// parseSelection accepts only plain digits in 1..max.
func parseSelection(input string, max int) (int, bool) {
	if input == "" {
		return 0, false
	}
	for _, r := range input {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > max {
		return 0, false
	}
	return n, true
}

func ignoreExit(err error) error {
	if errors.Is(err, errExit) {
		return nil
	}
	return err
}
