package scraper

import "fmt"

// ParseError reports that an expected part of a page was not found, usually
// because the site layout changed.
type ParseError struct {
	URL     string
	Element string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %s not found", e.URL, e.Element)
}
