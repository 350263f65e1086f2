// Package cache provides the URL-keyed response cache shared by the nps.gov
// scraper and the places lookup.
//
// A Store maps a cache key (the exact request URL, query string included) to
// the cached response. HTML pages are stored as JSON strings and API
// responses as the JSON document itself, so one file can hold both. Loading
// is best-effort: a missing or corrupt cache yields an empty Store and never
// blocks the program. Entries never expire.
//
// A Cache is not safe for concurrent use. The tool runs one process with one
// user at a time.
package cache
