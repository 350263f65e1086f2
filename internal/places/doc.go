// Package places looks up points of interest near a site through the MapQuest
// radius search API.
//
// Requests are identified by a cache key built from the endpoint and the
// sorted query parameters. The key doubles as the request URL, and responses
// are cached as JSON so a site is only looked up once per cache file.
package places
