// Package fetch performs the blocking HTTP GET requests behind every cache miss.
//
// A Client returns the raw response body and never parses it. Transport
// failures and non-200 responses are reported as *NetworkError so callers can
// tell them apart from parse failures.
package fetch
