// Package site defines the record scraped from one nps.gov park page.
//
// A Record is built once from a detail page and never modified. Parks without
// a published postal address carry the NoAddress and NoZipcode sentinels
// instead of empty strings.
package site
