// Package scraper fetches and parses the nps.gov pages behind the site listings.
//
// Three page shapes are understood: the homepage, whose keyword-search widget
// lists every state; a state page, whose #list_parks container links to each
// park; and a park detail page, whose hero header and address block give the
// site record. Every page goes through the response cache in text mode, so a
// page is downloaded at most once per cache file.
package scraper
