package site

import (
	"fmt"
	"strings"
)

const (
	NoAddress = "No address"
	NoZipcode = "No zipcode"
)

// Record represents one national park, monument or historic site
type Record struct {
	Category string `json:"category"` // e.g. "National Park", may be empty
	Name     string `json:"name"`
	Address  string `json:"address"` // "{locality}, {region}" or NoAddress
	Zipcode  string `json:"zipcode"` // e.g. "49931", "82190-0168" or NoZipcode
	Phone    string `json:"phone"`
	URL      string `json:"url,omitempty"`
}

// PostalAddress is the structured address block of a detail page.
type PostalAddress struct {
	Locality   string
	Region     string
	PostalCode string
}

// NewRecord builds a Record. A nil addr marks a page without an address
// block, which yields the NoAddress and NoZipcode sentinels.
func NewRecord(name, category string, addr *PostalAddress, phone, url string) Record {
	r := Record{
		Category: category,
		Name:     name,
		Address:  NoAddress,
		Zipcode:  NoZipcode,
		Phone:    strings.TrimSpace(phone),
		URL:      url,
	}

	if addr != nil {
		r.Address = strings.TrimSpace(addr.Locality) + ", " + strings.TrimSpace(addr.Region)
		r.Zipcode = strings.TrimSpace(addr.PostalCode)
	}

	return r
}

// Info renders the one-line listing form: "Name (Category): Address Zipcode".
func (r Record) Info() string {
	return fmt.Sprintf("%s (%s): %s %s", r.Name, r.Category, r.Address, r.Zipcode)
}

// HasZipcode reports whether the record carries a real postal code.
func (r Record) HasZipcode() bool {
	return r.Zipcode != "" && r.Zipcode != NoZipcode
}
