package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/natsites/nps-places/internal/site"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByPage     SortOrder = "page"
	SortByName     SortOrder = "name"
	SortByCategory SortOrder = "category"
)

// ParseSortOrder validates a --sort value.
func ParseSortOrder(s string) (SortOrder, error) {
	order := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	switch order {
	case SortByPage, SortByName, SortByCategory:
		return order, nil
	case "":
		return SortByPage, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be 'page', 'name' or 'category')", s)
	}
}

// sortSites reorders records in place. SortByPage keeps the order of the state page.
func sortSites(records []site.Record, order SortOrder) {
	switch order {
	case SortByName:
		sort.SliceStable(records, func(i, j int) bool {
			return strings.ToLower(records[i].Name) < strings.ToLower(records[j].Name)
		})
	case SortByCategory:
		sort.SliceStable(records, func(i, j int) bool {
			ci, cj := strings.ToLower(records[i].Category), strings.ToLower(records[j].Category)
			if ci != cj {
				// Uncategorized sites go last
				if ci == "" || cj == "" {
					return cj == ""
				}
				return ci < cj
			}
			return strings.ToLower(records[i].Name) < strings.ToLower(records[j].Name)
		})
	}
}
