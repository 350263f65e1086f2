package cli

import (
	"testing"

	"github.com/natsites/nps-places/internal/site"
)

func names(records []site.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		in      string
		want    SortOrder
		wantErr bool
	}{
		{"page", SortByPage, false},
		{"", SortByPage, false},
		{"Name", SortByName, false},
		{"category", SortByCategory, false},
		{"date", "", true},
	}

	for _, tt := range tests {
		got, err := ParseSortOrder(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSortOrder(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSortOrder(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSortSites(t *testing.T) {
	fixture := func() []site.Record {
		return []site.Record{
			{Name: "Sleeping Bear Dunes", Category: "National Lakeshore"},
			{Name: "isle Royale", Category: "National Park"},
			{Name: "Motor Cities", Category: ""},
			{Name: "Keweenaw", Category: "National Historical Park"},
			{Name: "Pictured Rocks", Category: "National Lakeshore"},
		}
	}

	tests := []struct {
		name  string
		order SortOrder
		want  []string
	}{
		{
			name:  "page order untouched",
			order: SortByPage,
			want:  []string{"Sleeping Bear Dunes", "isle Royale", "Motor Cities", "Keweenaw", "Pictured Rocks"},
		},
		{
			name:  "by name ignores case",
			order: SortByName,
			want:  []string{"isle Royale", "Keweenaw", "Motor Cities", "Pictured Rocks", "Sleeping Bear Dunes"},
		},
		{
			name:  "by category then name, uncategorized last",
			order: SortByCategory,
			want:  []string{"Keweenaw", "Pictured Rocks", "Sleeping Bear Dunes", "isle Royale", "Motor Cities"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := fixture()
			sortSites(records, tt.order)
			if got := names(records); !equalNames(got, tt.want) {
				t.Errorf("sortSites(%s) = %v, want %v", tt.order, got, tt.want)
			}
		})
	}
}
