package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildKey(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		params map[string]interface{}
		want   string
	}{
		{
			name:   "sorted by name",
			base:   "http://x/y",
			params: map[string]interface{}{"b": 2, "a": 1},
			want:   "http://x/y?a=1&b=2",
		},
		{
			name: "places request",
			base: "http://www.mapquestapi.com/search/v2/radius",
			params: map[string]interface{}{
				"origin":      "49931",
				"radius":      10,
				"maxMatches":  10,
				"ambiguities": "ignore",
				"outFormat":   "json",
				"key":         "abc",
			},
			want: "http://www.mapquestapi.com/search/v2/radius?ambiguities=ignore&key=abc&maxMatches=10&origin=49931&outFormat=json&radius=10",
		},
		{
			name:   "no params keeps separator",
			base:   "http://x/y",
			params: map[string]interface{}{},
			want:   "http://x/y?",
		},
		{
			name:   "name order, not pair order",
			base:   "http://x/y",
			params: map[string]interface{}{"a-b": 2, "a": 1},
			want:   "http://x/y?a=1&a-b=2",
		},
		{
			name:   "float values",
			base:   "http://x/y",
			params: map[string]interface{}{"radius": 2.5},
			want:   "http://x/y?radius=2.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildKey(tt.base, tt.params))
		})
	}
}

func TestBuildKey_InsertionOrderIndependent(t *testing.T) {
	names := []string{"origin", "radius", "maxMatches", "ambiguities", "outFormat", "key"}
	values := map[string]interface{}{
		"origin": "82190-0168", "radius": 10, "maxMatches": 10,
		"ambiguities": "ignore", "outFormat": "json", "key": "k",
	}

	forward := make(map[string]interface{})
	for _, n := range names {
		forward[n] = values[n]
	}
	backward := make(map[string]interface{})
	for i := len(names) - 1; i >= 0; i-- {
		backward[names[i]] = values[names[i]]
	}

	want := BuildKey("http://x/y", forward)
	for i := 0; i < 20; i++ {
		assert.Equal(t, want, BuildKey("http://x/y", backward))
	}
}
