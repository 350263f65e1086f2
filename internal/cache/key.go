package cache

import (
	"fmt"
	"sort"
	"strings"
)

// BuildKey joins baseURL and params into a cache key of the form
// "base?a=1&b=2". Pairs are ordered by parameter name, so the same parameter
// set always yields the same key. Values are formatted with %v and are not
// URL-escaped.
func BuildKey(baseURL string, params map[string]interface{}) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, fmt.Sprintf("%s=%v", name, params[name]))
	}

	return baseURL + "?" + strings.Join(pairs, "&")
}
