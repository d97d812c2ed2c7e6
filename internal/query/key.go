// Package query implements the cache layer between resource fetchers and
// the API: deterministic keys, staleness windows, de-duplication of
// concurrent identical fetches, and cursor-based infinite pagination.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Key identifies one logical resource query. Keys are built from an ordered
// tuple (resource family, sub-resource, discriminating parameters) so that
// equality is structural: two queries for the same logical resource always
// produce the same key.
type Key string

// NewKey builds a key from ordered parts. Parts are escaped individually so
// a part containing the separator cannot collide with a different tuple.
func NewKey(parts ...string) Key {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.QueryEscape(p)
	}
	return Key(strings.Join(escaped, "/"))
}

// WithPage derives a per-page key from a base key.
func (k Key) WithPage(page int) Key {
	return Key(string(k) + "/page=" + strconv.Itoa(page))
}

func (k Key) String() string {
	return string(k)
}
