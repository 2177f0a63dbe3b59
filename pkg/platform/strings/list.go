// Package strings holds small string helpers shared across verticals.
package strings

import (
	"strings"
)

// List parses a comma-separated value into a clean slice: elements are
// trimmed, empties dropped, and duplicates removed with order preserved.
// Used for list-valued environment variables such as broker addresses.
func List(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
