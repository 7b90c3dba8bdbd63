package parse

import "strings"

// Strategy produces a candidate value for a single field.
type Strategy func() string

// FirstMatch runs strategies in order and returns the first non-empty
// trimmed result. The portal's markup drifts between terms, so every
// field lookup is an ordered cascade from the most structured selector
// down to a brute text scan.
func FirstMatch(strategies ...Strategy) string {
	for _, s := range strategies {
		if v := strings.TrimSpace(s()); v != "" {
			return v
		}
	}
	return ""
}
