// Package phone normalizes contact numbers for storage and SMS dispatch.
// Verification challenges are keyed by (licence, phone), so two spellings of
// the same number must normalize to the same key.
package phone

import "strings"

// Normalize strips formatting characters and leading zeros so a number is
// stored in one canonical digits-only form. A leading "+" is preserved as
// an international prefix marker.
func Normalize(number string) string {
	number = strings.TrimSpace(number)
	international := strings.HasPrefix(number, "+")

	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if !international {
		digits = strings.TrimLeft(digits, "0")
	}
	if international {
		return "+" + digits
	}
	return digits
}

// IsValid reports whether a normalized number has a plausible length.
func IsValid(number string) bool {
	n := Normalize(number)
	n = strings.TrimPrefix(n, "+")
	return len(n) >= 7 && len(n) <= 15
}
