package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain digits", "5551234567", "5551234567"},
		{"strips formatting", "(555) 123-4567", "5551234567"},
		{"strips leading zeros", "05551234567", "5551234567"},
		{"keeps international prefix", "+15551234567", "+15551234567"},
		{"formatting inside international", "+1 (555) 123-4567", "+15551234567"},
		{"trims whitespace", "  5551234567  ", "5551234567"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalize_SameKeyForSpellings(t *testing.T) {
	// Two spellings of one number must produce one challenge key.
	assert.Equal(t, Normalize("555-123-4567"), Normalize("(555) 123 4567"))
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("5551234567"))
	assert.True(t, IsValid("+441632960961"))
	assert.False(t, IsValid("12345"))
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("12345678901234567890"))
}
