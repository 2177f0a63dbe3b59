package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty value",
			input:    "",
			expected: nil,
		},
		{
			name:     "whitespace only",
			input:    "   ",
			expected: nil,
		},
		{
			name:     "single broker",
			input:    "kafka-1:9092",
			expected: []string{"kafka-1:9092"},
		},
		{
			name:     "trims around separators",
			input:    " kafka-1:9092 , kafka-2:9092 ",
			expected: []string{"kafka-1:9092", "kafka-2:9092"},
		},
		{
			name:     "drops empty segments",
			input:    "kafka-1:9092,,kafka-2:9092,",
			expected: []string{"kafka-1:9092", "kafka-2:9092"},
		},
		{
			name:     "dedupes preserving first occurrence",
			input:    "a,b,a,c,b",
			expected: []string{"a", "b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, List(tt.input))
		})
	}
}
