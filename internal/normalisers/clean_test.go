package normalisers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"non-breaking spaces", "a\u00a0\u00a0b", "a b"},
		{"tabs and spaces", "a \t \tb", "a b"},
		{"three newlines", "a\n\n\nb", "a\n\nb"},
		{"many newlines", "a\n\n\n\n\n\nb", "a\n\nb"},
		{"two newlines kept", "a\n\nb", "a\n\nb"},
		{"trimmed", "  \n text \n\t ", "text"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clean(tt.input))
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	in := "x  y\n\n\n\n z\t\t"
	assert.Equal(t, Clean(in), Clean(Clean(in)))
}
