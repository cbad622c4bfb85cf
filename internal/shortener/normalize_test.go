package shortener_test

import (
	"testing"

	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "keeps https url unchanged",
			input:    "https://example.com/path",
			expected: "https://example.com/path",
		},
		{
			name:     "keeps http url unchanged",
			input:    "http://example.com/path",
			expected: "http://example.com/path",
		},
		{
			name:     "prepends https when scheme is missing",
			input:    "example.com/path",
			expected: "https://example.com/path",
		},
		{
			name:     "trims surrounding whitespace",
			input:    "  https://example.com  ",
			expected: "https://example.com",
		},
		{
			name:     "preserves query and fragment",
			input:    "https://example.com/a?b=c#d",
			expected: "https://example.com/a?b=c#d",
		},
		{
			name:     "preserves trailing slash",
			input:    "https://example.com/path/",
			expected: "https://example.com/path/",
		},
		{
			name:     "accepts explicit port",
			input:    "https://example.com:8080/path",
			expected: "https://example.com:8080/path",
		},
		{
			name:     "accepts ip host",
			input:    "http://127.0.0.1:8000/x",
			expected: "http://127.0.0.1:8000/x",
		},
		{
			name:     "accepts localhost",
			input:    "localhost:3000",
			expected: "https://localhost:3000",
		},
		{
			name:     "accepts uppercase scheme",
			input:    "HTTPS://Example.COM/Path",
			expected: "HTTPS://Example.COM/Path",
		},
		{
			name:     "accepts subdomains and hyphens",
			input:    "www.my-site.co.uk",
			expected: "https://www.my-site.co.uk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := shortener.Normalize(tt.input)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalize_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"not a url",
		"not-a-valid-url",
		"https://",
		"https://exa mple.com",
		"ftp://example.com",
		"https://-bad-.com",
		"https://example.123",
		"https://example.com:abc",
		"https://example.com:",
		"https://.com",
		"example.com/not a url",
		"https://example.com/a b",
		"https://example.com/?q=a b",
		"https://example.com/tab\there",
		"https://example.com/line\nbreak",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got, err := shortener.Normalize(input)

			assert.Empty(t, got)
			assert.ErrorIs(t, err, shortener.ErrInvalidURL)
		})
	}
}
