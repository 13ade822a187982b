package domains

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "bare host", input: "example.com", expected: "example.com"},
		{name: "https scheme", input: "https://example.com", expected: "example.com"},
		{name: "http scheme", input: "http://example.com", expected: "example.com"},
		{name: "www prefix", input: "www.example.com", expected: "example.com"},
		{name: "scheme and www", input: "https://www.example.com", expected: "example.com"},
		{name: "mixed case", input: "HTTPS://Example.COM", expected: "example.com"},
		{name: "path stripped", input: "https://example.com/foo/bar", expected: "example.com"},
		{name: "query stripped", input: "example.com?utm_source=x", expected: "example.com"},
		{name: "fragment stripped", input: "example.com#pricing", expected: "example.com"},
		{name: "port stripped", input: "example.com:8080/admin", expected: "example.com"},
		{name: "whitespace trimmed", input: "  example.com  ", expected: "example.com"},
		{name: "subdomain preserved", input: "https://blog.example.com/post", expected: "blog.example.com"},
		{name: "empty input", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"https://www.example.com/foo?q=1#frag",
		"Example.com",
		"sub.domain.example.co.uk/path",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}

func TestNormalize_EquivalentForms(t *testing.T) {
	assert.Equal(t, Normalize("https://Example.com/foo"), Normalize("www.example.com"))
	assert.Equal(t, Normalize("http://example.com"), Normalize("https://example.com/"))
}
