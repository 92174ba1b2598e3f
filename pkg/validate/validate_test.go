package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsername(t *testing.T) {
	t.Run("minimum_length", func(t *testing.T) {
		assert.True(t, Username("ab1"))
		assert.False(t, Username("ab"))
	})

	t.Run("allowed_characters", func(t *testing.T) {
		assert.True(t, Username("abc-1_2"))
		assert.True(t, Username("0-0-0"))
		assert.False(t, Username("abc.def"))
		assert.False(t, Username("abc def"))
		assert.False(t, Username("abc@def"))
	})

	t.Run("case_sensitive", func(t *testing.T) {
		// Callers lowercase first; uppercase input is rejected as-is.
		assert.False(t, Username("AB1"))
		assert.False(t, Username("aBc"))
	})

	t.Run("maximum_length", func(t *testing.T) {
		assert.True(t, Username(strings.Repeat("a", 30)))
		assert.False(t, Username(strings.Repeat("a", 31)))
	})

	t.Run("empty", func(t *testing.T) {
		assert.False(t, Username(""))
	})
}

func TestURL(t *testing.T) {
	t.Run("http_and_https", func(t *testing.T) {
		assert.True(t, URL("https://example.com"))
		assert.True(t, URL("http://example.com/path?q=1"))
	})

	t.Run("other_schemes_rejected", func(t *testing.T) {
		assert.False(t, URL("ftp://x.com"))
		assert.False(t, URL("javascript:alert(1)"))
		assert.False(t, URL("mailto:a@b.com"))
	})

	t.Run("malformed", func(t *testing.T) {
		assert.False(t, URL("not a url"))
		assert.False(t, URL(""))
		assert.False(t, URL("https://"))
		assert.False(t, URL("://missing-scheme.com"))
	})

	t.Run("relative_rejected", func(t *testing.T) {
		assert.False(t, URL("/just/a/path"))
		assert.False(t, URL("example.com"))
	})
}
