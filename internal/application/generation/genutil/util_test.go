package genutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONObject(t *testing.T) {
	t.Run("plain object", func(t *testing.T) {
		assert.Equal(t, `{"a":1}`, ExtractJSONObject(`{"a":1}`))
	})

	t.Run("markdown fenced", func(t *testing.T) {
		in := "```json\n{\"a\":1}\n```"
		assert.Equal(t, `{"a":1}`, ExtractJSONObject(in))
	})

	t.Run("prefix noise", func(t *testing.T) {
		in := `Here is the result: {"a": {"b": 2}} hope it helps`
		assert.Equal(t, `{"a": {"b": 2}}`, ExtractJSONObject(in))
	})

	t.Run("array", func(t *testing.T) {
		assert.Equal(t, `[1,2]`, ExtractJSONObject("noise [1,2] noise"))
	})

	t.Run("no json falls back to trimmed input", func(t *testing.T) {
		assert.Equal(t, "not json at all", ExtractJSONObject("  not json at all  "))
	})
}

func TestStripQuotes(t *testing.T) {
	assert.Equal(t, "abc123", StripQuotes(` "abc123" `))
	assert.Equal(t, "abc123", StripQuotes(`'abc123'`))
	assert.Equal(t, "abc123", StripQuotes("abc123"))
}
