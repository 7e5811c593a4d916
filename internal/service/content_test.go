package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeContent(t *testing.T) {
	out := sanitizeContent(`<p onclick="steal()">Hello <strong>world</strong></p><script>alert(1)</script>`)

	assert.Contains(t, out, "<strong>world</strong>")
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "onclick")
}

func TestDeriveExcerpt(t *testing.T) {
	assert.Equal(t, "Hello world & friends", deriveExcerpt("<h1>Hello</h1><p>world &amp; friends</p>"))

	long := "<p>" + strings.Repeat("lorem ipsum ", 60) + "</p>"
	excerpt := deriveExcerpt(long)
	assert.True(t, strings.HasSuffix(excerpt, "..."))
	assert.LessOrEqual(t, utf8.RuneCountInString(excerpt), excerptLength+3)
	assert.False(t, strings.Contains(excerpt, "<p>"))
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"go", "web"}, []string(normalizeTags([]string{" Go ", "web", "GO", "", "  "})))
	assert.NotNil(t, normalizeTags(nil))

	many := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		many = append(many, strings.Repeat("t", i+1))
	}
	assert.Len(t, normalizeTags(many), maxTags)
}

func TestMakeSlug(t *testing.T) {
	assert.Equal(t, "hello-world", makeSlug("  Hello, World!  ", maxPostSlugLength))
	assert.Equal(t, "", makeSlug("!!!", maxPostSlugLength))
}

func TestMakeSlug_Length(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
	}{
		{name: "transliterated title", input: strings.Repeat("中", 200), maxLen: maxPostSlugLength},
		{name: "long latin title", input: strings.Repeat("word ", 60), maxLen: maxPostSlugLength},
		{name: "transliterated category name", input: strings.Repeat("Ж", 50), maxLen: maxCategorySlugLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := makeSlug(tt.input, tt.maxLen)
			assert.NotEmpty(t, got)
			assert.LessOrEqual(t, len(got), tt.maxLen)
			assert.False(t, strings.HasPrefix(got, "-"))
			assert.False(t, strings.HasSuffix(got, "-"))
		})
	}

	assert.Equal(t, "word-word", makeSlug("word word word", 12))
}
