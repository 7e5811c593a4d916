package service

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/datatypes"
)

const (
	excerptLength = 200
	maxTags       = 20

	// Room is left for the "-xxxxxx" suffix added on collisions.
	maxPostSlugLength     = 255 - 7
	maxCategorySlugLength = 64
)

var (
	// Policies are safe for concurrent use once built.
	contentPolicy = bluemonday.UGCPolicy()
	textPolicy    = bluemonday.StrictPolicy()
)

// sanitizeContent strips scripts, event handlers and other unsafe markup from post HTML.
func sanitizeContent(raw string) string {
	return strings.TrimSpace(contentPolicy.Sanitize(raw))
}

// plainText renders HTML as whitespace-normalised text.
func plainText(raw string) string {
	stripped := textPolicy.Sanitize(strings.ReplaceAll(raw, "<", " <"))
	return strings.Join(strings.Fields(html.UnescapeString(stripped)), " ")
}

// deriveExcerpt shortens the text of content to at most excerptLength runes,
// cutting at a word boundary when possible.
func deriveExcerpt(content string) string {
	text := plainText(content)
	if utf8.RuneCountInString(text) <= excerptLength {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:excerptLength])
	if i := strings.LastIndex(cut, " "); i > excerptLength/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "..."
}

// normalizeTags lower-cases, trims and de-duplicates tags, keeping first-seen order.
func normalizeTags(tags []string) datatypes.JSONSlice[string] {
	out := datatypes.JSONSlice[string]{}
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
		if len(out) == maxTags {
			break
		}
	}
	return out
}

// makeSlug derives a URL-safe slug of at most maxLen bytes, cutting at a
// hyphen when possible; empty when s has no sluggable characters.
// Transliteration can make the slug several times longer than s.
func makeSlug(s string, maxLen int) string {
	out := slug.Make(strings.TrimSpace(s))
	if len(out) <= maxLen {
		return out
	}
	out = out[:maxLen]
	if i := strings.LastIndexByte(out, '-'); i > 0 {
		out = out[:i]
	}
	return strings.Trim(out, "-")
}
