// Package sanitizer normalizes free-text values stored by the service desk
// so they fit in a single report cell, and flags values that carry markup.
package sanitizer

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer normalizes free text and detects embedded HTML
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer creates a sanitizer whose markup check treats every
// HTML element and comment as markup
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// Clean drops control characters and collapses runs of whitespace to a
// single space. Everything else is kept literally, tag-like text included:
// audit records must show what was stored.
func (s *TextSanitizer) Clean(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	space := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsControl(r):
			// dropped
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}

	return b.String()
}

// HasMarkup reports whether text contains HTML elements or comments, i.e.
// whether the strict policy would remove anything from it
func (s *TextSanitizer) HasMarkup(text string) bool {
	if !strings.ContainsRune(text, '<') {
		return false
	}

	// the policy escapes the text it keeps; compare unescaped forms
	plain := s.Clean(text)
	stripped := html.UnescapeString(s.policy.Sanitize(plain))
	return s.Clean(stripped) != s.Clean(html.UnescapeString(plain))
}
