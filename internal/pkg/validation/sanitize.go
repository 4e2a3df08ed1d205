package validation

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	richPolicy   = newRichTextPolicy()
)

// newRichTextPolicy allows basic formatting in job and company descriptions
func newRichTextPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "em", "b", "i", "u", "ul", "ol", "li", "h3", "h4", "blockquote")
	p.AllowStandardURLs()
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoFollowOnLinks(true)
	return p
}

// maxSanitizePasses bounds the decode/strip loop for nested entity encodings
const maxSanitizePasses = 5

// SanitizeText strips all markup and returns plain text, so "R&D" is stored
// unchanged. Decoded entities are sanitized again until nothing changes, which
// keeps "&lt;script&gt;" from coming back as a tag. Input that is still
// changing after maxSanitizePasses is returned entity-escaped.
func SanitizeText(s string) string {
	for i := 0; i < maxSanitizePasses; i++ {
		clean := html.UnescapeString(strictPolicy.Sanitize(s))
		if clean == s {
			return strings.TrimSpace(clean)
		}
		s = clean
	}
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}

// SanitizeRichText keeps a small set of formatting tags and drops everything else
func SanitizeRichText(s string) string {
	return strings.TrimSpace(richPolicy.Sanitize(s))
}

// SanitizeList sanitizes each element, drops empties and duplicates (case-insensitive)
func SanitizeList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		clean := SanitizeText(item)
		if clean == "" {
			continue
		}
		key := strings.ToLower(clean)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, clean)
	}
	return out
}
