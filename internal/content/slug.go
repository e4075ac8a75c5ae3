package content

import (
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"

	"finitefield.org/contractor-site/internal/platform/validation"
)

// NormalizeSlug maps user input such as "Brandon" or "Commercial Construction"
// onto the canonical slug form. Input that already is a slug comes back
// unchanged, so "area51" and "zone-3b" keep their digits attached. The result
// is not guaranteed to be a valid slug; callers validate it.
func NormalizeSlug(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || validation.IsSlug(s) {
		return s
	}
	words := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_' || r == '.'
	})
	for i, w := range words {
		if camelCase(w) {
			words[i] = strcase.ToKebab(w)
			continue
		}
		words[i] = strings.ToLower(w)
	}
	s = strings.Trim(strings.Join(words, "-"), "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}

// camelCase reports whether w has a lower-case letter followed by an
// upper-case one, as in "CommercialConstruction".
func camelCase(w string) bool {
	prevLower := false
	for _, r := range w {
		if prevLower && unicode.IsUpper(r) {
			return true
		}
		prevLower = unicode.IsLower(r)
	}
	return false
}

// PrettifySlug turns a slug into a readable title, e.g. "hurricane-prep" =>
// "Hurricane Prep".
func PrettifySlug(slug string) string {
	parts := strings.Split(strings.TrimSpace(slug), "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
