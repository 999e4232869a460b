// Package slug converts arbitrary Unicode strings into URL-safe ASCII slugs.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var multiHyphen = regexp.MustCompile(`-{2,}`)

// From lowercases s, strips accents and replaces every non-alphanumeric run
// with a single hyphen. It returns "" when nothing survives; callers choose
// their own fallback.
func From(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)

	folded = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return '-'
	}, folded)

	folded = multiHyphen.ReplaceAllString(folded, "-")
	return strings.Trim(folded, "-")
}

// isMn reports whether r is a combining mark.
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
