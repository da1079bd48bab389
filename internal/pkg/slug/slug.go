// Package slug builds URL slugs from free-form names.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	invalidChars = regexp.MustCompile(`[^\w\s-]`)
	separators   = regexp.MustCompile(`[-\s]+`)
)

// Make converts s to a lower-case ASCII slug: accents are folded, characters
// other than letters, digits, underscores and hyphens are dropped, and runs of
// whitespace or hyphens collapse into a single hyphen.
func Make(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	ascii := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, folded)

	ascii = invalidChars.ReplaceAllString(ascii, "")
	ascii = strings.ToLower(strings.TrimSpace(ascii))
	ascii = separators.ReplaceAllString(ascii, "-")
	return strings.Trim(ascii, "-")
}

// WithSuffix returns base with a numeric suffix; n == 0 returns base unchanged.
func WithSuffix(base string, n int) string {
	if n == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}
