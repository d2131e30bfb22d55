package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify derives a filesystem- and URL-safe identifier from free text:
// lower-cased, diacritics stripped, runs of non-alphanumerics collapsed into
// single hyphens.
func Slugify(parts ...string) string {
	joined := strings.ToLower(strings.Join(parts, " "))

	if stripped, _, err := transform.String(deaccent, joined); err == nil {
		joined = stripped
	}

	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range joined {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	return strings.TrimRight(b.String(), "-")
}
