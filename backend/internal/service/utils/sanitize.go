package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// MaxEmailLength is the longest address RFC 5321 allows in a path.
const MaxEmailLength = 254

var strictPolicy = bluemonday.StrictPolicy()

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// SanitizeText trims and caps s, then strips every tag and escapes what is left.
// The cap applies before escaping, so the result may be a few bytes longer.
func SanitizeText(s string, maxRunes int) string {
	return strictPolicy.Sanitize(Truncate(strings.TrimSpace(s), maxRunes))
}

// SanitizeEmail keeps only characters legal in an address and caps the length.
// Validity is checked separately.
func SanitizeEmail(s string) string {
	s = strings.Map(func(r rune) rune {
		if isEmailRune(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(s))
	return Truncate(s, MaxEmailLength)
}

func isEmailRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("!#$%&'*+-=?^_`{|}~@.[]", r)
}
