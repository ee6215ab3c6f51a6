package grading

import (
	"strings"
	"unicode"
)

var newlineReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeText collapses CRLF and CR newlines to LF and trims surrounding
// whitespace. It is applied to answers and to exact-match solution texts.
func NormalizeText(s string) string {
	return strings.TrimSpace(newlineReplacer.Replace(s))
}

// containsFold reports whether needle occurs in haystack ignoring case.
// Case is folded with strings.ToLower, the same rule exact matching uses.
// A blank needle never matches.
func containsFold(haystack, needle string) bool {
	if strings.TrimSpace(needle) == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// Tokenize lowercases s, turns every rune that is neither a letter nor
// whitespace into a space and splits on whitespace.
func Tokenize(s string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return r
		default:
			return ' '
		}
	}, s)
	return strings.Fields(cleaned)
}
