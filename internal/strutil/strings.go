package strutil

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	bracketsRe    = regexp.MustCompile(`(\[(.*?)\]|\((.*?)\))`)
	nonAlphaNumRe = regexp.MustCompile(`[^a-zA-Z0-9\s]+`)
)

// RemoveNonAlphaNum removes all special characters in the string
func RemoveNonAlphaNum(s string) string {
	return nonAlphaNumRe.ReplaceAllString(s, " ")
}

// RemoveContentIntoBrackets removes content inside brackets, including brackets
func RemoveContentIntoBrackets(s string) string {
	return bracketsRe.ReplaceAllString(s, "")
}

// RemoveExtraSpaces collapses whitespace runs into a single space and trims the ends.
// For example RemoveExtraSpaces(" hello \t world ") return "hello world"
func RemoveExtraSpaces(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// NormalizeName turns a human readable currency name into a lookup key.
// For example NormalizeName("Chinese Yuan - Offshore (CNH)") return "chinese yuan offshore"
func NormalizeName(s string) string {
	s = RemoveContentIntoBrackets(s)
	s = RemoveNonAlphaNum(s)

	return strings.ToLower(RemoveExtraSpaces(s))
}
