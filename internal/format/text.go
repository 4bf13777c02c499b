package format

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Truncate shortens s to max runes and appends "..." when it was longer.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// Upper upper-cases s using Spanish casing rules.
func Upper(s string) string {
	return cases.Upper(language.Spanish).String(s)
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(s string) string {
	lower := strings.ToLower(s)
	r, size := utf8.DecodeRuneInString(lower)
	if r == utf8.RuneError {
		return lower
	}
	return Upper(string(r)) + lower[size:]
}

// SafeFilename replaces every inner run of whitespace in name with a single
// underscore. Leading and trailing whitespace is dropped.
func SafeFilename(name string) string {
	return strings.Join(strings.FieldsFunc(name, unicode.IsSpace), "_")
}
