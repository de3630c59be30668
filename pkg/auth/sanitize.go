package auth

import (
	"fmt"
	"html"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeName cleans a free-text profile field (name, region, district):
// control characters are dropped, runs of whitespace collapse to one space
// and the result is HTML-escaped.
func SanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)
	return html.EscapeString(strings.Join(strings.Fields(name), " "))
}

// ValidateStringLength validates that value has between min and max runes.
// A zero bound is not checked.
func ValidateStringLength(field, value string, min, max int) error {
	length := utf8.RuneCountInString(value)

	if min > 0 && length < min {
		return fmt.Errorf("%s must be at least %d characters long", field, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s must be at most %d characters long", field, max)
	}
	return nil
}
