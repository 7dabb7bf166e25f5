package caption

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// normalizeTitle re-cases titles that are shouted entirely in upper case so
// "HACK NIGHT" and "Hack Night" consolidate into one canonical record.
// Mixed-case titles pass through untouched.
func normalizeTitle(title string) string {
	if title == "" {
		return title
	}
	if !isShouted(title) {
		return title
	}
	return titleCaser.String(strings.ToLower(title))
}

func isShouted(s string) bool {
	sawLetter := false
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		sawLetter = true
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return sawLetter
}
