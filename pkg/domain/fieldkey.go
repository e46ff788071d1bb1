package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FieldKey derives the storage key of a user property from its display name.
// "Order Lines" becomes "orderLines", "Name" becomes "name".
func FieldKey(displayName string) string {
	words := strings.FieldsFunc(displayName, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return ""
	}

	lower := cases.Lower(language.Und)
	title := cases.Title(language.Und)

	var b strings.Builder
	b.WriteString(lower.String(words[0]))
	for _, w := range words[1:] {
		b.WriteString(title.String(w))
	}
	return b.String()
}
