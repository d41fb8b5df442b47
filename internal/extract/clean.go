package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ocrArtifacts = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s\.,\-/]`)
	nonName      = regexp.MustCompile(`[^\p{L}\p{M}\s\.]`)
	nonArea      = regexp.MustCompile(`[^0-9\.\-\s]`)
	nonNumber    = regexp.MustCompile(`[^0-9/\-\s]`)
)

// Clean normalises a raw capture for the given kind. It is idempotent.
func Clean(kind Kind, value string) string {
	value = collapse(ocrArtifacts.ReplaceAllString(value, " "))

	switch kind {
	case KindName, KindLocation:
		words := strings.Fields(nonName.ReplaceAllString(value, " "))
		kept := words[:0]
		for _, w := range words {
			if utf8.RuneCountInString(w) > 1 {
				kept = append(kept, titleCase(w))
			}
		}
		value = strings.Join(kept, " ")
	case KindArea:
		value = collapse(nonArea.ReplaceAllString(value, " "))
	case KindNumber:
		value = collapse(nonNumber.ReplaceAllString(value, " "))
	}
	return strings.TrimSpace(value)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// titleCase upper-cases the first cased letter after every uncased rune and
// lower-cases the rest, so "o'neil.r" and "O'Neil.R" clean the same way.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevCased := false
	for _, r := range s {
		cased := unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
		switch {
		case cased && !prevCased:
			b.WriteRune(unicode.ToUpper(r))
		case cased:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prevCased = cased
	}
	return b.String()
}
