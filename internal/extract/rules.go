// Package extract pulls key/value fields out of OCR text of FRA land-rights documents.
//
// Every field owns an ordered list of rules. Rules are tried lazily, in order,
// and the first one producing a usable cleaned value wins; the rest are never run.
package extract

import (
	"iter"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/banrakshak/fra-ocr-service/internal/models"
)

// Kind selects the cleaning applied to a field value
type Kind int

const (
	KindText Kind = iota
	KindName
	KindLocation
	KindArea
	KindNumber
)

// Rule is one extraction attempt for a field. When is an optional cheap
// predicate; Values yields raw captures in document order.
type Rule struct {
	Name   string
	When   func(text string) bool
	Values func(text string) iter.Seq[string]
}

// Field is a named field with its ordered rules
type Field struct {
	Name  string
	Kind  Kind
	Rules []Rule
}

// Catalogue is the ordered set of fields extracted from a document
type Catalogue []Field

// Pattern builds a rule from a regular expression with exactly one capture group.
// Matching is case-insensitive, multiline and lets '.' cross newlines.
func Pattern(expr string) Rule {
	re := regexp.MustCompile("(?ims)" + expr)
	return Rule{
		Name:   expr,
		Values: submatches(re),
	}
}

// KeywordPattern is Pattern gated on the text containing keyword.
func KeywordPattern(keyword, expr string) Rule {
	r := Pattern(expr)
	r.When = func(text string) bool { return strings.Contains(text, keyword) }
	return r
}

// submatches walks the matches of re one at a time, yielding group 1.
func submatches(re *regexp.Regexp) func(string) iter.Seq[string] {
	return func(text string) iter.Seq[string] {
		return func(yield func(string) bool) {
			pos := 0
			for pos <= len(text) {
				loc := re.FindStringSubmatchIndex(text[pos:])
				if loc == nil {
					return
				}
				if len(loc) >= 4 && loc[2] >= 0 {
					if !yield(text[pos+loc[2] : pos+loc[3]]) {
						return
					}
				}
				next := pos + loc[1]
				if loc[1] == loc[0] {
					// empty match, step one rune forward
					_, size := utf8.DecodeRuneInString(text[next:])
					if size == 0 {
						return
					}
					next += size
				}
				pos = next
			}
		}
	}
}

// Extract runs the field's rules in order and returns the first capture whose
// cleaned value is longer than one character.
func (f Field) Extract(text string) (models.ExtractedField, bool) {
	for _, rule := range f.Rules {
		if rule.When != nil && !rule.When(text) {
			continue
		}
		for raw := range rule.Values(text) {
			value := Clean(f.Kind, raw)
			if utf8.RuneCountInString(value) > 1 {
				return models.ExtractedField{
					FieldName:      f.Name,
					RawMatchedText: strings.TrimSpace(raw),
					CleanedValue:   value,
				}, true
			}
		}
	}
	return models.ExtractedField{}, false
}

// Lookup returns the field with the given name.
func (c Catalogue) Lookup(name string) (Field, bool) {
	for _, f := range c {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Names lists the field names in catalogue order.
func (c Catalogue) Names() []string {
	names := make([]string, len(c))
	for i, f := range c {
		names[i] = f.Name
	}
	return names
}
