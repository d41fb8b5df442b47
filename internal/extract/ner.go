package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/banrakshak/fra-ocr-service/internal/models"
)

// EntityRecognizer finds person, location and organization names in a document.
type EntityRecognizer interface {
	Recognize(ctx context.Context, text string, fields map[string]string) (models.NERInfo, error)
}

// FieldEntityRecognizer derives entities from the extracted fields plus a scan
// for issuing bodies in the raw text. It needs no model files.
type FieldEntityRecognizer struct{}

var (
	dependentSplit = regexp.MustCompile(`(?i),|;|\n|\band\b|&`)
	orgMarkers     = []string{
		"gram sabha", "forest department", "department", "committee",
		"government of", "panchayat", "collector", "tribal welfare",
	}
)

// Recognize never fails; the error is part of the interface for model backed recognizers.
func (FieldEntityRecognizer) Recognize(_ context.Context, text string, fields map[string]string) (models.NERInfo, error) {
	info := models.NERInfo{Persons: []string{}, Locations: []string{}, Organizations: []string{}}

	persons := newOrderedSet()
	persons.add(fields[FieldHolderName])
	persons.add(fields[FieldFatherMotherName])
	for _, d := range dependentSplit.Split(fields[FieldDependents], -1) {
		persons.add(Clean(KindName, d))
	}
	info.Persons = persons.items

	locations := newOrderedSet()
	for _, name := range []string{FieldVillageGram, FieldGramPanchayat, FieldTehsil, FieldDistrict} {
		locations.add(Clean(KindLocation, fields[name]))
	}
	info.Locations = locations.items

	orgs := newOrderedSet()
	for _, line := range nonBlankLines(text) {
		lower := strings.ToLower(line)
		for _, marker := range orgMarkers {
			if strings.Contains(lower, marker) {
				orgs.add(Clean(KindText, line))
				break
			}
		}
	}
	info.Organizations = orgs.items
	return info, nil
}

type orderedSet struct {
	seen  map[string]bool
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: map[string]bool{}, items: []string{}}
}

func (s *orderedSet) add(v string) {
	v = strings.TrimSpace(v)
	if len([]rune(v)) <= 1 || s.seen[strings.ToLower(v)] {
		return
	}
	s.seen[strings.ToLower(v)] = true
	s.items = append(s.items, v)
}
