package extract

import (
	"strings"

	"github.com/banrakshak/fra-ocr-service/internal/models"
)

// Sources recorded on extracted fields
const (
	SourcePattern = "pattern"
	SourceTable   = "table"
)

// ExtractFieldDetails runs every field of the catalogue over text and returns
// the fields that produced a value, in catalogue order.
func ExtractFieldDetails(text string, catalogue Catalogue) []models.ExtractedField {
	lowered := strings.ToLower(text)
	found := make([]models.ExtractedField, 0, len(catalogue))
	for _, field := range catalogue {
		if ef, ok := field.Extract(lowered); ok {
			ef.Source = SourcePattern
			found = append(found, ef)
		}
	}
	return found
}

// ExtractFields is ExtractFieldDetails reduced to a name -> cleaned value map.
// Fields that were not found are absent, never empty.
func ExtractFields(text string, catalogue Catalogue) map[string]string {
	return toMap(ExtractFieldDetails(text, catalogue))
}

func toMap(fields []models.ExtractedField) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f.FieldName] = f.CleanedValue
	}
	return out
}
