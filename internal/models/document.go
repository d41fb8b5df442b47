package models

// Processing status values of a DocumentAnalysis
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ExtractedField is one value pulled out of a document before the passes are merged
type ExtractedField struct {
	FieldName      string `json:"field_name"`
	RawMatchedText string `json:"raw_matched_text"`
	CleanedValue   string `json:"cleaned_value"`
	Source         string `json:"source,omitempty"` // "pattern" or "table"
}

// NERInfo groups the named entities found in a document
type NERInfo struct {
	Persons       []string `json:"persons"`
	Locations     []string `json:"locations"`
	Organizations []string `json:"organizations"`
}

// DocumentAnalysis is the result of parsing one scanned document
type DocumentAnalysis struct {
	DocumentTitle      string            `json:"document_title"`
	ExtractedFields    map[string]string `json:"extracted_fields"`
	NERInfo            NERInfo           `json:"ner_info"`
	FullText           string            `json:"full_text"`
	OCRConfidence      float64           `json:"ocr_confidence"`
	ExtractionVariants int               `json:"extraction_variants"`
	BestVariant        string            `json:"best_variant,omitempty"`
	ProcessingStatus   string            `json:"processing_status"`
}

// Succeeded reports whether the document was parsed without error.
func (a *DocumentAnalysis) Succeeded() bool {
	return a != nil && a.ProcessingStatus == StatusSuccess
}

// FailedAnalysis builds the analysis returned when parsing fails.
func FailedAnalysis(err error) *DocumentAnalysis {
	return &DocumentAnalysis{
		DocumentTitle:    "Error processing document",
		ExtractedFields:  map[string]string{},
		NERInfo:          NERInfo{Persons: []string{}, Locations: []string{}, Organizations: []string{}},
		ProcessingStatus: StatusError + ": " + err.Error(),
	}
}
