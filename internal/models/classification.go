package models

import "fmt"

// ConfidenceLevel is the coarse confidence of a classification
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "HIGH"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceLow    ConfidenceLevel = "LOW"
)

// ParseConfidenceLevel accepts only HIGH, MEDIUM or LOW.
func ParseConfidenceLevel(s string) (ConfidenceLevel, error) {
	switch ConfidenceLevel(s) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return ConfidenceLevel(s), nil
	}
	return "", fmt.Errorf("invalid confidence level %q", s)
}

// DocumentClassification is the document type verdict for one document
type DocumentClassification struct {
	DocumentType     string          `json:"document_type"`
	ConfidenceLevel  ConfidenceLevel `json:"confidence_level"`
	ConfidenceScore  float64         `json:"confidence_score"`
	Reasoning        string          `json:"reasoning"`
	KeyIndicators    []string        `json:"key_indicators"`
	SuggestedActions []string        `json:"suggested_actions"`
	DocumentPurpose  string          `json:"document_purpose"`
	IssuingAuthority string          `json:"issuing_authority"`
}
