package ai

import (
	"math"
	"strings"

	"github.com/banrakshak/fra-ocr-service/internal/models"
)

// UnknownDocument is the type reported when no keyword set matches well enough
const UnknownDocument = "Unknown Document"

type documentPattern struct {
	docType  string
	keywords []string
}

// documentPatterns is ordered; on equal hits the earlier type wins.
var documentPatterns = []documentPattern{
	{"forest_rights_certificate", []string{"forest rights", "forest dwellers", "scheduled", "tribal", "title", "forest land", "annexure", "occupation", "heritable", "transferable", "himachal pradesh"}},
	{"income_certificate", []string{"income certificate", "annual income", "revenue", "salary", "earnings"}},
	{"caste_certificate", []string{"caste certificate", "scheduled caste", "scheduled tribe", "obc", "backward class"}},
	{"domicile_certificate", []string{"domicile", "residence", "permanent resident", "native"}},
	{"birth_certificate", []string{"birth certificate", "date of birth", "born", "birth registration"}},
	{"death_certificate", []string{"death certificate", "deceased", "death registration", "demise"}},
	{"land_record", []string{"land record", "khasra", "khata", "survey", "plot", "agricultural land"}},
	{"ration_card", []string{"ration card", "food security", "bpl", "apl", "public distribution"}},
	{"voter_id", []string{"voter", "election", "electoral", "voting", "constituency"}},
	{"driving_license", []string{"driving license", "motor vehicle", "transport", "license to drive"}},
}

var fallbackActions = []string{"Retry with API", "Manual review recommended", "Verify document quality"}

// KeywordClassify scores text against fixed keyword sets. cause is the model
// error that triggered the fallback and is reported in the reasoning.
func KeywordClassify(text string, cause error) *models.DocumentClassification {
	lower := strings.ToLower(text)

	var best *documentPattern
	bestHits := 0
	for i := range documentPatterns {
		p := &documentPatterns[i]
		hits := 0
		for _, kw := range p.keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = p, hits
		}
	}

	score := 0.0
	if best != nil {
		score = math.Min(float64(bestHits)/float64(len(best.keywords))*100, 100)
	}

	result := &models.DocumentClassification{
		DocumentType:     UnknownDocument,
		ConfidenceLevel:  models.ConfidenceLow,
		ConfidenceScore:  score,
		KeyIndicators:    []string{},
		SuggestedActions: append([]string(nil), fallbackActions...),
		DocumentPurpose:  notSpecified,
		IssuingAuthority: notSpecified,
	}
	if cause != nil {
		result.Reasoning = "Fallback classification due to API error: " + cause.Error()
	} else {
		result.Reasoning = "Fallback classification by keyword match"
	}

	if score >= 60 {
		result.ConfidenceLevel = models.ConfidenceMedium
	}
	if score >= 30 && best != nil {
		result.DocumentType = best.docType
		for _, kw := range best.keywords {
			if strings.Contains(lower, kw) {
				result.KeyIndicators = append(result.KeyIndicators, kw)
			}
		}
	}
	return result
}
