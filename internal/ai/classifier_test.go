package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banrakshak/fra-ocr-service/internal/models"
)

func TestClassify_ModelResponse(t *testing.T) {
	provider := &fakeProvider{response: "Here you go:\n```json\n" + `{
		"document_type": "Forest Rights Title",
		"confidence_level": "high",
		"confidence_score": "92",
		"key_indicators": ["FRA", "Annexure II"],
		"reasoning": "Mentions {Annexure II}"
	}` + "\n```"}
	classifier := NewClassifier(provider, false, testLogger())

	result, err := classifier.Classify(context.Background(), "TITLE FOR FOREST LAND")
	require.NoError(t, err)

	assert.Equal(t, "Forest Rights Title", result.DocumentType)
	assert.Equal(t, models.ConfidenceHigh, result.ConfidenceLevel)
	assert.Equal(t, 92.0, result.ConfidenceScore)
	assert.Equal(t, []string{"FRA", "Annexure II"}, result.KeyIndicators)
	assert.Equal(t, []string{}, result.SuggestedActions)
	assert.Equal(t, "Not specified", result.DocumentPurpose)
	assert.Equal(t, "Not specified", result.IssuingAuthority)

	req := provider.last()
	assert.Contains(t, req.Prompt, `TEXT: "TITLE FOR FOREST LAND"`)
	assert.InDelta(t, 0.1, req.Temperature, 0.0001)
}

func TestClassify_RejectsBadResponses(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"no json", "I cannot classify this."},
		{"missing score", `{"document_type": "x", "confidence_level": "LOW"}`},
		{"bad level", `{"document_type": "x", "confidence_level": "CERTAIN", "confidence_score": 80}`},
		{"empty type", `{"document_type": "", "confidence_level": "LOW", "confidence_score": 10}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := NewClassifier(&fakeProvider{response: tt.response}, false, testLogger())
			_, err := classifier.Classify(context.Background(), "text")
			assert.Error(t, err)
		})
	}
}

func TestClassify_FallbackOnProviderError(t *testing.T) {
	provider := &fakeProvider{err: errUpstream}
	classifier := NewClassifier(provider, true, testLogger())

	result, err := classifier.Classify(context.Background(), "Annual income certificate issued by revenue office")
	require.NoError(t, err)
	assert.Equal(t, "income_certificate", result.DocumentType)
	assert.Contains(t, result.Reasoning, "Fallback classification due to API error")
	assert.Contains(t, result.Reasoning, "quota exceeded")
}

func TestClassify_NoProvider(t *testing.T) {
	_, err := NewClassifier(nil, false, testLogger()).Classify(context.Background(), "text")
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestKeywordClassify(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantType   string
		wantLevel  models.ConfidenceLevel
		wantScore  float64
		indicators []string
	}{
		{
			name: "forest rights title",
			text: "Title for forest land under occupation. Forest rights of scheduled tribal forest dwellers, " +
				"heritable but not transferable. Himachal Pradesh. Annexure II",
			wantType:  "forest_rights_certificate",
			wantLevel: models.ConfidenceMedium,
			wantScore: 100,
			indicators: []string{"forest rights", "forest dwellers", "scheduled", "tribal", "title", "forest land",
				"annexure", "occupation", "heritable", "transferable", "himachal pradesh"},
		},
		{
			name:       "weak income match",
			text:       "Annual Income statement, Revenue department",
			wantType:   "income_certificate",
			wantLevel:  models.ConfidenceLow,
			wantScore:  40,
			indicators: []string{"annual income", "revenue"},
		},
		{
			name:       "below threshold",
			text:       "voter list",
			wantType:   UnknownDocument,
			wantLevel:  models.ConfidenceLow,
			wantScore:  20,
			indicators: []string{},
		},
		{
			name:       "nothing",
			text:       "hello world",
			wantType:   UnknownDocument,
			wantLevel:  models.ConfidenceLow,
			wantScore:  0,
			indicators: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := KeywordClassify(tt.text, errUpstream)
			assert.Equal(t, tt.wantType, got.DocumentType)
			assert.Equal(t, tt.wantLevel, got.ConfidenceLevel)
			assert.InDelta(t, tt.wantScore, got.ConfidenceScore, 0.001)
			assert.Equal(t, tt.indicators, got.KeyIndicators)
			assert.Equal(t, []string{"Retry with API", "Manual review recommended", "Verify document quality"}, got.SuggestedActions)
		})
	}
}
