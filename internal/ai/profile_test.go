package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banrakshak/fra-ocr-service/internal/models"
)

const landCoverBlock = "Background: 20.00%\nAgriculture land: 50.00%\nTree: 29.50%\nWater: 0.50%\n"

func TestSynthesize_FillsLandUseGaps(t *testing.T) {
	provider := &fakeProvider{response: "```json\n" + `{
		"holder_name": "Ram Lal",
		"dependents": "Sita Devi",
		"social_category": "Scheduled Tribe",
		"fra_right_type": "Individual Forest Rights",
		"location": {"village": "Kandaghat", "district": "Solan", "state": "Himachal Pradesh"}
	}` + "\n```"}
	synth := NewProfileSynthesizer(provider, testLogger())

	profile, raw, err := synth.Synthesize(context.Background(), `{"document_title": "Annexure II"}`, landCoverBlock)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(raw, "{"))
	assert.Equal(t, "Ram Lal", profile.HolderName)
	assert.Equal(t, []string{"Sita Devi"}, profile.Dependents)
	assert.Equal(t, "Agriculture", profile.LandUsePrimary)
	assert.Equal(t, models.LandUseDistribution{
		"Agriculture": "50.00%",
		"Tree":        "29.50%",
		"Water":       "0.50%",
	}, profile.LandUseDistribution)
	assert.Equal(t, "Presumed Rain-fed", profile.WaterAccess)
	require.NotNil(t, profile.Location)
	assert.Equal(t, "Solan", profile.Location.District)

	req := provider.last()
	assert.Equal(t, profileSystemPrompt, req.System)
	assert.Contains(t, req.Prompt, "**DOCUMENT_ANALYSIS_JSON:**\n{\"document_title\": \"Annexure II\"}")
	assert.Contains(t, req.Prompt, "**LAND_COVER_DATA:**\n"+landCoverBlock)
	assert.InDelta(t, 0.1, req.Temperature, 0.0001)
	assert.Equal(t, 2048, req.MaxTokens)
}

func TestSynthesize_KeepsModelValues(t *testing.T) {
	provider := &fakeProvider{response: `{
		"holder_name": "Ram Lal",
		"dependents": null,
		"land_use_primary": "Agriculture land",
		"land_use_distribution": {"Agriculture": 42.5, "Forest": "30%"},
		"water_access": "Canal irrigated"
	}`}
	profile, _, err := NewProfileSynthesizer(provider, testLogger()).Synthesize(context.Background(), "{}", landCoverBlock)
	require.NoError(t, err)

	assert.Equal(t, "Agriculture", profile.LandUsePrimary)
	assert.Equal(t, models.LandUseDistribution{"Agriculture": "42.5%", "Forest": "30%"}, profile.LandUseDistribution)
	assert.Equal(t, "Canal irrigated", profile.WaterAccess)
	assert.Equal(t, []string{}, profile.Dependents)
}

func TestSynthesize_Errors(t *testing.T) {
	_, _, err := NewProfileSynthesizer(nil, testLogger()).Synthesize(context.Background(), "{}", "")
	assert.ErrorIs(t, err, ErrNoProvider)

	_, _, err = NewProfileSynthesizer(&fakeProvider{err: errUpstream}, testLogger()).Synthesize(context.Background(), "{}", "")
	assert.ErrorIs(t, err, errUpstream)

	_, _, err = NewProfileSynthesizer(&fakeProvider{response: "no profile"}, testLogger()).Synthesize(context.Background(), "{}", "")
	assert.ErrorIs(t, err, ErrNoJSON)

	_, raw, err := NewProfileSynthesizer(&fakeProvider{response: `{"social_category": "Farmer"}`}, testLogger()).Synthesize(context.Background(), "{}", "")
	assert.Error(t, err)
	assert.Equal(t, `{"social_category": "Farmer"}`, raw)
}

func TestDocumentAnalysisJSON(t *testing.T) {
	analysis := &models.DocumentAnalysis{
		DocumentTitle:    "Annexure II",
		ExtractedFields:  map[string]string{"district": "Solan"},
		ProcessingStatus: models.StatusSuccess,
	}
	classification := &models.DocumentClassification{DocumentType: "forest_rights_certificate", ConfidenceLevel: models.ConfidenceHigh}

	out, err := DocumentAnalysisJSON(analysis, classification)
	require.NoError(t, err)
	assert.Contains(t, out, `"document_title": "Annexure II"`)
	assert.Contains(t, out, `"district": "Solan"`)
	assert.Contains(t, out, `"classification": {`)
	assert.Contains(t, out, `"document_type": "forest_rights_certificate"`)
}
