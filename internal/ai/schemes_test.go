package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banrakshak/fra-ocr-service/internal/models"
)

func suggestionNames(s []models.SchemeSuggestion) []string {
	names := make([]string, len(s))
	for i, x := range s {
		names[i] = x.Name
	}
	return names
}

func TestLookupScheme(t *testing.T) {
	assert.Equal(t, "Pradhan Mantri Kisan Samman Nidhi", LookupScheme("pm-kisan").OfficialName)
	assert.Equal(t, "https://nrega.nic.in/", LookupScheme("MGNREGA (rural jobs)").Link)
	assert.Equal(t, "https://pmfby.gov.in/", LookupScheme("Fasal Bima").Link)

	generic := LookupScheme("Jal Jeevan Mission")
	assert.Equal(t, "Jal Jeevan Mission", generic.OfficialName)
	assert.Equal(t, GenericSchemeLink, generic.Link)
	assert.Equal(t, "Aadhaar Card, Bank Account", generic.Documents)

	assert.Len(t, Schemes(), 10)
}

func TestIdentifyRelevantSchemes(t *testing.T) {
	tests := []struct {
		name    string
		profile models.FRAClaimantProfile
		want    []string
	}{
		{
			name:    "minimal",
			profile: models.FRAClaimantProfile{},
			want:    []string{"MGNREGA", "Ayushman Bharat"},
		},
		{
			name: "tribal farmer near forest",
			profile: models.FRAClaimantProfile{
				SocialCategory:      models.ScheduledTribe,
				LandUsePrimary:      "Agriculture",
				LandUseDistribution: models.LandUseDistribution{"Agriculture": "60%", "Tree": "30.5%"},
			},
			want: []string{"PM-KISAN", "PM Fasal Bima", "PM-KUSUM", "MGNREGA", "PM Awas Yojana",
				"Ayushman Bharat", "National Livestock Mission", "PM Vishwakarma"},
		},
		{
			name: "forest dweller with no tree cover",
			profile: models.FRAClaimantProfile{
				SocialCategory:      models.OtherTraditionalForestDweller,
				LandUsePrimary:      "Rangeland",
				LandUseDistribution: models.LandUseDistribution{"Tree": "0.00%", "Rangeland": "80%"},
			},
			want: []string{"MGNREGA", "PM Awas Yojana", "Ayushman Bharat"},
		},
		{
			name: "forest share by key",
			profile: models.FRAClaimantProfile{
				LandUsePrimary:      "Bareland",
				LandUseDistribution: models.LandUseDistribution{"Forest": "5%", "Bareland": "95%"},
			},
			want: []string{"MGNREGA", "Ayushman Bharat", "National Livestock Mission", "PM Vishwakarma"},
		},
		{
			name: "forest mentioned in a value",
			profile: models.FRAClaimantProfile{
				LandUseDistribution: models.LandUseDistribution{"Other": "dense forest patches"},
			},
			want: []string{"MGNREGA", "Ayushman Bharat", "National Livestock Mission", "PM Vishwakarma"},
		},
		{
			name:    "forest primary",
			profile: models.FRAClaimantProfile{LandUsePrimary: "Forest"},
			want:    []string{"MGNREGA", "Ayushman Bharat", "National Livestock Mission", "PM Vishwakarma"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, suggestionNames(IdentifyRelevantSchemes(&tt.profile)))
		})
	}
}

func TestParseSchemeResponse(t *testing.T) {
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	profile := &models.FRAClaimantProfile{
		HolderName:     "Ram Lal",
		SocialCategory: models.ScheduledTribe,
		LandUsePrimary: "Agriculture",
		WaterAccess:    "Presumed Rain-fed",
		Location:       &models.Location{District: "Solan"},
	}

	response := "# Your schemes\nGood news!\n```json\n{\"scheme_analysis\": {\"high_priority\": []}}\n```\nBest wishes"
	report := ParseSchemeResponse(response, profile, now)

	assert.True(t, report.Success)
	assert.Equal(t, "# Your schemes\nGood news!", report.UserReport)
	assert.Contains(t, report.DeveloperJSON, "scheme_analysis")
	assert.Equal(t, response, report.RawResponse)
	assert.Equal(t, "Ram Lal", report.ClaimantName)
	assert.Equal(t, "2025-03-04T05:06:07Z", report.ProcessingTimestamp)
	assert.Equal(t, models.ProfileSummary{
		SocialCategory: models.ScheduledTribe,
		LandUsePrimary: "Agriculture",
		Location:       "Solan",
		WaterAccess:    "Presumed Rain-fed",
	}, report.AnalysisMetadata.ProfileSummary)
}

func TestParseSchemeResponse_BadOrMissingJSON(t *testing.T) {
	now := time.Now()

	report := ParseSchemeResponse("report\n```json\n{not json}\n```", &models.FRAClaimantProfile{}, now)
	assert.Contains(t, report.DeveloperJSON["error"], "JSON parse error")
	assert.Equal(t, "{not json}", report.DeveloperJSON["raw_json"])
	assert.Equal(t, "Unknown", report.ClaimantName)

	report = ParseSchemeResponse("just prose", &models.FRAClaimantProfile{}, now)
	assert.Equal(t, "No JSON block found in response", report.DeveloperJSON["error"])
	assert.Equal(t, "just prose", report.UserReport)
}

func TestRecommend(t *testing.T) {
	provider := &fakeProvider{response: "Report\n```json\n{\"scheme_analysis\": {}}\n```"}
	rec := NewRecommender(provider, testLogger())
	rec.now = func() time.Time { return time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC) }

	report, err := rec.Recommend(context.Background(), &models.FRAClaimantProfile{HolderName: "Ram Lal", LandUsePrimary: "Agriculture"})
	require.NoError(t, err)
	assert.True(t, report.Success)
	assert.Equal(t, "Report", report.UserReport)

	req := provider.last()
	assert.Contains(t, req.System, "Gram Sahayak")
	assert.Contains(t, req.System, "01 September 2025")
	assert.Contains(t, req.Prompt, "**PRE-IDENTIFIED RELEVANT SCHEMES:**")
	assert.Contains(t, req.Prompt, "Pradhan Mantri Kisan Samman Nidhi")
	assert.InDelta(t, 0.2, req.Temperature, 0.0001)
	assert.Equal(t, 4096, req.MaxTokens)
}

func TestRecommend_Failure(t *testing.T) {
	report, err := NewRecommender(&fakeProvider{err: errUpstream}, testLogger()).Recommend(context.Background(), &models.FRAClaimantProfile{})
	require.Error(t, err)
	require.NotNil(t, report)
	assert.False(t, report.Success)
	assert.Contains(t, report.Error, "quota exceeded")

	report, err = NewRecommender(nil, testLogger()).Recommend(context.Background(), &models.FRAClaimantProfile{})
	assert.ErrorIs(t, err, ErrNoProvider)
	assert.False(t, report.Success)
}

func TestReportFileName(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "scheme_analysis_ram_lal_20250102_030405.json", ReportFileName("Ram Lal", ts))
	assert.Equal(t, "scheme_analysis_unknown_20250102_030405.json", ReportFileName("", ts))
}
