package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banrakshak/fra-ocr-service/internal/landcover"
	"github.com/banrakshak/fra-ocr-service/internal/models"
)

// distribution of 100 pixels with the given counts per class
func distribution(t *testing.T, counts map[landcover.Class]int) *landcover.Distribution {
	t.Helper()
	var pixels []uint8
	for c, n := range counts {
		for range n {
			pixels = append(pixels, uint8(c))
		}
	}
	d, err := landcover.FromClassMap(pixels)
	require.NoError(t, err)
	return d
}

func codes(r *ValidationResult) []string {
	var out []string
	for _, e := range r.Errors {
		out = append(out, e.Code)
	}
	for _, w := range r.Warnings {
		out = append(out, w.Code)
	}
	return out
}

func TestProfileValidator(t *testing.T) {
	farm := map[landcover.Class]int{
		landcover.Background:  20,
		landcover.Agriculture: 50,
		landcover.Tree:        30,
	}
	complete := func() *models.FRAClaimantProfile {
		return &models.FRAClaimantProfile{
			HolderName:          "Ram Lal",
			SocialCategory:      models.ScheduledTribe,
			LandUsePrimary:      "Agriculture",
			LandUseDistribution: models.LandUseDistribution{"Agriculture": "50.00%", "Tree": "30.00%"},
			WaterAccess:         "Presumed Rain-fed",
			Location:            &models.Location{District: "Solan", State: "Himachal Pradesh"},
		}
	}

	tests := []struct {
		name   string
		mutate func(p *models.FRAClaimantProfile)
		counts map[landcover.Class]int
		valid  bool
		codes  []string
	}{
		{
			name:   "consistent",
			mutate: func(*models.FRAClaimantProfile) {},
			counts: farm,
			valid:  true,
		},
		{
			name: "missing holder and bad category",
			mutate: func(p *models.FRAClaimantProfile) {
				p.HolderName = ""
				p.SocialCategory = "Farmer"
			},
			counts: farm,
			codes:  []string{"missing_holder_name", "invalid_social_category"},
		},
		{
			name: "shares do not add up",
			mutate: func(p *models.FRAClaimantProfile) {
				p.LandUseDistribution["Agriculture"] = "70%"
			},
			counts: farm,
			valid:  true,
			codes:  []string{"distribution_total_mismatch"},
		},
		{
			name: "rain-fed with surface water",
			mutate: func(p *models.FRAClaimantProfile) {
				p.LandUseDistribution = models.LandUseDistribution{"Agriculture": "50%", "Tree": "25%", "Water": "5%"}
			},
			counts: map[landcover.Class]int{
				landcover.Background:  20,
				landcover.Agriculture: 50,
				landcover.Tree:        25,
				landcover.Water:       5,
			},
			valid: true,
			codes: []string{"water_access_mismatch"},
		},
		{
			name: "primary is not the largest class",
			mutate: func(p *models.FRAClaimantProfile) {
				p.LandUsePrimary = "Tree"
			},
			counts: farm,
			valid:  true,
			codes:  []string{"land_use_primary_mismatch"},
		},
		{
			name: "no location",
			mutate: func(p *models.FRAClaimantProfile) {
				p.Location = nil
			},
			counts: farm,
			valid:  true,
			codes:  []string{"missing_district", "missing_state"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := complete()
			tt.mutate(p)

			result := NewProfileValidator().Validate(p, distribution(t, tt.counts))

			assert.Equal(t, tt.valid, result.Valid)
			assert.Equal(t, len(result.Warnings) > 0, result.NeedsReview)
			assert.Equal(t, tt.codes, codes(result))
		})
	}
}

func TestProfileValidator_WithoutLandCover(t *testing.T) {
	p := &models.FRAClaimantProfile{
		HolderName:          "Ram Lal",
		LandUseDistribution: models.LandUseDistribution{"Agriculture": "60%", "Forest": "about half"},
		WaterAccess:         "Presumed Rain-fed",
		Location:            &models.Location{District: "Solan", State: "Himachal Pradesh"},
	}

	result := NewProfileValidator().Validate(p, nil)

	assert.True(t, result.Valid)
	assert.Equal(t, []string{"distribution_unparseable", "distribution_total_mismatch"}, codes(result))
	assert.InDelta(t, 60.0, result.Computed.DistributionTotal, 0.001)
	assert.InDelta(t, 100.0, result.Computed.ExpectedTotal, 0.001)
}
