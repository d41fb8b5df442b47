package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/banrakshak/fra-ocr-service/internal/landcover"
	"github.com/banrakshak/fra-ocr-service/internal/models"
)

// ProfileSynthesizer merges a document analysis and land-cover data into one claimant profile.
type ProfileSynthesizer struct {
	provider Provider
	logger   *slog.Logger
}

// NewProfileSynthesizer creates a synthesizer backed by provider
func NewProfileSynthesizer(provider Provider, logger *slog.Logger) *ProfileSynthesizer {
	return &ProfileSynthesizer{provider: provider, logger: logger}
}

// DocumentAnalysisJSON renders the analysis the way the synthesizer prompt expects it,
// with the classification nested under "classification".
func DocumentAnalysisJSON(analysis *models.DocumentAnalysis, classification *models.DocumentClassification) (string, error) {
	doc := struct {
		*models.DocumentAnalysis
		Classification *models.DocumentClassification `json:"classification,omitempty"`
	}{analysis, classification}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Synthesize asks the model for a profile, validates it and fills the land-use
// fields the model left empty from the land-cover block. It returns the profile
// and the JSON object the model produced.
func (s *ProfileSynthesizer) Synthesize(ctx context.Context, documentAnalysis, landCoverText string) (*models.FRAClaimantProfile, string, error) {
	if s.provider == nil {
		return nil, "", ErrNoProvider
	}

	response, err := s.provider.Generate(ctx, Request{
		System:      profileSystemPrompt,
		Prompt:      profileUserPrompt(documentAnalysis, landCoverText),
		Temperature: 0.1,
		MaxTokens:   2048,
	})
	if err != nil {
		return nil, "", fmt.Errorf("profile synthesis failed: %w", err)
	}

	profile, obj, err := ParseProfile(response)
	if err != nil {
		return nil, obj, err
	}

	if dist, err := landcover.ParseText(landCoverText); err == nil {
		FillFromLandCover(profile, dist)
	} else {
		s.logger.Debug("land cover data not parsed", "error", err)
	}
	return profile, obj, nil
}

// ParseProfile locates, validates and decodes the profile JSON in a model response.
func ParseProfile(response string) (*models.FRAClaimantProfile, string, error) {
	obj, err := ExtractJSONObject(response)
	if err != nil {
		return nil, "", err
	}
	if err := ValidateJSONAgainstSchema(ProfileSchema, []byte(obj)); err != nil {
		return nil, obj, fmt.Errorf("invalid profile: %w", err)
	}

	var profile models.FRAClaimantProfile
	if err := json.Unmarshal([]byte(obj), &profile); err != nil {
		return nil, obj, fmt.Errorf("JSON parse error: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return nil, obj, err
	}
	return &profile, obj, nil
}

// FillFromLandCover sets land_use_primary, land_use_distribution and water_access
// from dist where the profile has none, and normalises a model class name in
// land_use_primary to its clean label.
func FillFromLandCover(p *models.FRAClaimantProfile, dist *landcover.Distribution) {
	if c, ok := landcover.ClassByName(p.LandUsePrimary); ok {
		p.LandUsePrimary = c.Label()
	}
	if strings.TrimSpace(p.LandUsePrimary) == "" {
		if c, ok := dist.Primary(); ok {
			p.LandUsePrimary = c.Label()
		}
	}
	if len(p.LandUseDistribution) == 0 {
		p.LandUseDistribution = dist.LandUse()
	}
	if strings.TrimSpace(p.WaterAccess) == "" {
		p.WaterAccess = dist.WaterAccess()
	}
	if p.Dependents == nil {
		p.Dependents = []string{}
	}
}
