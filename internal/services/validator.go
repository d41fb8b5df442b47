package services

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/banrakshak/fra-ocr-service/internal/landcover"
	"github.com/banrakshak/fra-ocr-service/internal/models"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// ValidationWarning represents a non-critical issue
type ValidationWarning struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ComputedValues holds the values the checks were made against
type ComputedValues struct {
	DistributionTotal float64 `json:"distribution_total"`
	ExpectedTotal     float64 `json:"expected_total"`
	WaterPercent      float64 `json:"water_percent,omitempty"`
	PrimaryClass      string  `json:"primary_class,omitempty"`
}

// ValidationResult is the response from validation
type ValidationResult struct {
	Valid       bool                `json:"valid"`
	NeedsReview bool                `json:"needs_review"`
	Errors      []ValidationError   `json:"errors"`
	Warnings    []ValidationWarning `json:"warnings"`
	Computed    ComputedValues      `json:"computed"`
}

// ProfileValidator cross-checks a synthesized profile against the land-cover data it was built from
type ProfileValidator struct {
	tolerance decimal.Decimal // percentage points
}

// NewProfileValidator creates a new validator with a 2 point tolerance
func NewProfileValidator() *ProfileValidator {
	return &ProfileValidator{tolerance: decimal.NewFromInt(2)}
}

var hundred = decimal.NewFromInt(100)

// Validate performs all cross-validations. dist may be nil when no land-cover
// data is available, in which case only the profile itself is checked.
func (v *ProfileValidator) Validate(p *models.FRAClaimantProfile, dist *landcover.Distribution) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
	}

	// 1. Identity and enumerations
	v.validateIdentity(p, result)

	// 2. Distribution sums to the non-background share
	v.validateDistribution(p, dist, result)

	// 3. Water access agrees with the water share
	v.validateWater(p, dist, result)

	// 4. Primary land use agrees with the largest class
	v.validatePrimary(p, dist, result)

	// 5. Location completeness
	v.validateLocation(p, result)

	result.Valid = len(result.Errors) == 0
	result.NeedsReview = len(result.Warnings) > 0
	return result
}

func (v *ProfileValidator) validateIdentity(p *models.FRAClaimantProfile, result *ValidationResult) {
	if strings.TrimSpace(p.HolderName) == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "holder_name",
			Code:    "missing_holder_name",
			Message: "Holder name is required",
		})
	}
	if err := p.Validate(); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "social_category",
			Code:    "invalid_social_category",
			Message: err.Error(),
		})
	}
}

var percentValue = regexp.MustCompile(`^\s*(-?[0-9]+(?:\.[0-9]+)?)`)

// validateDistribution checks the shares add up to 100, less the background
// share when the land-cover distribution is known.
func (v *ProfileValidator) validateDistribution(p *models.FRAClaimantProfile, dist *landcover.Distribution, result *ValidationResult) {
	if len(p.LandUseDistribution) == 0 {
		return
	}

	total := decimal.Zero
	for k, raw := range p.LandUseDistribution {
		m := percentValue.FindStringSubmatch(raw)
		if m == nil {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Field:   "land_use_distribution." + k,
				Code:    "distribution_unparseable",
				Message: "Share is not a percentage: " + raw,
			})
			continue
		}
		total = total.Add(decimal.RequireFromString(m[1]))
	}

	expected := hundred
	if dist != nil {
		expected = dist.Percents[landcover.Background].Neg().Add(hundred)
	}

	result.Computed.DistributionTotal = total.Round(2).InexactFloat64()
	result.Computed.ExpectedTotal = expected.Round(2).InexactFloat64()

	if total.Sub(expected).Abs().GreaterThan(v.tolerance) {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "land_use_distribution",
			Code:    "distribution_total_mismatch",
			Message: "Land use shares add up to " + total.Round(2).String() + "%, expected " + expected.Round(2).String() + "%",
		})
	}
}

func (v *ProfileValidator) validateWater(p *models.FRAClaimantProfile, dist *landcover.Distribution, result *ValidationResult) {
	if dist == nil || strings.TrimSpace(p.WaterAccess) == "" {
		return
	}

	water := dist.Percent(landcover.Water)
	result.Computed.WaterPercent = water

	access := strings.ToLower(p.WaterAccess)
	rainFed := strings.Contains(access, "rain-fed") || strings.Contains(access, "rainfed")
	switch {
	case rainFed && water >= landcover.RainFedThreshold:
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "water_access",
			Code:    "water_access_mismatch",
			Message: "Water access is rain-fed but the land cover shows surface water",
		})
	case !rainFed && strings.Contains(access, "surface water") && water < landcover.RainFedThreshold:
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "water_access",
			Code:    "water_access_mismatch",
			Message: "Water access claims surface water but the land cover shows almost none",
		})
	}
}

func (v *ProfileValidator) validatePrimary(p *models.FRAClaimantProfile, dist *landcover.Distribution, result *ValidationResult) {
	if dist == nil {
		return
	}
	primary, ok := dist.Primary()
	if !ok {
		return
	}
	result.Computed.PrimaryClass = primary.Label()

	if strings.TrimSpace(p.LandUsePrimary) == "" {
		return
	}
	if c, ok := landcover.ClassByName(p.LandUsePrimary); ok && c == primary {
		return
	}
	result.Warnings = append(result.Warnings, ValidationWarning{
		Field:   "land_use_primary",
		Code:    "land_use_primary_mismatch",
		Message: "Primary land use " + p.LandUsePrimary + " is not the largest class " + primary.Label(),
	})
}

func (v *ProfileValidator) validateLocation(p *models.FRAClaimantProfile, result *ValidationResult) {
	var district, state string
	if p.Location != nil {
		district, state = p.Location.District, p.Location.State
	}
	if strings.TrimSpace(district) == "" {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "location.district",
			Code:    "missing_district",
			Message: "District is missing",
		})
	}
	if strings.TrimSpace(state) == "" {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "location.state",
			Code:    "missing_state",
			Message: "State is missing",
		})
	}
}
