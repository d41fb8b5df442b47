package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Social categories accepted in a claimant profile
const (
	ScheduledTribe                = "Scheduled Tribe"
	OtherTraditionalForestDweller = "Other Traditional Forest Dweller"
)

// Location of the claimed land
type Location struct {
	Village  string `json:"village,omitempty"`
	Tehsil   string `json:"tehsil,omitempty"`
	District string `json:"district,omitempty"`
	State    string `json:"state,omitempty"`
}

// LandUseDistribution maps a land use label ("Agriculture", "Forest", "Water",
// "Settlement", "Other" or any extra category) to a percentage string like "42.5%".
type LandUseDistribution map[string]string

// UnmarshalJSON accepts numbers as well as strings, rendering numbers as "n%".
func (d *LandUseDistribution) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*d = nil
		return nil
	}
	out := make(LandUseDistribution, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64) + "%"
		case nil:
		default:
			return fmt.Errorf("land_use_distribution[%s]: unsupported value %v", k, v)
		}
	}
	*d = out
	return nil
}

// FRAClaimantProfile is the synthesized record for one FRA claimant
type FRAClaimantProfile struct {
	HolderName          string              `json:"holder_name,omitempty"`
	Dependents          []string            `json:"dependents"`
	SocialCategory      string              `json:"social_category,omitempty"`
	FRARightType        string              `json:"fra_right_type,omitempty"`
	LandUsePrimary      string              `json:"land_use_primary,omitempty"`
	LandUseDistribution LandUseDistribution `json:"land_use_distribution,omitempty"`
	WaterAccess         string              `json:"water_access,omitempty"`
	Location            *Location           `json:"location,omitempty"`
}

// UnmarshalJSON accepts dependents either as a list or as a single string.
func (p *FRAClaimantProfile) UnmarshalJSON(data []byte) error {
	type plain FRAClaimantProfile
	var raw struct {
		plain
		Dependents json.RawMessage `json:"dependents"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = FRAClaimantProfile(raw.plain)
	p.Dependents = []string{}

	if len(raw.Dependents) == 0 || string(raw.Dependents) == "null" {
		return nil
	}
	var single string
	if err := json.Unmarshal(raw.Dependents, &single); err == nil {
		if strings.TrimSpace(single) != "" {
			p.Dependents = []string{single}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw.Dependents, &list); err != nil {
		return fmt.Errorf("dependents: %w", err)
	}
	if list != nil {
		p.Dependents = list
	}
	return nil
}

// Validate checks the enumerated fields of the profile.
func (p *FRAClaimantProfile) Validate() error {
	switch p.SocialCategory {
	case "", ScheduledTribe, OtherTraditionalForestDweller:
		return nil
	}
	return fmt.Errorf("invalid social_category %q", p.SocialCategory)
}
