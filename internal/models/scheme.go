package models

// SchemeInfo describes a government welfare scheme
type SchemeInfo struct {
	OfficialName string `json:"official_name"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	Documents    string `json:"documents"`
}

// SchemeSuggestion is a scheme pre-selected from the profile before the LLM call
type SchemeSuggestion struct {
	Name     string `json:"name"`
	Priority string `json:"priority"` // "high" or "medium"
	Reason   string `json:"reason"`
}

// ProfileSummary is the short profile echo attached to a scheme report
type ProfileSummary struct {
	SocialCategory string `json:"social_category"`
	LandUsePrimary string `json:"land_use_primary"`
	Location       string `json:"location"`
	WaterAccess    string `json:"water_access"`
}

// SchemeReport is the full recommendation output for one claimant
type SchemeReport struct {
	Success             bool                   `json:"success"`
	Error               string                 `json:"error,omitempty"`
	UserReport          string                 `json:"user_report"`
	DeveloperJSON       map[string]interface{} `json:"developer_json"`
	RawResponse         string                 `json:"raw_response"`
	ClaimantName        string                 `json:"claimant_name"`
	ProcessingTimestamp string                 `json:"processing_timestamp"`
	AnalysisMetadata    struct {
		ProfileSummary ProfileSummary `json:"profile_summary"`
	} `json:"analysis_metadata"`
}
