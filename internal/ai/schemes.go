package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/banrakshak/fra-ocr-service/internal/models"
)

// Scheme is a named entry of the scheme database
type Scheme struct {
	Name string `json:"name"`
	models.SchemeInfo
}

var schemeDatabase = []Scheme{
	{"PM-KISAN", models.SchemeInfo{
		OfficialName: "Pradhan Mantri Kisan Samman Nidhi",
		Link:         "https://pmkisan.gov.in/",
		Description:  "Direct income support of ₹6000 per year to farmers",
		Documents:    "Aadhaar Card, Bank Account, Land Records",
	}},
	{"PM Awas Yojana", models.SchemeInfo{
		OfficialName: "Pradhan Mantri Awas Yojana - Gramin",
		Link:         "https://pmaymis.gov.in/",
		Description:  "Housing assistance for rural households",
		Documents:    "Aadhaar Card, Bank Account, Income Certificate",
	}},
	{"MGNREGA", models.SchemeInfo{
		OfficialName: "Mahatma Gandhi National Rural Employment Guarantee Act",
		Link:         "https://nrega.nic.in/",
		Description:  "100 days guaranteed employment per household",
		Documents:    "Aadhaar Card, Bank Account, Job Card",
	}},
	{"National Livestock Mission", models.SchemeInfo{
		OfficialName: "National Livestock Mission",
		Link:         "https://dahd.nic.in/schemes/programmes/national-livestock-mission",
		Description:  "Support for livestock development and productivity",
		Documents:    "Aadhaar Card, Bank Account, Caste Certificate",
	}},
	{"PM Fasal Bima", models.SchemeInfo{
		OfficialName: "Pradhan Mantri Fasal Bima Yojana",
		Link:         "https://pmfby.gov.in/",
		Description:  "Crop insurance scheme for farmers",
		Documents:    "Aadhaar Card, Bank Account, Land Records, Sowing Certificate",
	}},
	{"PM Matsya Sampada", models.SchemeInfo{
		OfficialName: "Pradhan Mantri Matsya Sampada Yojana",
		Link:         "https://pmmsy.dof.gov.in/",
		Description:  "Development of fisheries sector",
		Documents:    "Aadhaar Card, Bank Account, Fisherman Card",
	}},
	{"PM-KUSUM", models.SchemeInfo{
		OfficialName: "PM Kisan Urja Suraksha evam Utthaan Mahabhiyan",
		Link:         "https://pmkusum.mnre.gov.in/",
		Description:  "Solar energy solutions for farmers",
		Documents:    "Aadhaar Card, Bank Account, Land Records, Electricity Bill",
	}},
	{"Skill India", models.SchemeInfo{
		OfficialName: "Skill India Mission",
		Link:         "https://www.skillindia.gov.in/",
		Description:  "Skill development and training programs",
		Documents:    "Aadhaar Card, Educational Certificates",
	}},
	{"PM Vishwakarma", models.SchemeInfo{
		OfficialName: "PM Vishwakarma Yojana",
		Link:         "https://pmvishwakarma.gov.in/",
		Description:  "Support for traditional craftsmen and artisans",
		Documents:    "Aadhaar Card, Bank Account, Skill Certificate",
	}},
	{"Ayushman Bharat", models.SchemeInfo{
		OfficialName: "Ayushman Bharat - Pradhan Mantri Jan Arogya Yojana",
		Link:         "https://pmjay.gov.in/",
		Description:  "Health insurance coverage up to ₹5 lakhs",
		Documents:    "Aadhaar Card, Ration Card, SECC Database",
	}},
}

// GenericSchemeLink is returned for schemes that are not in the database
const GenericSchemeLink = "https://www.india.gov.in/topics/rural"

// Schemes returns the scheme database in its fixed order.
func Schemes() []Scheme {
	return append([]Scheme(nil), schemeDatabase...)
}

// LookupScheme finds a scheme whose key contains name or is contained in it,
// ignoring case. Unknown schemes get a generic entry.
func LookupScheme(name string) models.SchemeInfo {
	lower := strings.ToLower(name)
	for _, s := range schemeDatabase {
		key := strings.ToLower(s.Name)
		if strings.Contains(lower, key) || strings.Contains(key, lower) {
			return s.SchemeInfo
		}
	}
	return models.SchemeInfo{
		OfficialName: name,
		Link:         GenericSchemeLink,
		Description:  "Government scheme information",
		Documents:    "Aadhaar Card, Bank Account",
	}
}

// IdentifyRelevantSchemes pre-selects schemes from the profile before the model is asked.
func IdentifyRelevantSchemes(p *models.FRAClaimantProfile) []models.SchemeSuggestion {
	var out []models.SchemeSuggestion
	landUse := strings.ToLower(p.LandUsePrimary)

	if strings.Contains(landUse, "agriculture") {
		out = append(out,
			models.SchemeSuggestion{Name: "PM-KISAN", Priority: "high", Reason: "Direct farmer benefit"},
			models.SchemeSuggestion{Name: "PM Fasal Bima", Priority: "high", Reason: "Crop insurance for farmers"},
			models.SchemeSuggestion{Name: "PM-KUSUM", Priority: "medium", Reason: "Solar solutions for agriculture"},
		)
	}

	out = append(out, models.SchemeSuggestion{Name: "MGNREGA", Priority: "high", Reason: "Universal rural employment"})

	if strings.Contains(p.SocialCategory, "Traditional Forest Dweller") || strings.Contains(p.SocialCategory, "Scheduled Tribe") {
		out = append(out, models.SchemeSuggestion{Name: "PM Awas Yojana", Priority: "high", Reason: "Priority for ST/OTFD"})
	}

	out = append(out, models.SchemeSuggestion{Name: "Ayushman Bharat", Priority: "high", Reason: "Universal health coverage"})

	if strings.Contains(landUse, "forest") || forestInDistribution(p.LandUseDistribution) {
		out = append(out,
			models.SchemeSuggestion{Name: "National Livestock Mission", Priority: "medium", Reason: "Forest-based animal husbandry"},
			models.SchemeSuggestion{Name: "PM Vishwakarma", Priority: "medium", Reason: "Traditional forest crafts"},
		)
	}
	return out
}

var leadingNumber = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)`)

// forestInDistribution reports a value mentioning forest, or a forest or tree
// category with a non-zero share.
func forestInDistribution(dist models.LandUseDistribution) bool {
	for k, v := range dist {
		if strings.Contains(strings.ToLower(v), "forest") {
			return true
		}
		key := strings.ToLower(k)
		if !strings.Contains(key, "forest") && key != "tree" {
			continue
		}
		if m := leadingNumber.FindStringSubmatch(v); m != nil {
			if f, err := strconv.ParseFloat(m[1], 64); err == nil && f > 0 {
				return true
			}
		}
	}
	return false
}

// Recommender produces scheme recommendations for a claimant profile.
type Recommender struct {
	provider Provider
	logger   *slog.Logger
	now      func() time.Time
}

// NewRecommender creates a recommender backed by provider
func NewRecommender(provider Provider, logger *slog.Logger) *Recommender {
	return &Recommender{provider: provider, logger: logger, now: time.Now}
}

// Recommend always returns a report. On failure the report has Success false
// and the error is returned as well.
func (r *Recommender) Recommend(ctx context.Context, profile *models.FRAClaimantProfile) (*models.SchemeReport, error) {
	if r.provider == nil {
		return failedReport(r.now(), ErrNoProvider), ErrNoProvider
	}

	suggestions := IdentifyRelevantSchemes(profile)
	infos := make([]models.SchemeInfo, len(suggestions))
	for i, s := range suggestions {
		infos[i] = LookupScheme(s.Name)
	}

	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return failedReport(r.now(), err), err
	}
	schemesJSON, _ := json.MarshalIndent(infos, "", "  ")
	suggestionsJSON, _ := json.MarshalIndent(suggestions, "", "  ")

	response, err := r.provider.Generate(ctx, Request{
		System:      schemeSystemPrompt(r.now()),
		Prompt:      schemeUserPrompt(string(profileJSON), string(schemesJSON), string(suggestionsJSON)),
		Temperature: 0.2,
		MaxTokens:   4096,
	})
	if err != nil {
		err = fmt.Errorf("error in enhanced analysis: %w", err)
		return failedReport(r.now(), err), err
	}
	if strings.TrimSpace(response) == "" {
		err = ErrEmptyResponse
		return failedReport(r.now(), err), err
	}

	r.logger.Info("scheme analysis generated", "claimant", profile.HolderName, "suggested", len(suggestions))
	return ParseSchemeResponse(response, profile, r.now()), nil
}

func failedReport(now time.Time, err error) *models.SchemeReport {
	return &models.SchemeReport{
		Success:             false,
		Error:               err.Error(),
		ProcessingTimestamp: now.Format(time.RFC3339),
	}
}

// ParseSchemeResponse splits the model output into the markdown report and the
// fenced developer JSON block.
func ParseSchemeResponse(response string, profile *models.FRAClaimantProfile, now time.Time) *models.SchemeReport {
	report := &models.SchemeReport{
		Success:             true,
		RawResponse:         response,
		ClaimantName:        orDefault(profile.HolderName, "Unknown"),
		ProcessingTimestamp: now.Format(time.RFC3339),
	}

	const fence = "```json"
	start := strings.Index(response, fence)
	end := -1
	if start >= 0 {
		if i := strings.Index(response[start+len(fence):], "```"); i >= 0 {
			end = start + len(fence) + i
		}
	}

	if start >= 0 && end >= 0 {
		content := strings.TrimSpace(response[start+len(fence) : end])
		report.UserReport = strings.TrimSpace(response[:start])
		var dev map[string]interface{}
		if err := json.Unmarshal([]byte(content), &dev); err != nil {
			dev = map[string]interface{}{
				"error":    "JSON parse error: " + err.Error(),
				"raw_json": content,
			}
		}
		report.DeveloperJSON = dev
	} else {
		report.UserReport = response
		report.DeveloperJSON = map[string]interface{}{"error": "No JSON block found in response"}
	}

	summary := &report.AnalysisMetadata.ProfileSummary
	summary.SocialCategory = profile.SocialCategory
	summary.LandUsePrimary = profile.LandUsePrimary
	summary.WaterAccess = profile.WaterAccess
	if profile.Location != nil {
		summary.Location = profile.Location.District
	}
	return report
}

var nonFileChars = regexp.MustCompile(`[^a-z0-9_\-]+`)

// ReportFileName is the artifact name of a scheme analysis:
// scheme_analysis_<claimant>_<YYYYMMDD_HHMMSS>.json
func ReportFileName(claimant string, ts time.Time) string {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(claimant)), " ", "_")
	name = nonFileChars.ReplaceAllString(name, "")
	if name == "" {
		name = "unknown"
	}
	return fmt.Sprintf("scheme_analysis_%s_%s.json", name, ts.Format("20060102_150405"))
}
