package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/banrakshak/fra-ocr-service/internal/ai"
	"github.com/banrakshak/fra-ocr-service/internal/artifacts"
	"github.com/banrakshak/fra-ocr-service/internal/models"
)

var (
	schemesProfile string
	schemesList    bool
	schemesJSON    bool
)

var schemesCmd = &cobra.Command{
	Use:   "schemes",
	Short: "Recommend government schemes for a claimant profile",
	Long: `Recommends central government schemes for a claimant profile. Uses --profile
when given, otherwise the current profile artifact. The report is saved as
scheme_analysis_<claimant>_<timestamp>.json. --list prints the scheme database.`,
	Args: cobra.NoArgs,
	RunE: runSchemes,
}

func init() {
	schemesCmd.Flags().StringVar(&schemesProfile, "profile", "", "Claimant profile JSON file")
	schemesCmd.Flags().BoolVar(&schemesList, "list", false, "List the known schemes and exit")
	schemesCmd.Flags().BoolVar(&schemesJSON, "json", false, "Print the full report as JSON")
	rootCmd.AddCommand(schemesCmd)
}

func runSchemes(cmd *cobra.Command, _ []string) error {
	if schemesList {
		for _, s := range ai.Schemes() {
			cmd.Printf("%-28s %s\n  %s\n", s.Name, s.Description, s.Link)
		}
		return nil
	}
	if svc.Recommender == nil {
		return errors.New("scheme analysis requires an AI provider")
	}

	var profile *models.FRAClaimantProfile
	if schemesProfile != "" {
		var p models.FRAClaimantProfile
		if err := artifacts.LoadJSON(schemesProfile, &p); err != nil {
			return err
		}
		if err := p.Validate(); err != nil {
			return err
		}
		profile = &p
	} else {
		p, err := svc.Artifacts.LatestProfile()
		if errors.Is(err, artifacts.ErrNotFound) {
			return errors.New("no claimant profile found: run fractl profile or pass --profile")
		}
		if err != nil {
			return err
		}
		profile = p
	}

	report, err := svc.Recommender.Recommend(cmd.Context(), profile)
	if err != nil {
		return err
	}
	path, err := svc.Artifacts.SaveSchemeReport(report, time.Now())
	if err != nil {
		return err
	}

	if schemesJSON {
		return printJSON(cmd.OutOrStdout(), report)
	}
	cmd.Println(report.UserReport)
	cmd.Printf("\nReport saved to %s\n", path)
	return nil
}
