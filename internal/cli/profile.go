package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/banrakshak/fra-ocr-service/internal/landcover"
	"github.com/banrakshak/fra-ocr-service/internal/services"
)

var (
	profileDocument  string
	profileLandCover string
	profileArtifact  string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Build a claimant profile from a document analysis and land-cover data",
	Long: `Synthesizes an FRA claimant profile from a document analysis JSON file
(extraction_results.json or combined_results.json) and a LAND_COVER_DATA block.
The profile is validated and saved as the current profile artifact.`,
	Args: cobra.NoArgs,
	RunE: runProfile,
}

func init() {
	profileCmd.Flags().StringVar(&profileDocument, "document", "", "Document analysis JSON file (required)")
	profileCmd.Flags().StringVar(&profileLandCover, "landcover", "", "Land-cover text file")
	profileCmd.Flags().StringVar(&profileArtifact, "landcover-artifact", "", "Name of a saved land-cover artifact")
	_ = profileCmd.MarkFlagRequired("document")
	profileCmd.MarkFlagsMutuallyExclusive("landcover", "landcover-artifact")
	rootCmd.AddCommand(profileCmd)
}

func runProfile(cmd *cobra.Command, _ []string) error {
	if svc.Synthesizer == nil {
		return errors.New("profile synthesis requires an AI provider")
	}
	doc, err := os.ReadFile(profileDocument)
	if err != nil {
		return err
	}

	var landCoverText string
	switch {
	case profileLandCover != "":
		data, err := os.ReadFile(profileLandCover)
		if err != nil {
			return err
		}
		landCoverText = string(data)
	case profileArtifact != "":
		landCoverText, err = svc.Artifacts.LandCoverText(profileArtifact)
		if err != nil {
			return err
		}
	}

	profile, _, err := svc.Synthesizer.Synthesize(cmd.Context(), string(doc), landCoverText)
	if err != nil {
		return fmt.Errorf("profile synthesis failed: %w", err)
	}

	var dist *landcover.Distribution
	if landCoverText != "" {
		dist, _ = landcover.ParseText(landCoverText)
	}
	validation := svc.Validator.Validate(profile, dist)

	path, err := svc.Artifacts.SaveProfile(profile)
	if err != nil {
		return err
	}

	if err := printJSON(cmd.OutOrStdout(), profile); err != nil {
		return err
	}
	printValidation(cmd, validation)
	cmd.Printf("Profile saved to %s\n", path)
	return nil
}

func printValidation(cmd *cobra.Command, v *services.ValidationResult) {
	for _, e := range v.Errors {
		cmd.Printf("error: %s %s %s\n", e.Field, e.Code, e.Message)
	}
	for _, w := range v.Warnings {
		cmd.Printf("warning: %s %s %s\n", w.Field, w.Code, w.Message)
	}
	if v.NeedsReview {
		cmd.Println("Profile needs manual review")
	}
}
