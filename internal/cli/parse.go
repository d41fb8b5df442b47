package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/banrakshak/fra-ocr-service/internal/artifacts"
	"github.com/banrakshak/fra-ocr-service/internal/models"
)

// Run files written by parse
const (
	ExtractionFile     = "extraction_results.json"
	ClassificationFile = "classification_results.json"
	CombinedFile       = "combined_results.json"
)

// CombinedResult is the single-document output of parse.
type CombinedResult struct {
	Extraction      *models.DocumentAnalysis       `json:"extraction"`
	Classification  *models.DocumentClassification `json:"classification,omitempty"`
	ImagePath       string                         `json:"image_path"`
	OutputDirectory string                         `json:"output_directory"`
}

var (
	parseClassify bool
	parseJSON     bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [image]",
	Short: "Extract fields from one scanned FRA document",
	Long: `Runs OCR and field extraction on one scan and, unless --classify=false,
classifies the document. Results are written to a new document_analysis_<timestamp>
directory under the output directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseClassify, "classify", true, "Classify the document after extraction")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "Print the combined result as JSON")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]
	res, err := processDocument(cmd.Context(), path, parseClassify)
	if err != nil {
		return err
	}

	dir, err := artifacts.NewRunDir(filepath.Join(svc.Artifacts.Dir(), "document_analysis"))
	if err != nil {
		return err
	}
	if _, err := artifacts.SaveJSON(dir, ExtractionFile, res.Analysis); err != nil {
		return err
	}
	if res.Classification != nil {
		if _, err := artifacts.SaveJSON(dir, ClassificationFile, res.Classification); err != nil {
			return err
		}
	}
	combined := CombinedResult{
		Extraction:      res.Analysis,
		Classification:  res.Classification,
		ImagePath:       path,
		OutputDirectory: dir,
	}
	if _, err := artifacts.SaveJSON(dir, CombinedFile, combined); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if parseJSON {
		return printJSON(out, combined)
	}
	printAnalysis(out, res.Analysis)
	if res.Classification != nil {
		printClassification(out, res.Classification)
	}
	cmd.Printf("Results saved to %s\n", dir)
	return nil
}
