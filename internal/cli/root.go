// Package cli implements the fractl operator commands.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/banrakshak/fra-ocr-service/internal/app"
	"github.com/banrakshak/fra-ocr-service/internal/artifacts"
	"github.com/banrakshak/fra-ocr-service/internal/config"
	"github.com/banrakshak/fra-ocr-service/internal/landcover"
	"github.com/banrakshak/fra-ocr-service/internal/models"
	"github.com/banrakshak/fra-ocr-service/internal/services"
)

var version = "dev"

// DocumentParser runs OCR and field extraction on one scan.
type DocumentParser interface {
	ParseFile(ctx context.Context, path string) *models.DocumentAnalysis
	EngineName() string
}

// Classifier labels the extracted text.
type Classifier interface {
	Classify(ctx context.Context, text string) (*models.DocumentClassification, error)
}

// Synthesizer builds a claimant profile.
type Synthesizer interface {
	Synthesize(ctx context.Context, documentAnalysis, landCoverText string) (*models.FRAClaimantProfile, string, error)
}

// Recommender produces a scheme report.
type Recommender interface {
	Recommend(ctx context.Context, profile *models.FRAClaimantProfile) (*models.SchemeReport, error)
}

// Services are the components the commands run on. Parser may be nil when OCR is unavailable.
type Services struct {
	Parser      DocumentParser
	Classifier  Classifier
	Synthesizer Synthesizer
	Recommender Recommender
	Segmenter   landcover.Segmenter
	Artifacts   *artifacts.Store
	Validator   *services.ProfileValidator
	Logger      *slog.Logger
}

var svc *Services

// SetServices replaces the components built from config.
func SetServices(s *Services) {
	svc = s
}

var (
	configPath   string
	providerName string
	modelName    string
	outputDir    string
)

var errNoOCR = errors.New("OCR is not available: install tesseract or check the ocr config")

var rootCmd = &cobra.Command{
	Use:   "fractl",
	Short: "Process FRA claim documents from the command line",
	Long: `fractl runs the FRA document pipeline locally: OCR and field extraction,
document classification, claimant profile synthesis, land-cover analysis and
scheme recommendation. Results are written as JSON under the output directory.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadServices,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the config file")
	rootCmd.PersistentFlags().StringVar(&providerName, "provider", "", "AI provider (gemini, openai, ollama)")
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "", "AI model override")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "Output directory (default from config)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadServices(cmd *cobra.Command, _ []string) error {
	if svc != nil || cmd.Name() == "version" {
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if outputDir != "" {
		cfg.Storage.OutputDir = outputDir
	}
	logger := config.NewLogger()

	comps := app.Build(cfg, providerName, modelName, logger)
	s := &Services{
		Classifier:  comps.Classifier,
		Synthesizer: comps.Synthesizer,
		Recommender: comps.Recommender,
		Segmenter:   comps.Segmenter,
		Artifacts:   comps.Artifacts,
		Validator:   comps.Validator,
		Logger:      logger,
	}
	if comps.Parser != nil {
		s.Parser = comps.Parser
	}
	svc = s
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printAnalysis(w io.Writer, a *models.DocumentAnalysis) {
	fmt.Fprintf(w, "Document title: %s\n", a.DocumentTitle)
	fmt.Fprintf(w, "OCR confidence: %.2f (best of %d variants: %s)\n", a.OCRConfidence, a.ExtractionVariants, a.BestVariant)
	if len(a.ExtractedFields) == 0 {
		fmt.Fprintln(w, "No fields extracted")
		return
	}
	fmt.Fprintln(w, "Extracted fields:")
	for _, name := range sortedKeys(a.ExtractedFields) {
		fmt.Fprintf(w, "  %-20s %s\n", name+":", a.ExtractedFields[name])
	}
}

func printClassification(w io.Writer, c *models.DocumentClassification) {
	fmt.Fprintf(w, "Document type: %s\n", c.DocumentType)
	fmt.Fprintf(w, "Confidence: %s (%.0f/100)\n", c.ConfidenceLevel, c.ConfidenceScore)
	if c.DocumentPurpose != "" {
		fmt.Fprintf(w, "Purpose: %s\n", c.DocumentPurpose)
	}
	if c.IssuingAuthority != "" {
		fmt.Fprintf(w, "Issuing authority: %s\n", c.IssuingAuthority)
	}
	if c.Reasoning != "" {
		fmt.Fprintf(w, "Reasoning: %s\n", c.Reasoning)
	}
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}

// documentResult is one processed scan.
type documentResult struct {
	Analysis       *models.DocumentAnalysis
	Classification *models.DocumentClassification
}

// processDocument parses path and classifies the text when asked to and when OCR found any.
func processDocument(ctx context.Context, path string, classify bool) (*documentResult, error) {
	if svc.Parser == nil {
		return nil, errNoOCR
	}
	analysis := svc.Parser.ParseFile(ctx, path)
	if !analysis.Succeeded() {
		return &documentResult{Analysis: analysis}, fmt.Errorf("%s: %s", path, analysis.ProcessingStatus)
	}

	res := &documentResult{Analysis: analysis}
	if !classify || svc.Classifier == nil || strings.TrimSpace(analysis.FullText) == "" {
		return res, nil
	}
	c, err := svc.Classifier.Classify(ctx, analysis.FullText)
	if err != nil {
		svc.Logger.Warn("classification failed", "file", path, "error", err)
		return res, nil
	}
	res.Classification = c
	return res, nil
}
