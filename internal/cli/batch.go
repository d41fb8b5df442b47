package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/banrakshak/fra-ocr-service/internal/artifacts"
	"github.com/banrakshak/fra-ocr-service/internal/export"
	"github.com/banrakshak/fra-ocr-service/internal/extract"
	"github.com/banrakshak/fra-ocr-service/internal/ingest"
	"github.com/banrakshak/fra-ocr-service/internal/models"
)

// BatchFile is the result file of a batch run
const BatchFile = "batch_results.json"

// BatchEntry is the outcome for one file. Error is set when it failed.
type BatchEntry struct {
	File           string                         `json:"file"`
	Extraction     *models.DocumentAnalysis       `json:"extraction,omitempty"`
	Classification *models.DocumentClassification `json:"classification,omitempty"`
	Error          string                         `json:"error,omitempty"`
}

// BatchResults is written as batch_results.json.
type BatchResults struct {
	Results []BatchEntry `json:"results"`
}

var (
	batchClassify bool
	batchXLSX     string
)

var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Process every scanned document in a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().BoolVar(&batchClassify, "classify", true, "Classify each document after extraction")
	batchCmd.Flags().StringVar(&batchXLSX, "xlsx", "", "Also write a spreadsheet of the results to this path")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	if svc.Parser == nil {
		return errNoOCR
	}
	files, err := ingest.Scan(args[0], ingest.DefaultExts)
	if err != nil {
		return fmt.Errorf("scan %s: %w", args[0], err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no image files found in %s", args[0])
	}

	var (
		results BatchResults
		rows    []export.Row
		failed  int
	)
	for i, file := range files {
		cmd.Printf("[%d/%d] %s\n", i+1, len(files), filepath.Base(file))
		res, err := processDocument(cmd.Context(), file, batchClassify)
		if err != nil {
			failed++
			svc.Logger.Error("document processing failed", "file", file, "error", err)
			results.Results = append(results.Results, BatchEntry{File: file, Error: err.Error()})
			if res != nil {
				rows = append(rows, export.Row{File: file, Analysis: res.Analysis})
			}
			continue
		}
		results.Results = append(results.Results, BatchEntry{
			File:           file,
			Extraction:     res.Analysis,
			Classification: res.Classification,
		})
		rows = append(rows, export.Row{File: file, Analysis: res.Analysis, Classification: res.Classification})
	}

	dir, err := artifacts.NewRunDir(filepath.Join(svc.Artifacts.Dir(), "batch_analysis"))
	if err != nil {
		return err
	}
	if _, err := artifacts.SaveJSON(dir, BatchFile, results); err != nil {
		return err
	}

	if batchXLSX != "" {
		data, err := export.AnalysesXLSX(rows, extract.DefaultCatalogue().Names())
		if err != nil {
			return fmt.Errorf("build spreadsheet: %w", err)
		}
		if err := os.WriteFile(batchXLSX, data, 0o644); err != nil {
			return err
		}
		cmd.Printf("Spreadsheet written to %s\n", batchXLSX)
	}

	cmd.Printf("Processed %d files, %d failed. Results saved to %s\n", len(files), failed, dir)
	return nil
}
