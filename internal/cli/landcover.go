package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/banrakshak/fra-ocr-service/internal/ocr"
)

var landcoverName string

var landcoverCmd = &cobra.Command{
	Use:   "landcover [image]",
	Short: "Compute the land-cover distribution of a satellite image",
	Long: `Segments a satellite image with the land-cover model and prints the
LAND_COVER_DATA block. The block is saved as a land-cover artifact named
--name (default: the image file name) for use by fractl profile.`,
	Args: cobra.ExactArgs(1),
	RunE: runLandcover,
}

func init() {
	landcoverCmd.Flags().StringVar(&landcoverName, "name", "", "Artifact name (default: image base name)")
	rootCmd.AddCommand(landcoverCmd)
}

func runLandcover(cmd *cobra.Command, args []string) error {
	if svc.Segmenter == nil {
		return errors.New("segmentation model not configured")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	img, err := ocr.DecodeImage(data)
	if err != nil {
		return err
	}

	dist, err := svc.Segmenter.Segment(cmd.Context(), img)
	if err != nil {
		return err
	}

	name := landcoverName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	}
	text := dist.Text()
	path, err := svc.Artifacts.SaveLandCoverText(name, text)
	if err != nil {
		return err
	}
	cmd.Print(text)
	if !strings.HasSuffix(text, "\n") {
		cmd.Println()
	}
	cmd.Printf("Saved as land-cover artifact %q (%s)\n", name, path)
	return nil
}
