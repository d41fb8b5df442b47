//go:build cgo

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"

	"github.com/banrakshak/fra-ocr-service/internal/models"
)

// GosseractEngine runs tesseract in-process through gosseract.
// A client is created per call since gosseract clients are not safe for concurrent use.
type GosseractEngine struct {
	language       string
	tessdataPrefix string
}

func newNativeEngine(cfg models.OCRConfig) (Engine, error) {
	language := cfg.Language
	if language == "" {
		language = "eng"
	}
	return &GosseractEngine{language: language, tessdataPrefix: cfg.TessdataPrefix}, nil
}

func (g *GosseractEngine) Name() string { return "gosseract" }

// Recognize returns every word tesseract reports, with block/paragraph/line numbers.
func (g *GosseractEngine) Recognize(ctx context.Context, img image.Image) ([]WordInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if g.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(g.tessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(g.language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	words := make([]WordInfo, 0, len(boxes))
	for _, box := range boxes {
		words = append(words, WordInfo{
			Text:       box.Word,
			Confidence: box.Confidence,
			Box: BoundingBox{
				X:      box.Box.Min.X,
				Y:      box.Box.Min.Y,
				Width:  box.Box.Dx(),
				Height: box.Box.Dy(),
			},
			BlockNum: box.BlockNum,
			ParNum:   box.ParNum,
			LineNum:  box.LineNum,
			WordNum:  box.WordNum,
		})
	}
	return words, nil
}
