package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/banrakshak/fra-ocr-service/internal/models"
)

// Engine runs OCR over one image and returns word level results
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image) ([]WordInfo, error)
}

// WordInfo contains detailed information about a detected word
type WordInfo struct {
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"` // 0-100 as reported by tesseract
	Box        BoundingBox `json:"box"`
	BlockNum   int         `json:"block_num"`
	ParNum     int         `json:"par_num"`
	LineNum    int         `json:"line_num"`
	WordNum    int         `json:"word_num"`
}

// BoundingBox represents the location of text in the image
type BoundingBox struct {
	X      int `json:"left"`
	Y      int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

var errNoNativeEngine = errors.New("native tesseract bindings not compiled in")

// NewEngine picks the OCR engine named in the config. The native gosseract
// engine needs cgo; without it the tesseract CLI is used instead.
func NewEngine(cfg models.OCRConfig, logger *slog.Logger) (Engine, error) {
	switch cfg.Engine {
	case "tesseract-cli", "tsv":
		return NewCLIEngine(cfg.Language, cfg.TessdataPrefix), nil
	case "", "gosseract":
		engine, err := newNativeEngine(cfg)
		if err == nil {
			return engine, nil
		}
		logger.Warn("falling back to tesseract CLI", "reason", err)
		return NewCLIEngine(cfg.Language, cfg.TessdataPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported OCR engine: %s", cfg.Engine)
	}
}
