// Package services holds the document pipeline that turns a scan into a DocumentAnalysis
// and the checks run over synthesized claimant profiles.
package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/banrakshak/fra-ocr-service/internal/extract"
	"github.com/banrakshak/fra-ocr-service/internal/models"
	"github.com/banrakshak/fra-ocr-service/internal/ocr"
)

// ErrNoText is returned when no preprocessing variant produced OCR output.
var ErrNoText = errors.New("failed to extract text from any variant")

// DocumentParser runs the comprehensive parse: variants, OCR per variant,
// best pass selection, title, pattern and table fields, merge and NER.
type DocumentParser struct {
	engine        ocr.Engine
	preprocessor  *ocr.Preprocessor
	catalogue     extract.Catalogue
	recognizer    extract.EntityRecognizer
	minConfidence float64
	rowThreshold  int
	policy        extract.MergePolicy
	logger        *slog.Logger
}

// ParserOption configures a DocumentParser
type ParserOption func(*DocumentParser)

// WithCatalogue replaces the default field catalogue.
func WithCatalogue(c extract.Catalogue) ParserOption {
	return func(p *DocumentParser) { p.catalogue = c }
}

// WithEntityRecognizer replaces the field based recognizer.
func WithEntityRecognizer(r extract.EntityRecognizer) ParserOption {
	return func(p *DocumentParser) { p.recognizer = r }
}

// WithMergePolicy sets which pass wins a conflicting field.
func WithMergePolicy(policy extract.MergePolicy) ParserOption {
	return func(p *DocumentParser) { p.policy = policy }
}

// WithRowThreshold sets the pixel distance grouping words into a table row.
func WithRowThreshold(px int) ParserOption {
	return func(p *DocumentParser) {
		if px > 0 {
			p.rowThreshold = px
		}
	}
}

// WithMinConfidence sets the confidence a word must exceed to be kept.
func WithMinConfidence(conf float64) ParserOption {
	return func(p *DocumentParser) { p.minConfidence = conf }
}

// NewDocumentParser creates a parser over engine
func NewDocumentParser(engine ocr.Engine, preprocessor *ocr.Preprocessor, logger *slog.Logger, opts ...ParserOption) *DocumentParser {
	p := &DocumentParser{
		engine:        engine,
		preprocessor:  preprocessor,
		catalogue:     extract.DefaultCatalogue(),
		recognizer:    extract.FieldEntityRecognizer{},
		minConfidence: ocr.DefaultMinConfidence,
		rowThreshold:  extract.DefaultRowThreshold,
		policy:        extract.PatternWins,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewDocumentParserFromConfig builds the OCR engine and parser described by cfg.
func NewDocumentParserFromConfig(cfg *models.Config, logger *slog.Logger) (*DocumentParser, error) {
	engine, err := ocr.NewEngine(cfg.OCR, logger)
	if err != nil {
		return nil, err
	}
	policy, err := extract.ParseMergePolicy(cfg.Extraction.MergePolicy)
	if err != nil {
		return nil, err
	}
	return NewDocumentParser(engine, ocr.NewPreprocessor(cfg.OCR.UseImageMagick, logger), logger,
		WithMergePolicy(policy),
		WithRowThreshold(cfg.Extraction.RowThreshold),
		WithMinConfidence(cfg.OCR.MinConfidence),
	), nil
}

// EngineName reports the OCR engine in use.
func (p *DocumentParser) EngineName() string {
	return p.engine.Name()
}

// ParseFile parses the image at path.
func (p *DocumentParser) ParseFile(ctx context.Context, path string) *models.DocumentAnalysis {
	img, err := ocr.LoadImage(path)
	if err != nil {
		return models.FailedAnalysis(err)
	}
	return p.ParseImage(ctx, img)
}

// ParseBytes parses an encoded image.
func (p *DocumentParser) ParseBytes(ctx context.Context, data []byte) *models.DocumentAnalysis {
	img, err := ocr.DecodeImage(data)
	if err != nil {
		return models.FailedAnalysis(err)
	}
	return p.ParseImage(ctx, img)
}

// ParseImage never fails: errors and panics are reported through ProcessingStatus.
func (p *DocumentParser) ParseImage(ctx context.Context, img image.Image) (analysis *models.DocumentAnalysis) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("document parse panicked", "panic", r)
			analysis = models.FailedAnalysis(fmt.Errorf("%v", r))
		}
	}()

	start := time.Now()
	analysis, err := p.parse(ctx, img)
	if err != nil {
		p.logger.Warn("document parse failed", "error", err)
		return models.FailedAnalysis(err)
	}
	p.logger.Info("document parsed",
		"variant", analysis.BestVariant,
		"confidence", analysis.OCRConfidence,
		"fields", len(analysis.ExtractedFields),
		"duration", time.Since(start).String(),
	)
	return analysis
}

func (p *DocumentParser) parse(ctx context.Context, img image.Image) (*models.DocumentAnalysis, error) {
	page, variants, err := p.RecognizeBest(ctx, img)
	if err != nil {
		return nil, err
	}

	pattern := extract.ExtractFields(page.FullText, p.catalogue)
	table := extract.ExtractTable(page.Words, p.rowThreshold, p.catalogue)
	fields := extract.Merge(table, pattern, p.policy)

	entities, err := p.recognizer.Recognize(ctx, page.FullText, fields)
	if err != nil {
		return nil, fmt.Errorf("entity recognition: %w", err)
	}

	return &models.DocumentAnalysis{
		DocumentTitle:      extract.ExtractTitle(page.FullText),
		ExtractedFields:    fields,
		NERInfo:            entities,
		FullText:           page.FullText,
		OCRConfidence:      page.AvgConfidence,
		ExtractionVariants: variants,
		BestVariant:        page.Variant,
		ProcessingStatus:   models.StatusSuccess,
	}, nil
}

// RecognizeBest runs OCR over every preprocessing variant and keeps the pass
// with the highest average confidence. Variants whose OCR fails are skipped.
// It also returns how many passes succeeded. A scan where no pass kept a
// confident word fails with ErrNoText.
func (p *DocumentParser) RecognizeBest(ctx context.Context, img image.Image) (ocr.PageText, int, error) {
	variants := p.preprocessor.Variants(ctx, img)

	pages := make([]ocr.PageText, 0, len(variants))
	for _, v := range variants {
		if err := ctx.Err(); err != nil {
			return ocr.PageText{}, len(pages), err
		}
		words, err := p.engine.Recognize(ctx, v.Image)
		if err != nil {
			p.logger.Warn("ocr pass failed", "variant", v.Name, "error", err)
			continue
		}
		page := ocr.BuildPage(v.Name, words, p.minConfidence)
		p.logger.Debug("ocr pass", "variant", v.Name, "words", len(page.Words), "confidence", page.AvgConfidence)
		pages = append(pages, page)
	}

	best, ok := ocr.BestPage(pages)
	if !ok {
		return ocr.PageText{}, len(pages), ErrNoText
	}
	return best, len(pages), nil
}
