package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/banrakshak/fra-ocr-service/internal/models"
)

const notSpecified = "Not specified"

// ErrNoProvider is returned when classification is requested without a model configured
var ErrNoProvider = errors.New("no AI provider configured")

// Classifier assigns a document type to OCR text with a language model,
// optionally falling back to keyword matching when the model call fails.
type Classifier struct {
	provider Provider
	fallback bool
	logger   *slog.Logger
}

// NewClassifier creates a new document classifier. provider may be nil, in
// which case only the keyword fallback can answer.
func NewClassifier(provider Provider, fallback bool, logger *slog.Logger) *Classifier {
	return &Classifier{
		provider: provider,
		fallback: fallback,
		logger:   logger,
	}
}

// Classify returns the classification of text.
func (c *Classifier) Classify(ctx context.Context, text string) (*models.DocumentClassification, error) {
	result, err := c.classifyWithModel(ctx, text)
	if err == nil {
		return result, nil
	}
	if !c.fallback || ctx.Err() != nil {
		return nil, err
	}
	c.logger.Warn("model classification failed, using keyword fallback", "error", err)
	return KeywordClassify(text, err), nil
}

func (c *Classifier) classifyWithModel(ctx context.Context, text string) (*models.DocumentClassification, error) {
	if c.provider == nil {
		return nil, ErrNoProvider
	}

	start := time.Now()
	response, err := c.provider.Generate(ctx, Request{
		Prompt:      classificationPrompt(text),
		Temperature: 0.1,
		MaxTokens:   1024,
	})
	if err != nil {
		return nil, fmt.Errorf("AI classification failed: %w", err)
	}
	c.logger.Debug("classification response", "provider", c.provider.Name(), "duration", time.Since(start), "length", len(response))

	return parseClassification(response)
}

// parseClassification decodes a model response into a classification.
func parseClassification(response string) (*models.DocumentClassification, error) {
	obj, err := ExtractJSONObject(response)
	if err != nil {
		return nil, err
	}
	if err := ValidateJSONAgainstSchema(ClassificationSchema, []byte(obj)); err != nil {
		return nil, fmt.Errorf("invalid classification: %w", err)
	}

	var raw struct {
		DocumentType     string      `json:"document_type"`
		ConfidenceLevel  string      `json:"confidence_level"`
		ConfidenceScore  interface{} `json:"confidence_score"`
		KeyIndicators    []string    `json:"key_indicators"`
		Reasoning        string      `json:"reasoning"`
		SuggestedActions []string    `json:"suggested_actions"`
		DocumentPurpose  string      `json:"document_purpose"`
		IssuingAuthority string      `json:"issuing_authority"`
	}
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return nil, fmt.Errorf("JSON parse error: %w", err)
	}

	level, err := models.ParseConfidenceLevel(strings.ToUpper(strings.TrimSpace(raw.ConfidenceLevel)))
	if err != nil {
		return nil, err
	}

	result := &models.DocumentClassification{
		DocumentType:     strings.TrimSpace(raw.DocumentType),
		ConfidenceLevel:  level,
		ConfidenceScore:  parseScore(raw.ConfidenceScore),
		Reasoning:        raw.Reasoning,
		KeyIndicators:    nonNil(raw.KeyIndicators),
		SuggestedActions: nonNil(raw.SuggestedActions),
		DocumentPurpose:  orDefault(raw.DocumentPurpose, notSpecified),
		IssuingAuthority: orDefault(raw.IssuingAuthority, notSpecified),
	}
	return result, nil
}

// parseScore reads a 0-100 score given as a number or a numeric string.
func parseScore(v interface{}) float64 {
	var d decimal.Decimal
	switch val := v.(type) {
	case float64:
		d = decimal.NewFromFloat(val)
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSuffix(strings.TrimSpace(val), "%"))
		if err != nil {
			return 0
		}
		d = parsed
	default:
		return 0
	}
	if d.IsNegative() {
		return 0
	}
	if d.GreaterThan(decimal.NewFromInt(100)) {
		return 100
	}
	return d.InexactFloat64()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
