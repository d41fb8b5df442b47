// Package app builds the processing components shared by the server and the CLI.
package app

import (
	"log/slog"
	"time"

	"github.com/banrakshak/fra-ocr-service/internal/ai"
	"github.com/banrakshak/fra-ocr-service/internal/artifacts"
	"github.com/banrakshak/fra-ocr-service/internal/landcover"
	"github.com/banrakshak/fra-ocr-service/internal/models"
	"github.com/banrakshak/fra-ocr-service/internal/services"
)

// Components are the processing stages. Parser and Provider are nil when
// OCR or the AI provider could not be set up.
type Components struct {
	Parser      *services.DocumentParser
	Provider    ai.Provider
	Classifier  *ai.Classifier
	Synthesizer *ai.ProfileSynthesizer
	Recommender *ai.Recommender
	Segmenter   *landcover.GradioClient
	Artifacts   *artifacts.Store
	Validator   *services.ProfileValidator
}

// Build creates every component it can from cfg and logs the ones it cannot.
// providerName and modelName override the configured AI provider when set.
func Build(cfg *models.Config, providerName, modelName string, logger *slog.Logger) *Components {
	c := &Components{
		Artifacts: artifacts.NewStore(cfg.Storage.OutputDir),
		Validator: services.NewProfileValidator(),
	}

	parser, err := services.NewDocumentParserFromConfig(cfg, logger)
	if err != nil {
		logger.Warn("OCR modules not available, running in limited mode", "error", err)
	} else {
		c.Parser = parser
		logger.Info("OCR parser initialized", "engine", parser.EngineName())
	}

	provider, err := ai.NewProvider(cfg.AI, providerName, modelName)
	if err != nil {
		logger.Warn("AI provider not available", "error", err)
	} else {
		c.Provider = provider
		logger.Info("AI provider initialized", "provider", provider.Name())
	}

	c.Classifier = ai.NewClassifier(c.Provider, cfg.AI.FallbackClassifier, logger)
	c.Synthesizer = ai.NewProfileSynthesizer(c.Provider, logger)
	c.Recommender = ai.NewRecommender(c.Provider, logger)

	if cfg.LandCover.Endpoint == "" {
		cfg.LandCover.Endpoint = landcover.DefaultSpaceURL
	}
	c.Segmenter = landcover.NewGradioClient(cfg.LandCover.Endpoint, cfg.LandCover.APIName,
		time.Duration(cfg.LandCover.TimeoutSeconds)*time.Second)
	return c
}
