package ai

import (
	"fmt"

	"github.com/banrakshak/fra-ocr-service/internal/models"
)

// NewProvider creates the provider named by providerName (or the configured
// default), rate limited per the config. modelName overrides the configured model.
func NewProvider(cfg models.AIConfig, providerName, modelName string) (Provider, error) {
	if providerName == "" {
		providerName = cfg.DefaultProvider
	}

	var p Provider
	switch providerName {
	case "openai":
		model := modelName
		if model == "" {
			model = cfg.OpenAI.Model
		}
		p = NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, model)

	case "gemini", "":
		model := modelName
		if model == "" {
			model = cfg.Gemini.Model
		}
		p = NewGeminiProvider(cfg.Gemini.APIKey, model)

	case "ollama":
		model := modelName
		if model == "" {
			model = cfg.Ollama.Model
		}
		p = NewOllamaProvider(cfg.Ollama.BaseURL, model)

	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", providerName)
	}

	return WithRateLimit(p, cfg.RequestsPerSecond, cfg.Burst), nil
}
