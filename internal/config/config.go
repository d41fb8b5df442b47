// Package config loads the service configuration from config.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/banrakshak/fra-ocr-service/internal/extract"
	"github.com/banrakshak/fra-ocr-service/internal/models"
)

// Load reads the YAML file at path, applies environment overrides and fills
// defaults. A missing file is not an error.
func Load(path string) (*models.Config, error) {
	var config models.Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnv(&config)
	config.ApplyDefaults()

	if _, err := extract.ParseMergePolicy(config.Extraction.MergePolicy); err != nil {
		return nil, fmt.Errorf("extraction.merge_policy: %w", err)
	}
	return &config, nil
}

// applyEnv overrides config values with environment variables if present
func applyEnv(c *models.Config) {
	c.Port = getEnvAsInt("PORT", c.Port)
	c.Host = getEnv("HOST", c.Host)

	c.AI.OpenAI.APIKey = getEnv("OPENAI_API_KEY", c.AI.OpenAI.APIKey)
	c.AI.OpenAI.BaseURL = getEnv("OPENAI_BASE_URL", c.AI.OpenAI.BaseURL)
	c.AI.OpenAI.Model = getEnv("OPENAI_MODEL", c.AI.OpenAI.Model)
	c.AI.Gemini.APIKey = getEnv("GEMINI_API_KEY", c.AI.Gemini.APIKey)
	c.AI.Gemini.Model = getEnv("GEMINI_MODEL", c.AI.Gemini.Model)
	c.AI.Ollama.BaseURL = getEnv("OLLAMA_BASE_URL", c.AI.Ollama.BaseURL)
	c.AI.DefaultProvider = getEnv("AI_PROVIDER", c.AI.DefaultProvider)

	c.OCR.TessdataPrefix = getEnv("TESSDATA_PREFIX", c.OCR.TessdataPrefix)
	c.LandCover.Endpoint = getEnv("LANDCOVER_ENDPOINT", c.LandCover.Endpoint)

	c.Storage.UploadDir = getEnv("UPLOAD_DIR", c.Storage.UploadDir)
	c.Storage.OutputDir = getEnv("OUTPUT_DIR", c.Storage.OutputDir)

	c.Auth.Secret = getEnv("JWT_SECRET", c.Auth.Secret)
	c.Auth.Enabled = getEnvAsBool("AUTH_ENABLED", c.Auth.Enabled)

	c.Queue.Workers = getEnvAsInt("QUEUE_WORKERS", c.Queue.Workers)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// NewLogger builds the JSON logger used by the binaries. The level comes
// from LOG_LEVEL (debug, info, warn, error), defaulting to info.
func NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(os.Getenv("LOG_LEVEL"))}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
