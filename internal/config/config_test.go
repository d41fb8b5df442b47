package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
port: 9000
ocr:
  engine: tesseract-cli
  language: eng+hin
extraction:
  merge_policy: table
ai:
  default_provider: ollama
  ollama:
    model: qwen2.5
queue:
  workers: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "tesseract-cli", cfg.OCR.Engine)
	assert.Equal(t, "eng+hin", cfg.OCR.Language)
	assert.Equal(t, 30.0, cfg.OCR.MinConfidence)
	assert.Equal(t, "table", cfg.Extraction.MergePolicy)
	assert.Equal(t, 20, cfg.Extraction.RowThreshold)
	assert.Equal(t, "ollama", cfg.AI.DefaultProvider)
	assert.Equal(t, "qwen2.5", cfg.AI.Ollama.Model)
	assert.Equal(t, "http://localhost:11434", cfg.AI.Ollama.BaseURL)
	assert.Equal(t, 2, cfg.Queue.Workers)
	assert.Equal(t, 64, cfg.Queue.Size)
	assert.Equal(t, "uploads", cfg.Storage.UploadDir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "port: 9000\nai:\n  gemini:\n    api_key: from-file\n")

	t.Setenv("PORT", "8081")
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("OUTPUT_DIR", "/data/output")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("QUEUE_WORKERS", "not-a-number")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, "from-env", cfg.AI.Gemini.APIKey)
	assert.Equal(t, "openai", cfg.AI.DefaultProvider)
	assert.Equal(t, "/data/output", cfg.Storage.OutputDir)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "s3cret", cfg.Auth.Secret)
	assert.Equal(t, 4, cfg.Queue.Workers)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "pattern", cfg.Extraction.MergePolicy)
	assert.Equal(t, "gemini", cfg.AI.DefaultProvider)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeConfig(t, "port: [not, a, port]"))
	assert.ErrorContains(t, err, "failed to parse config")

	_, err = Load(writeConfig(t, "extraction:\n  merge_policy: newest\n"))
	assert.ErrorContains(t, err, "merge_policy")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
