package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banrakshak/fra-ocr-service/internal/models"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	MaxTokens int `json:"max_tokens"`
}

func chatServer(t *testing.T, seen *chatRequest, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"c1","object":"chat.completion","model":%q,"choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`, seen.Model, content)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIProvider_Generate(t *testing.T) {
	var seen chatRequest
	srv := chatServer(t, &seen, `{"ok": true}`)

	p := NewOpenAIProvider("sk-test", srv.URL+"/v1", "gpt-4o-mini")
	out, err := p.Generate(context.Background(), Request{System: "be brief", Prompt: "classify", MaxTokens: 64})
	require.NoError(t, err)

	assert.Equal(t, `{"ok": true}`, out)
	assert.Equal(t, "gpt-4o-mini", seen.Model)
	assert.Equal(t, 64, seen.MaxTokens)
	require.Len(t, seen.Messages, 2)
	assert.Equal(t, "system", seen.Messages[0].Role)
	assert.Equal(t, "be brief", seen.Messages[0].Content)
	assert.Equal(t, "user", seen.Messages[1].Role)
}

func TestOllamaProvider_Generate(t *testing.T) {
	var seen chatRequest
	srv := chatServer(t, &seen, "hello")

	p := NewOllamaProvider(srv.URL, "llama3.1")
	assert.Equal(t, "ollama", p.Name())

	out, err := p.Generate(context.Background(), Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, "llama3.1", seen.Model)
	require.Len(t, seen.Messages, 1)
}

func TestProviders_MissingKey(t *testing.T) {
	_, err := NewOpenAIProvider("", "", "").Generate(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = NewGeminiProvider("", "").Generate(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestWithRateLimit(t *testing.T) {
	inner := &fakeProvider{response: "ok"}
	assert.Same(t, inner, WithRateLimit(inner, 0, 0))

	limited := WithRateLimit(inner, 100, 1)
	assert.Equal(t, "fake", limited.Name())
	out, err := limited.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = limited.Generate(ctx, Request{})
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	cfg := models.AIConfig{DefaultProvider: "ollama", Ollama: models.OllamaConfig{Model: "llama3.1"}}

	p, err := NewProvider(cfg, "", "")
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())

	p, err = NewProvider(cfg, "gemini", "gemini-2.5-pro")
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.Name())

	p, err = NewProvider(cfg, "openai", "")
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	_, err = NewProvider(cfg, "claude", "")
	assert.Error(t, err)
}
