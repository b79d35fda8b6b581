package embed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/archtrace/lattice/internal/config"
)

// NewClient builds the embedding client for the configured provider and
// wraps it with the per-call timeout and bounded retry required for
// external services.
func NewClient(ctx context.Context, cfg config.EmbeddingConfig) (Client, error) {
	var inner Client

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		inner = NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL)

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		inner = c

	case "ollama":
		// Ollama speaks the OpenAI-compatible API; the key is ignored but
		// required by the client config.
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		inner = NewOpenAIClient(apiKey, cfg.Model, baseURL)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}

	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}

	return &RetryingClient{Inner: inner, Timeout: timeout, Retries: retries}, nil
}
