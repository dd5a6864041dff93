// Package openai provides an embedder backed by an OpenAI-compatible
// /embeddings endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dockwise/recall/memory"
)

const (
	defaultBaseURL    = "https://api.openai.com/v1"
	defaultModel      = "text-embedding-3-small"
	defaultDimensions = 1536
)

// Config configures the embedder.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.openai.com/v1" or a local
	// OpenAI-compatible server. Trailing slashes are trimmed.
	BaseURL string

	// APIKey is sent as a Bearer token when non-empty.
	APIKey string

	// Model is the embedding model name.
	Model string

	// Dimensions is the expected vector size. Responses of any other length
	// fail as provider errors.
	Dimensions int

	// HTTPClient overrides the default client. Timeouts belong to the
	// caller's context; the embedder never retries.
	HTTPClient *http.Client
}

// Embedder calls an OpenAI-compatible embeddings API. One outbound request
// per Embed, cancellable through the context, no internal retry.
type Embedder struct {
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	client     *http.Client
}

// New creates an embedder, filling config defaults.
func New(cfg Config) *Embedder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = defaultDimensions
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	return &Embedder{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		client:     cfg.HTTPClient,
	}
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed requests one embedding for text. Network failures, non-2xx statuses,
// and empty or mis-sized vectors all surface as provider errors wrapping
// memory.ErrProvider.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(embeddingsRequest{
		Model: e.model,
		Input: []string{text},
	})
	if err != nil {
		return nil, &memory.ProviderError{Op: "embed", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, &memory.ProviderError{Op: "embed", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &memory.ProviderError{Op: "embed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &memory.ProviderError{Op: "embed", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &memory.ProviderError{Op: "embed", Err: errors.New(statusMessage(resp.StatusCode, body))}
	}

	var parsed embeddingsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &memory.ProviderError{Op: "embed", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Data) != 1 {
		return nil, &memory.ProviderError{Op: "embed", Err: fmt.Errorf("expected 1 embedding, got %d", len(parsed.Data))}
	}

	vec := parsed.Data[0].Embedding
	if len(vec) != e.dimensions {
		return nil, &memory.ProviderError{Op: "embed", Err: fmt.Errorf("expected %d dimensions, got %d", e.dimensions, len(vec))}
	}

	return vec, nil
}

// Dimensions returns the configured embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Tag identifies the provider and model version.
func (e *Embedder) Tag() string {
	return "openai/" + e.model
}

// statusMessage extracts a readable error from an API error response.
func statusMessage(statusCode int, body []byte) string {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		msg := errResp.Error.Message
		if msg == "" {
			msg = errResp.Message
		}
		if msg != "" {
			return fmt.Sprintf("HTTP %d: %s", statusCode, msg)
		}
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return "authentication failed, check your API key"
	case http.StatusNotFound:
		return "model or endpoint not found"
	case http.StatusTooManyRequests:
		return "rate limited"
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return "provider temporarily unavailable"
	}

	s := string(body)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return fmt.Sprintf("HTTP %d: %s", statusCode, s)
}
