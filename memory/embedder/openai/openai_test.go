package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockwise/recall/memory"
)

// embeddingsHandler validates the request and responds with a fixed vector.
func embeddingsHandler(t *testing.T, vector []float32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("expected path /embeddings, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("expected bearer auth, got %q", got)
		}

		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if req.Model == "" || len(req.Input) != 1 {
			t.Errorf("unexpected request payload: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": vector}},
		})
	}
}

func newTestEmbedder(baseURL string, dims int) *Embedder {
	return New(Config{
		BaseURL:    baseURL,
		APIKey:     "test-key",
		Model:      "text-embedding-3-small",
		Dimensions: dims,
	})
}

func TestEmbed(t *testing.T) {
	want := []float32{0.1, 0.2, 0.3, 0.4}
	srv := httptest.NewServer(embeddingsHandler(t, want))
	defer srv.Close()

	e := newTestEmbedder(srv.URL, 4)

	vec, err := e.Embed(context.Background(), "how many suppliers do we have")
	require.NoError(t, err)
	assert.Equal(t, want, vec)
	assert.Equal(t, 4, e.Dimensions())
	assert.Equal(t, "openai/text-embedding-3-small", e.Tag())
}

func TestEmbedHTTPErrorIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down"}}`))
	}))
	defer srv.Close()

	e := newTestEmbedder(srv.URL, 4)

	_, err := e.Embed(context.Background(), "anything")
	require.ErrorIs(t, err, memory.ErrProvider)
	assert.Contains(t, err.Error(), "slow down")
}

func TestEmbedMalformedResponseIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	e := newTestEmbedder(srv.URL, 4)

	_, err := e.Embed(context.Background(), "anything")
	require.ErrorIs(t, err, memory.ErrProvider)
}

func TestEmbedWrongDimensionsIsProviderError(t *testing.T) {
	srv := httptest.NewServer(embeddingsHandler(t, []float32{0.1, 0.2}))
	defer srv.Close()

	e := newTestEmbedder(srv.URL, 4)

	_, err := e.Embed(context.Background(), "anything")
	require.ErrorIs(t, err, memory.ErrProvider)
	assert.Contains(t, err.Error(), "expected 4 dimensions")
}

func TestEmbedCancelledContextIsProviderError(t *testing.T) {
	srv := httptest.NewServer(embeddingsHandler(t, []float32{0.1, 0.2, 0.3, 0.4}))
	defer srv.Close()

	e := newTestEmbedder(srv.URL, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Embed(ctx, "anything")
	require.ErrorIs(t, err, memory.ErrProvider)
}
