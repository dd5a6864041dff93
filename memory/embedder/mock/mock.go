// Package mock provides a deterministic embedder for tests and offline runs.
package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

const defaultDimensions = 384 // matches all-MiniLM-L6-v2

// Embedder generates deterministic embeddings by signed feature hashing of
// the text's tokens. Unlike per-text random vectors, lexically overlapping
// texts land in shared buckets, so cosine similarity behaves directionally
// like a real model: more shared words, higher score.
type Embedder struct {
	dimensions int
}

// New creates a mock embedder with the default 384 dimensions.
func New() *Embedder {
	return NewWithDimensions(defaultDimensions)
}

// NewWithDimensions creates a mock embedder with a fixed vector size.
func NewWithDimensions(dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = defaultDimensions
	}
	return &Embedder{dimensions: dimensions}
}

// Embed hashes each token into a signed bucket and normalizes the result to a
// unit vector. Empty text yields a zero vector, never an error.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, e.dimensions)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?;:\"'()")
		if token == "" {
			continue
		}

		h := fnv.New64a()
		h.Write([]byte(token))
		sum := h.Sum64()

		sign := float32(1)
		if sum&(1<<63) != 0 {
			sign = -1
		}
		vec[sum%uint64(e.dimensions)] += sign
	}

	return normalize(vec), nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Tag identifies the mock's hashing scheme as the provider version.
func (e *Embedder) Tag() string {
	return "mock/hashed-bow-v1"
}

// normalize converts the vector to unit length.
func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}

	norm = float32(math.Sqrt(float64(norm)))
	for i, v := range vec {
		vec[i] = v / norm
	}
	return vec
}
