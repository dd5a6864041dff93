// Package cache provides a read-through memoizing wrapper around an embedder,
// so identical turn or query text is embedded once per process.
package cache

import (
	"context"

	"github.com/dgraph-io/ristretto"

	"github.com/dockwise/recall/memory"
)

const defaultMaxEntries = 4096

// Embedder wraps another embedder with a ristretto cache keyed by the exact
// input text. Cached vectors are copied on both write and read so stored
// embeddings stay immutable even if a caller mutates its slice.
type Embedder struct {
	inner memory.Embedder
	cache *ristretto.Cache
}

// New wraps inner with a cache holding up to maxEntries vectors. maxEntries
// <= 0 uses the default.
func New(inner memory.Embedder, maxEntries int64) (*Embedder, error) {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}

	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &Embedder{inner: inner, cache: c}, nil
}

// Embed returns the cached vector for text, or calls the inner embedder and
// caches the result. Errors are never cached.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return clone(cached.([]float32)), nil
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	e.cache.Set(text, clone(vec), 1)
	// Sets are buffered; wait so a repeat of the same text hits. Negligible
	// next to the embedding call itself.
	e.cache.Wait()

	return vec, nil
}

// Dimensions returns the inner embedder's vector size.
func (e *Embedder) Dimensions() int {
	return e.inner.Dimensions()
}

// Tag returns the inner embedder's provider tag; cached vectors are the
// inner provider's vectors.
func (e *Embedder) Tag() string {
	return e.inner.Tag()
}

// Close releases the cache's resources.
func (e *Embedder) Close() {
	e.cache.Close()
}

func clone(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
