package memory

import (
	"context"
	"errors"
	"fmt"
)

// Embedder converts text to vector embeddings.
// Implementations: mock.Embedder (testing/offline), openai.Embedder
// (OpenAI-compatible HTTP APIs), onnx.Embedder (local model).
//
// An Embedder makes exactly one outbound call per Embed invocation and never
// retries internally; retry and timeout policy belong to the caller, via the
// context. Vectors produced under different Tag values must never be
// compared: callers re-embed or reject on mismatch.
type Embedder interface {
	// Embed converts a single text to an embedding vector. Empty text must
	// not crash the implementation, though callers should avoid it.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the fixed embedding vector size.
	Dimensions() int

	// Tag identifies the provider and model version, e.g. "openai/text-embedding-3-small".
	Tag() string
}

var (
	// ErrProvider marks a failed, timed-out, or malformed embedding call.
	// Match with errors.Is; the concrete cause is available via Unwrap.
	ErrProvider = errors.New("embedding provider error")

	// ErrDimensionMismatch marks a comparison between vectors of different
	// lengths, typically a stale embedding from a prior provider version.
	// Never silently truncated or padded.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// ProviderError wraps the cause of a failed embedding call. Stores return it
// from Add and Search without mutating any state; callers decide whether to
// retry.
type ProviderError struct {
	Op  string // operation during which the call failed, e.g. "add", "search"
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrProvider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is reports a match for ErrProvider so errors.Is works without exposing the
// struct to callers.
func (e *ProviderError) Is(target error) bool { return target == ErrProvider }
