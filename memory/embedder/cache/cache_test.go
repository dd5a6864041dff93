package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockwise/recall/memory/embedder/mock"
)

// countingEmbedder tracks how many embed calls reach the inner embedder.
type countingEmbedder struct {
	inner *mock.Embedder
	calls int
	err   error
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.inner.Embed(ctx, text)
}
func (c *countingEmbedder) Dimensions() int { return c.inner.Dimensions() }
func (c *countingEmbedder) Tag() string     { return c.inner.Tag() }

func TestEmbedCachesRepeatedText(t *testing.T) {
	inner := &countingEmbedder{inner: mock.New()}
	e, err := New(inner, 0)
	require.NoError(t, err)
	defer e.Close()
	ctx := context.Background()

	first, err := e.Embed(ctx, "how many suppliers do we have")
	require.NoError(t, err)
	second, err := e.Embed(ctx, "how many suppliers do we have")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)

	_, err = e.Embed(ctx, "list all warehouse locations")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestEmbedReturnsCopies(t *testing.T) {
	inner := &countingEmbedder{inner: mock.New()}
	e, err := New(inner, 0)
	require.NoError(t, err)
	defer e.Close()
	ctx := context.Background()

	first, err := e.Embed(ctx, "status of door D-7")
	require.NoError(t, err)
	first[0] = 42 // caller mutation must not poison the cache

	second, err := e.Embed(ctx, "status of door D-7")
	require.NoError(t, err)
	assert.NotEqual(t, float32(42), second[0])
}

func TestEmbedErrorsAreNotCached(t *testing.T) {
	inner := &countingEmbedder{inner: mock.New(), err: errors.New("boom")}
	e, err := New(inner, 0)
	require.NoError(t, err)
	defer e.Close()
	ctx := context.Background()

	_, err = e.Embed(ctx, "anything")
	require.Error(t, err)

	inner.err = nil
	_, err = e.Embed(ctx, "anything")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestPassthroughs(t *testing.T) {
	inner := &countingEmbedder{inner: mock.New()}
	e, err := New(inner, 0)
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, inner.Dimensions(), e.Dimensions())
	assert.Equal(t, inner.Tag(), e.Tag())
}
