package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockwise/recall/core"
	"github.com/dockwise/recall/memory"
	"github.com/dockwise/recall/memory/embedder/mock"
)

func TestRegistryGetCreatesLazily(t *testing.T) {
	registry := memory.NewRegistry(mock.New())
	assert.Equal(t, 0, registry.Len())

	store := registry.Get("conv-a")
	require.NotNil(t, store)
	assert.Equal(t, "conv-a", store.ConversationID())
	assert.Equal(t, 1, registry.Len())

	// Same id, same store.
	assert.Same(t, store, registry.Get("conv-a"))
	assert.Equal(t, 1, registry.Len())
}

func TestRegistryIsolatesConversations(t *testing.T) {
	registry := memory.NewRegistry(mock.New())
	ctx := context.Background()

	storeA := registry.Get("conv-a")
	storeB := registry.Get("conv-b")
	require.NotSame(t, storeA, storeB)

	require.NoError(t, storeA.Add(ctx, &core.Turn{
		Question: "How many suppliers do we have?",
		Metadata: core.Metadata{Tables: []string{"suppliers"}},
	}))

	assert.Equal(t, 1, storeA.Size())
	assert.Equal(t, 0, storeB.Size())

	results, err := storeB.Search(ctx, "suppliers", 5, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRegistryClearConversation(t *testing.T) {
	registry := memory.NewRegistry(mock.New())
	ctx := context.Background()

	store := registry.Get("conv-a")
	require.NoError(t, store.Add(ctx, &core.Turn{Question: "q"}))

	registry.ClearConversation("conv-a")
	assert.Equal(t, 0, store.Size())

	// The entry survives a clear; the same store keeps serving the id.
	assert.Equal(t, 1, registry.Len())
	assert.Same(t, store, registry.Get("conv-a"))

	// Clearing an unknown id is a no-op.
	registry.ClearConversation("never-seen")
}

func TestRegistryReset(t *testing.T) {
	registry := memory.NewRegistry(mock.New())
	registry.Get("conv-a")
	registry.Get("conv-b")

	registry.Reset()
	assert.Equal(t, 0, registry.Len())
}

func TestRegistryConcurrentGetSameID(t *testing.T) {
	registry := memory.NewRegistry(mock.New())

	var wg sync.WaitGroup
	stores := make([]*memory.ConversationStore, 16)
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stores[i] = registry.Get("conv-a")
		}(i)
	}
	wg.Wait()

	for _, s := range stores[1:] {
		assert.Same(t, stores[0], s)
	}
	assert.Equal(t, 1, registry.Len())
}
