package memory

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Registry maps conversation ids to their stores. Stores are created lazily
// on first Get and live for the process lifetime; there is no eviction.
// Stores for distinct ids are fully independent, with no cross-conversation
// visibility.
type Registry struct {
	embedder Embedder
	opts     []StoreOption

	mu     sync.RWMutex
	stores map[string]*ConversationStore
}

// NewRegistry creates an empty registry. Every store it creates shares the
// given embedder and options.
func NewRegistry(embedder Embedder, opts ...StoreOption) *Registry {
	return &Registry{
		embedder: embedder,
		opts:     opts,
		stores:   make(map[string]*ConversationStore),
	}
}

// Get returns the store for the conversation, atomically creating an empty
// one on first access.
func (r *Registry) Get(conversationID string) *ConversationStore {
	r.mu.RLock()
	store, exists := r.stores[conversationID]
	r.mu.RUnlock()

	if exists {
		return store
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring the write lock.
	if store, exists := r.stores[conversationID]; exists {
		return store
	}

	store = NewConversationStore(conversationID, r.embedder, r.opts...)
	r.stores[conversationID] = store

	log.WithField("conversation_id", conversationID).Debug("conversation store created")
	return store
}

// ClearConversation empties the named store's turns without removing the
// registry entry. Unknown ids are a no-op.
func (r *Registry) ClearConversation(conversationID string) {
	r.mu.RLock()
	store, exists := r.stores[conversationID]
	r.mu.RUnlock()

	if exists {
		store.Clear()
	}
}

// Len returns the number of conversations with a store.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores)
}

// Reset drops every store. Intended for tests and operator tooling; the
// registry itself never evicts.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores = make(map[string]*ConversationStore)
}
