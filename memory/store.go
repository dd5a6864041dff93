package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/dockwise/recall/core"
)

// TurnFilter is a strongly typed metadata predicate evaluated before scoring.
// A nil filter or an empty Tables list matches everything.
type TurnFilter struct {
	// Tables matches turns referencing at least one of the listed tables.
	Tables []string
}

// Matches reports whether the turn passes the filter.
func (f *TurnFilter) Matches(t *core.Turn) bool {
	if f == nil || len(f.Tables) == 0 {
		return true
	}
	return lo.Some(t.Metadata.Tables, f.Tables)
}

// SearchResult is one ranked hit from ConversationStore.Search.
type SearchResult struct {
	Turn       *core.Turn
	Similarity float64
	Index      int // insertion index within the store
}

// ConversationStore owns the ordered turn sequence for one conversation.
//
// Turn indices are strictly increasing in arrival order and are the only
// ordering used for the recency window and for tie-breaking in ranked search.
// Add and Clear are exclusive; Search, RecentTurns, and Size share a read
// lock, so a search never observes a half-appended turn.
type ConversationStore struct {
	conversationID string
	embedder       Embedder
	ranker         Ranker

	mu    sync.RWMutex
	turns []*core.Turn
	dims  int // pinned by the first accepted turn, 0 while empty
}

// StoreOption configures a ConversationStore.
type StoreOption func(*ConversationStore)

// WithRanker substitutes the ranking implementation.
func WithRanker(r Ranker) StoreOption {
	return func(s *ConversationStore) {
		s.ranker = r
	}
}

// NewConversationStore creates an empty store for one conversation.
func NewConversationStore(conversationID string, embedder Embedder, opts ...StoreOption) *ConversationStore {
	s := &ConversationStore{
		conversationID: conversationID,
		embedder:       embedder,
		ranker:         ExhaustiveRanker{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ConversationID returns the id this store is keyed by.
func (s *ConversationStore) ConversationID() string {
	return s.conversationID
}

// Add ingests an answered turn. When the turn carries no embedding, the
// canonical text representation is embedded synchronously first; on any
// provider failure or cancellation the store is left unchanged, so a partial
// insert is never observable. An accepted turn is immediately visible to
// Search and RecentTurns.
//
// A missing ID is assigned a UUID and a zero timestamp is set to now. The
// first accepted turn pins the store's embedding dimensionality; pre-embedded
// turns that disagree fail with ErrDimensionMismatch.
func (s *ConversationStore) Add(ctx context.Context, turn *core.Turn) error {
	if turn == nil {
		return errors.New("nil turn")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	embedding := turn.Embedding
	if len(embedding) == 0 {
		vec, err := s.embedder.Embed(ctx, EmbeddingText(turn))
		if err != nil {
			return &ProviderError{Op: "add", Err: err}
		}
		if len(vec) == 0 {
			return &ProviderError{Op: "add", Err: errors.New("provider returned an empty vector")}
		}
		embedding = vec
	}

	if s.dims != 0 && len(embedding) != s.dims {
		return fmt.Errorf("%w: turn has %d dimensions, store expects %d",
			ErrDimensionMismatch, len(embedding), s.dims)
	}

	if turn.ID == "" {
		turn.ID = uuid.New().String()
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}
	turn.Embedding = embedding

	s.turns = append(s.turns, turn)
	if s.dims == 0 {
		s.dims = len(embedding)
	}

	log.WithFields(log.Fields{
		"conversation_id": s.conversationID,
		"turn_id":         turn.ID,
		"index":           len(s.turns) - 1,
	}).Debug("turn added")
	return nil
}

// Search embeds queryText once and returns up to k turns ranked by descending
// cosine similarity, ties broken by ascending insertion index. Indices in
// exclude are skipped, and turns failing the filter are skipped before
// scoring, so neither ever affects the ranking or the returned count.
//
// A blank query, an empty store, k <= 0, or an empty candidate set after
// filtering yields an empty result and a nil error. A failed or cancelled
// query embedding yields an error, never a silently empty ranking.
func (s *ConversationStore) Search(ctx context.Context, queryText string, k int, exclude []int, filter *TurnFilter) ([]SearchResult, error) {
	if strings.TrimSpace(queryText) == "" || k <= 0 {
		return nil, nil
	}
	if s.Size() == 0 {
		return nil, nil
	}

	// One query embedding per search, computed outside the read lock so a
	// slow provider does not block concurrent reads.
	query, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, &ProviderError{Op: "search", Err: err}
	}
	if len(query) == 0 {
		return nil, &ProviderError{Op: "search", Err: errors.New("provider returned an empty vector")}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.turns) == 0 {
		return nil, nil
	}
	if len(query) != s.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, store expects %d",
			ErrDimensionMismatch, len(query), s.dims)
	}

	skip := make(map[int]struct{}, len(exclude))
	for _, i := range exclude {
		skip[i] = struct{}{}
	}

	candidates := make([]Candidate, 0, len(s.turns))
	for i, t := range s.turns {
		if _, excluded := skip[i]; excluded {
			continue
		}
		if !filter.Matches(t) {
			continue
		}
		candidates = append(candidates, Candidate{Index: i, Vector: t.Embedding})
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	scored, err := s.ranker.Rank(query, candidates, k)
	if err != nil {
		return nil, err
	}

	return lo.Map(scored, func(sc Scored, _ int) SearchResult {
		return SearchResult{Turn: s.turns[sc.Index], Similarity: sc.Similarity, Index: sc.Index}
	}), nil
}

// RecentTurns returns the last n turns in insertion order, or all turns when
// fewer exist. n <= 0 returns nil.
func (s *ConversationStore) RecentTurns(n int) []*core.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		return nil
	}
	if n > len(s.turns) {
		n = len(s.turns)
	}

	out := make([]*core.Turn, n)
	copy(out, s.turns[len(s.turns)-n:])
	return out
}

// Size returns the current turn count.
func (s *ConversationStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Clear removes all turns. The store stays usable and unpins its
// dimensionality, so a cleared store may accept a new embedder version.
func (s *ConversationStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = nil
	s.dims = 0

	log.WithField("conversation_id", s.conversationID).Debug("store cleared")
}
