package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/dockwise/recall/core"
)

// ContextConfig holds ContextBuilder tuning.
type ContextConfig struct {
	// TopK is the number of semantic matches to retrieve per build.
	TopK int

	// RecencyWindow is the number of most recent turns always included,
	// independent of semantic ranking. Their indices are excluded from the
	// semantic search so the two sections stay disjoint.
	RecencyWindow int

	// MinSimilarity drops semantic matches scoring below this value.
	// Local embedders score lower than hosted ones for comparable text, so
	// tune per embedder.
	MinSimilarity float64

	// MaxChars is the character budget for the related-turns section.
	MaxChars int
}

// DefaultContextConfig suits conversation-scale corpora with hosted
// embedders.
var DefaultContextConfig = &ContextConfig{
	TopK:          3,
	RecencyWindow: 2,
	MinSimilarity: 0.3,
	MaxChars:      2000,
}

// ContextBuilder assembles the context window the agent injects before
// generating the next answer: the recency window, plus semantically related
// earlier turns retrieved with the window's indices excluded.
//
// The agent loop drives it turn by turn: Build before generating, Record
// after answering. Record and Build for one conversation are expected to be
// called sequentially from that loop.
type ContextBuilder struct {
	registry *Registry
	config   *ContextConfig
}

// NewContextBuilder creates a builder over the registry. A nil config uses
// DefaultContextConfig.
func NewContextBuilder(registry *Registry, config *ContextConfig) *ContextBuilder {
	if config == nil {
		config = DefaultContextConfig
	}
	return &ContextBuilder{
		registry: registry,
		config:   config,
	}
}

// Record stores an answered turn in the conversation's store.
func (b *ContextBuilder) Record(ctx context.Context, conversationID string, turn *core.Turn) error {
	if err := b.registry.Get(conversationID).Add(ctx, turn); err != nil {
		return fmt.Errorf("record turn: %w", err)
	}
	return nil
}

// Build returns the formatted context for answering question, or "" when the
// conversation has no usable history. The filter narrows the semantic section
// to turns touching the same tables; nil disables narrowing.
func (b *ContextBuilder) Build(ctx context.Context, conversationID string, question string, filter *TurnFilter) (string, error) {
	store := b.registry.Get(conversationID)

	recent := store.RecentTurns(b.config.RecencyWindow)

	// The recency window occupies the tail indices; exclude them so the
	// semantic result set stays disjoint.
	exclude := lo.RangeFrom(store.Size()-len(recent), len(recent))

	related, err := store.Search(ctx, question, b.config.TopK, exclude, filter)
	if err != nil {
		return "", fmt.Errorf("search related turns: %w", err)
	}
	related = lo.Filter(related, func(r SearchResult, _ int) bool {
		return r.Similarity >= b.config.MinSimilarity
	})

	log.WithFields(log.Fields{
		"conversation_id": conversationID,
		"recent":          len(recent),
		"related":         len(related),
	}).Debug("context assembled")

	if len(recent) == 0 && len(related) == 0 {
		return "", nil
	}
	return b.render(question, recent, related), nil
}

func (b *ContextBuilder) render(question string, recent []*core.Turn, related []SearchResult) string {
	var sections []string

	if len(recent) > 0 {
		lines := []string{"=== RECENT TURNS ==="}
		for i, t := range recent {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, FormatTurn(t, FormatContext{
				Query:     question,
				MaxLength: b.config.MaxChars / len(recent),
			})))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if len(related) > 0 {
		perTurn := b.config.MaxChars / len(related)
		if perTurn < 100 {
			perTurn = 100
		}
		lines := []string{"=== RELATED EARLIER TURNS ==="}
		for i, r := range related {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, FormatTurn(r.Turn, FormatContext{
				Query:     question,
				MaxLength: perTurn,
			})))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	return strings.Join(sections, "\n\n")
}
