package memory

import "sort"

// Candidate pairs a stored vector with its insertion index. Candidates are
// handed to a Ranker in ascending index order.
type Candidate struct {
	Index  int
	Vector []float32
}

// Scored is one ranked candidate.
type Scored struct {
	Index      int
	Similarity float64
}

// Ranker orders candidates by relevance to a query vector and truncates to k.
// The default ExhaustiveRanker scans every candidate; an approximate
// nearest-neighbor index can be substituted here without changing the
// ConversationStore contract.
type Ranker interface {
	Rank(query []float32, candidates []Candidate, k int) ([]Scored, error)
}

// ExhaustiveRanker scores every candidate with cosine similarity and sorts
// descending. Ties keep ascending insertion order (stable sort over
// index-ordered input). Intentional brute force: conversation-scale corpora
// are tens to low hundreds of turns.
type ExhaustiveRanker struct{}

func (ExhaustiveRanker) Rank(query []float32, candidates []Candidate, k int) ([]Scored, error) {
	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		sim, err := CosineSimilarity(query, c.Vector)
		if err != nil {
			return nil, err
		}
		scored = append(scored, Scored{Index: c.Index, Similarity: sim})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if k >= 0 && k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}
