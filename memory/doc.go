// Package memory provides per-conversation semantic memory for a multi-turn
// natural-language query agent.
//
// Each conversation owns a ConversationStore: an ordered log of answered
// turns, embedded at ingestion time and searchable by cosine similarity with
// index exclusion and metadata filtering. A Registry isolates stores per
// conversation id, and a ContextBuilder merges a recency window with ranked
// semantic matches into a prompt-injection string.
//
// Architecture:
//   - Embedder: text-to-vector conversion (mock for tests, OpenAI-compatible
//     HTTP, or local ONNX model)
//   - ConversationStore: ordered turns + brute-force ranked search
//   - Registry: lazy per-conversation store creation
//   - ContextBuilder: recency window + semantic retrieval + formatting
//
// Search is an intentional linear scan: conversations hold tens to low
// hundreds of turns, so exhaustive cosine ranking beats any index at this
// scale. The Ranker seam exists so an approximate index can be substituted
// without changing the store contract.
//
// The package is single-process and holds everything in memory; persistence
// and cross-process sharing are out of scope.
package memory
