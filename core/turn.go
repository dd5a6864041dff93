package core

import "time"

// Filter describes one predicate the agent applied when answering a turn,
// e.g. {Column: "status", Operator: "=", Value: "delayed"}.
type Filter struct {
	Column   string `json:"column"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// Metadata captures what an answered turn touched: the tables the generated
// query referenced, the filters it applied, and a short summary of the result.
type Metadata struct {
	// Tables lists the table names referenced by the generated query.
	Tables []string `json:"tables"`

	// Filters lists the predicates applied, if any.
	Filters []Filter `json:"filters,omitempty"`

	// KeyMetric is a one-line summary of the answer, e.g. "42 suppliers".
	KeyMetric string `json:"keyMetric,omitempty"`

	// RowCount is the number of rows the query returned, when known.
	RowCount *int `json:"rowCount,omitempty"`
}

// Turn is one answered question/answer unit within a conversation. The agent
// hands a Turn to the memory layer after each answer so later questions can
// retrieve schema, table, and filter context without resending full history.
//
// A turn is immutable once stored: the memory layer assigns ID and Embedding
// at ingestion time (when absent) and never edits a stored turn afterwards.
type Turn struct {
	// ID is unique within the turn's conversation.
	ID string `json:"id"`

	// Question is the user's natural-language question.
	Question string `json:"question"`

	// Timestamp is when the turn was answered.
	Timestamp time.Time `json:"timestamp"`

	// Metadata describes what the answer touched.
	Metadata Metadata `json:"metadata"`

	// GeneratedQuery is the SQL produced for this turn, if any.
	GeneratedQuery string `json:"generatedQuery,omitempty"`

	// Embedding is the fixed-length vector for this turn. Computed at
	// ingestion when absent; vectors from different embedder versions must
	// never be compared.
	Embedding []float32 `json:"embedding,omitempty"`
}
