package memory

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/dockwise/recall/core"
)

// EmbeddingText builds the canonical text representation embedded for a turn:
// the question, followed by the referenced tables, the filter summary when
// present, and the key metric or, failing that, the row count. Keeping this
// composition stable is what makes stored vectors comparable across turns.
func EmbeddingText(t *core.Turn) string {
	parts := []string{t.Question}

	if len(t.Metadata.Tables) > 0 {
		parts = append(parts, "tables: "+strings.Join(t.Metadata.Tables, ", "))
	}

	if len(t.Metadata.Filters) > 0 {
		parts = append(parts, "filters: "+filterSummary(t.Metadata.Filters))
	}

	switch {
	case t.Metadata.KeyMetric != "":
		parts = append(parts, t.Metadata.KeyMetric)
	case t.Metadata.RowCount != nil:
		parts = append(parts, fmt.Sprintf("%d rows returned", *t.Metadata.RowCount))
	}

	return strings.Join(parts, "\n")
}

func filterSummary(filters []core.Filter) string {
	return strings.Join(lo.Map(filters, func(f core.Filter, _ int) string {
		return fmt.Sprintf("%s %s %v", f.Column, f.Operator, f.Value)
	}), ", ")
}

// FormatContext provides context for formatting a turn for prompt injection.
type FormatContext struct {
	Query     string // current question being answered
	MaxLength int    // max characters for this turn's output
}

// FormatTurn renders a stored turn for prompt injection. The question gets up
// to half the budget, the generated query the remainder.
func FormatTurn(t *core.Turn, ctx FormatContext) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Q: %s", truncate(t.Question, ctx.MaxLength/2)))

	if len(t.Metadata.Tables) > 0 {
		parts = append(parts, fmt.Sprintf("  Tables: %s", strings.Join(t.Metadata.Tables, ", ")))
	}

	if t.GeneratedQuery != "" {
		parts = append(parts, fmt.Sprintf("  SQL: %s", truncate(t.GeneratedQuery, ctx.MaxLength/2)))
	}

	switch {
	case t.Metadata.KeyMetric != "":
		parts = append(parts, fmt.Sprintf("  Result: %s", t.Metadata.KeyMetric))
	case t.Metadata.RowCount != nil:
		parts = append(parts, fmt.Sprintf("  Result: %d rows", *t.Metadata.RowCount))
	}

	return strings.Join(parts, "\n")
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}
