package retrieve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/storefind/internal/domain/query"
	"github.com/kailas-cloud/storefind/internal/trace"
)

// builtQuery is a parameterized search query ready for execution.
// Positional parameter order is fixed:
// [embedding, min_price?, max_price?, excluded_term_patterns..., limit].
type builtQuery struct {
	sql  string
	args []any
}

// buildSearchQuery assembles the hybrid search query. Price bounds and
// description exclusions are NULL-safe; ordering puts in-stock products
// first, then nearest semantic match. Filter decisions are reported to the
// recorder as predicates are appended.
func buildSearchQuery(
	table string, embedding []float32, filters query.FilterParams,
	limit int, rec trace.Recorder,
) builtQuery {
	args := []any{VectorLiteral(embedding)}

	var sb strings.Builder
	sb.WriteString("SELECT id, name, description, price, stock_level, ")
	sb.WriteString("1 - (embedding <=> $1::vector) AS similarity_score\n")
	sb.WriteString("FROM " + table + "\n")
	sb.WriteString("WHERE is_active = TRUE")

	if min := filters.MinPrice(); min != nil {
		args = append(args, *min)
		fmt.Fprintf(&sb, "\n  AND price IS NOT NULL AND price >= $%d", len(args))
		rec.FilterDecision("min_price", true, fmt.Sprintf("price >= %v", *min))
	} else {
		rec.FilterDecision("min_price", false, "no lower bound extracted")
	}

	if max := filters.MaxPrice(); max != nil {
		args = append(args, *max)
		fmt.Fprintf(&sb, "\n  AND price IS NOT NULL AND price <= $%d", len(args))
		rec.FilterDecision("max_price", true, fmt.Sprintf("price <= %v", *max))
	} else {
		rec.FilterDecision("max_price", false, "no upper bound extracted")
	}

	for _, term := range filters.ExcludedTerms() {
		args = append(args, "%"+term+"%")
		fmt.Fprintf(&sb, "\n  AND (description IS NULL OR description NOT ILIKE $%d)", len(args))
		rec.NegationDecision(term, "sql_not_ilike", "")
	}

	sb.WriteString("\nORDER BY (stock_level > 0) DESC, embedding <=> $1::vector ASC")

	args = append(args, limit)
	fmt.Fprintf(&sb, "\nLIMIT $%d", len(args))

	sql := sb.String()
	rec.RawSQL(sql)
	return builtQuery{sql: sql, args: args}
}

// VectorLiteral renders an embedding in the datastore's vector text format,
// e.g. "[0.1,0.2,0.3]".
func VectorLiteral(v []float32) string {
	var sb strings.Builder
	sb.Grow(len(v)*10 + 2)
	sb.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}
