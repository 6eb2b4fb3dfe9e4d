// Package retrieve executes hybrid product search: vector-similarity ranking
// combined with relational filters and negation exclusion in one query.
package retrieve

import (
	"context"
)

// Row is one product row returned by the search query.
type Row struct {
	ID          string
	Name        string
	Description *string
	Price       float64
	StockLevel  int
	Similarity  float64
}

// IndexDef describes one index on the product table.
type IndexDef struct {
	Name       string
	Definition string
}

// Store is the datastore contract for search and read-only diagnostics.
// Implementations acquire a connection per call and release it on all paths.
type Store interface {
	// QueryProducts runs the hybrid search query with positional args.
	QueryProducts(ctx context.Context, sql string, args []any) ([]Row, error)

	// TableColumns returns column name -> data type for a table.
	TableColumns(ctx context.Context, table string) (map[string]string, error)
	// HasVectorExtension reports whether the vector extension is installed.
	HasVectorExtension(ctx context.Context) (bool, error)
	// IndexDefinitions lists the indexes on a table.
	IndexDefinitions(ctx context.Context, table string) ([]IndexDef, error)
	// ExplainAnalyze returns the JSON execution plan for a query.
	ExplainAnalyze(ctx context.Context, sql string, args []any) ([]byte, error)
}
