// Package pipeline orchestrates the search stages: query rewriting, filter
// mapping, and hybrid retrieval. Stages are strictly sequential and
// data-dependent; each request is an independent, stateless unit of work.
package pipeline

import (
	"context"

	"github.com/kailas-cloud/storefind/internal/domain/product"
	"github.com/kailas-cloud/storefind/internal/domain/query"
	"github.com/kailas-cloud/storefind/internal/usecase/retrieve"
	"github.com/kailas-cloud/storefind/internal/usecase/rewrite"
)

// Rewriter extracts structured components from a raw query.
type Rewriter interface {
	Rewrite(ctx context.Context, rawQuery string) (rewrite.Outcome, error)
}

// FilterMapper converts components into relational filter parameters.
type FilterMapper interface {
	Map(c query.Components) (query.FilterParams, error)
}

// Retriever runs the hybrid search.
type Retriever interface {
	Search(
		ctx context.Context, semanticQuery string,
		filters query.FilterParams, opts retrieve.Options,
	) ([]product.Result, error)
}

// Options are per-request search knobs.
type Options struct {
	// Limit caps the number of results; 0 means the retriever default.
	Limit int
	// Debug attaches a trace snapshot to the response.
	Debug bool
	// SimilarityThreshold drops results scoring below it when non-nil.
	SimilarityThreshold *float64
}
