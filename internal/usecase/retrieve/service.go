package retrieve

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storefind/internal/domain"
	"github.com/kailas-cloud/storefind/internal/domain/product"
	"github.com/kailas-cloud/storefind/internal/domain/query"
	"github.com/kailas-cloud/storefind/internal/metrics"
	"github.com/kailas-cloud/storefind/internal/trace"
)

// Config holds retriever settings.
type Config struct {
	// Table is the product table name.
	Table string
	// DefaultLimit applies when a search passes no limit.
	DefaultLimit int
	// MaxLimit caps the per-search limit.
	MaxLimit int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{Table: "products", DefaultLimit: 20, MaxLimit: 100}
}

func (c *Config) applyDefaults() {
	if c.Table == "" {
		c.Table = "products"
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 20
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = 100
	}
}

// Options are per-search knobs.
type Options struct {
	// Limit caps the number of results; 0 means the configured default.
	Limit int
	// SimilarityThreshold drops results scoring below it when non-nil.
	SimilarityThreshold *float64
}

// Retriever runs hybrid search: embed the semantic query, build one
// parameterized query combining vector-distance ordering with relational
// filters, execute it, and post-process the rows. Stateless across calls.
type Retriever struct {
	store    Store
	embedder domain.Embedder
	cfg      Config
	logger   *zap.Logger
}

// New creates a retriever.
func New(store Store, embedder domain.Embedder, cfg Config, logger *zap.Logger) *Retriever {
	cfg.applyDefaults()
	return &Retriever{store: store, embedder: embedder, cfg: cfg, logger: logger}
}

// Search runs one hybrid search. Embedding and datastore failures propagate
// wrapped; similarity scores outside [0,1] are logged, never repaired.
func (r *Retriever) Search(
	ctx context.Context, semanticQuery string, filters query.FilterParams, opts Options,
) ([]product.Result, error) {
	rec := trace.FromContext(ctx)
	rec.SemanticQuery(semanticQuery)

	embResult, err := r.embedder.Embed(ctx, semanticQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	rec.Step("embed", fmt.Sprintf("%d-dimensional query embedding", len(embResult.Embedding)))

	limit := opts.Limit
	if limit <= 0 {
		limit = r.cfg.DefaultLimit
	}
	if limit > r.cfg.MaxLimit {
		limit = r.cfg.MaxLimit
	}

	q := buildSearchQuery(r.cfg.Table, embResult.Embedding, filters, limit, rec)
	rec.Step("build_query", fmt.Sprintf("%d positional parameters", len(q.args)))

	rows, err := r.store.QueryProducts(ctx, q.sql, q.args)
	if err != nil {
		return nil, err
	}
	rec.Step("execute", fmt.Sprintf("%d rows returned", len(rows)))

	results, err := r.toResults(rows, rec)
	if err != nil {
		return nil, err
	}

	results = r.applyThreshold(results, opts.SimilarityThreshold, rec)
	results = applyNegationPostFilter(results, filters)

	metrics.SearchResultsReturned.Observe(float64(len(results)))
	return results, nil
}

// toResults converts rows to results, flagging out-of-range similarity
// scores. Violations are logged and counted, not corrected and not fatal.
func (r *Retriever) toResults(rows []Row, rec trace.Recorder) ([]product.Result, error) {
	results := make([]product.Result, 0, len(rows))
	for _, row := range rows {
		res, err := product.NewResult(
			row.ID, row.Name, row.Description, row.Price, row.StockLevel, row.Similarity)
		if err != nil {
			return nil, fmt.Errorf("invalid product row %q: %w", row.ID, err)
		}
		if !res.ScoreInRange() {
			metrics.ScoreViolationsTotal.Inc()
			r.logger.Warn("similarity score out of range",
				zap.String("product_id", row.ID),
				zap.Float64("similarity_score", row.Similarity),
			)
			rec.Step("score_violation",
				fmt.Sprintf("product %s scored %v", row.ID, row.Similarity))
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Retriever) applyThreshold(
	results []product.Result, threshold *float64, rec trace.Recorder,
) []product.Result {
	if threshold == nil {
		return results
	}
	kept := results[:0]
	for _, res := range results {
		if res.SimilarityScore() >= *threshold {
			kept = append(kept, res)
			continue
		}
		rec.ExcludedProduct(res.ID(), res.Name(), fmt.Sprintf("similarity below %v", *threshold))
	}
	return kept
}

// applyNegationPostFilter is the placeholder for semantic negation filtering.
// Negation is currently enforced at the SQL layer as a literal
// case-insensitive substring exclusion; a vector-similarity negation filter
// would slot in here.
func applyNegationPostFilter(results []product.Result, _ query.FilterParams) []product.Result {
	return results
}
