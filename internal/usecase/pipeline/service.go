package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storefind/internal/domain/query"
	"github.com/kailas-cloud/storefind/internal/domain/search"
	"github.com/kailas-cloud/storefind/internal/metrics"
	"github.com/kailas-cloud/storefind/internal/trace"
	"github.com/kailas-cloud/storefind/internal/usecase/retrieve"
)

// Service wires the pipeline stages together.
type Service struct {
	rewriter  Rewriter
	mapper    FilterMapper
	retriever Retriever
	logger    *zap.Logger
}

// New creates the pipeline service.
func New(rewriter Rewriter, mapper FilterMapper, retriever Retriever, logger *zap.Logger) *Service {
	return &Service{rewriter: rewriter, mapper: mapper, retriever: retriever, logger: logger}
}

// Search runs the full pipeline for one raw query.
func (s *Service) Search(ctx context.Context, rawQuery string, opts Options) (search.Response, error) {
	var debug *trace.Debug
	rec := trace.FromContext(ctx)
	if opts.Debug {
		debug = trace.NewDebug()
		rec = trace.Multi(rec, debug)
		ctx = trace.WithRecorder(ctx, rec)
	}

	resp, err := s.run(ctx, rawQuery, opts, rec, debug)
	if err != nil {
		metrics.SearchTotal.WithLabelValues("error").Inc()
		return search.Response{}, err
	}
	metrics.SearchTotal.WithLabelValues("success").Inc()
	return resp, nil
}

func (s *Service) run(
	ctx context.Context, rawQuery string, opts Options,
	rec trace.Recorder, debug *trace.Debug,
) (search.Response, error) {
	rewriteStart := time.Now()
	outcome, err := s.rewriter.Rewrite(ctx, rawQuery)
	s.observeStage(rec, "rewrite", rewriteStart)
	if err != nil {
		return search.Response{}, fmt.Errorf("rewrite query: %w", err)
	}

	constraints := outcome.Components.ToMap()
	constraints["extraction_source"] = string(outcome.Source)
	rec.ParsedConstraints(constraints)

	mapStart := time.Now()
	filters, err := s.mapper.Map(outcome.Components)
	s.observeStage(rec, "map_filters", mapStart)
	if err != nil {
		return search.Response{}, fmt.Errorf("map filters: %w", err)
	}

	searchStart := time.Now()
	results, err := s.retriever.Search(ctx, outcome.Components.SemanticQuery(), filters,
		retrieve.Options{Limit: opts.Limit, SimilarityThreshold: opts.SimilarityThreshold})
	s.observeStage(rec, "search", searchStart)
	if err != nil {
		return search.Response{}, fmt.Errorf("hybrid search: %w", err)
	}

	s.logger.Info("search completed",
		zap.String("semantic_query", outcome.Components.SemanticQuery()),
		zap.String("extraction_source", string(outcome.Source)),
		zap.Int("results", len(results)),
	)

	var snapshot *trace.Snapshot
	if debug != nil {
		snap := debug.Snapshot()
		snapshot = &snap
	}
	return search.NewResponse(results, query.FiltersAppliedFrom(filters), snapshot), nil
}

func (s *Service) observeStage(rec trace.Recorder, stage string, start time.Time) {
	took := time.Since(start)
	rec.Timing(stage, took)
	metrics.SearchStageDuration.WithLabelValues(stage).Observe(took.Seconds())
}
