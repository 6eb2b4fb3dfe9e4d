package pipeline

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storefind/internal/domain/product"
	"github.com/kailas-cloud/storefind/internal/domain/query"
	"github.com/kailas-cloud/storefind/internal/usecase/retrieve"
	"github.com/kailas-cloud/storefind/internal/usecase/rewrite"
)

// --- Mocks ---

type mockRewriter struct {
	outcome rewrite.Outcome
	err     error
	lastRaw string
}

func (m *mockRewriter) Rewrite(_ context.Context, rawQuery string) (rewrite.Outcome, error) {
	m.lastRaw = rawQuery
	return m.outcome, m.err
}

type mockMapper struct {
	params query.FilterParams
	err    error
}

func (m *mockMapper) Map(_ query.Components) (query.FilterParams, error) {
	return m.params, m.err
}

type mockRetriever struct {
	results      []product.Result
	err          error
	lastSemantic string
	lastOpts     retrieve.Options
}

func (m *mockRetriever) Search(
	_ context.Context, semanticQuery string, _ query.FilterParams, opts retrieve.Options,
) ([]product.Result, error) {
	m.lastSemantic = semanticQuery
	m.lastOpts = opts
	return m.results, m.err
}

func floatPtr(f float64) *float64 { return &f }

func mustOutcome(t *testing.T, semantic string, max *float64, source rewrite.Source) rewrite.Outcome {
	t.Helper()
	c, err := query.NewComponents(semantic, nil, max, nil)
	if err != nil {
		t.Fatalf("NewComponents: %v", err)
	}
	return rewrite.Outcome{Components: c, Source: source}
}

func mustResult(t *testing.T, id string) product.Result {
	t.Helper()
	r, err := product.NewResult(id, "product "+id, nil, 10, 1, 0.9)
	if err != nil {
		t.Fatalf("NewResult: %v", err)
	}
	return r
}

func mustFilters(t *testing.T, max *float64) query.FilterParams {
	t.Helper()
	p, err := query.NewFilterParams(nil, max, nil)
	if err != nil {
		t.Fatalf("NewFilterParams: %v", err)
	}
	return p
}

func TestSearch_WiresStages(t *testing.T) {
	rewriter := &mockRewriter{outcome: mustOutcome(t, "instant noodles", floatPtr(20), rewrite.SourceLLM)}
	mapper := &mockMapper{params: mustFilters(t, floatPtr(20))}
	retriever := &mockRetriever{results: []product.Result{mustResult(t, "a")}}
	svc := New(rewriter, mapper, retriever, zap.NewNop())

	threshold := 0.5
	resp, err := svc.Search(context.Background(), "instant noodles under 20 pesos",
		Options{Limit: 5, SimilarityThreshold: &threshold})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rewriter.lastRaw != "instant noodles under 20 pesos" {
		t.Errorf("raw query = %q", rewriter.lastRaw)
	}
	if retriever.lastSemantic != "instant noodles" {
		t.Errorf("semantic query = %q", retriever.lastSemantic)
	}
	if retriever.lastOpts.Limit != 5 || retriever.lastOpts.SimilarityThreshold != &threshold {
		t.Errorf("retriever opts = %+v", retriever.lastOpts)
	}

	if got := resp.Results(); len(got) != 1 || got[0].ID() != "a" {
		t.Errorf("results = %v", got)
	}
	if fa := resp.FiltersApplied(); fa.PriceMax == nil || *fa.PriceMax != 20 {
		t.Errorf("filters applied = %+v, want price max 20", fa)
	}
	if resp.Debug() != nil {
		t.Error("debug snapshot present without debug option")
	}
}

func TestSearch_DebugSnapshot(t *testing.T) {
	rewriter := &mockRewriter{outcome: mustOutcome(t, "rice", nil, rewrite.SourceFallback)}
	mapper := &mockMapper{}
	retriever := &mockRetriever{}
	svc := New(rewriter, mapper, retriever, zap.NewNop())

	resp, err := svc.Search(context.Background(), "rice", Options{Debug: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := resp.Debug()
	if snap == nil {
		t.Fatal("debug snapshot missing")
	}
	if snap.ParsedConstraints["semantic_query"] != "rice" {
		t.Errorf("parsed constraints = %v", snap.ParsedConstraints)
	}
	if snap.ParsedConstraints["extraction_source"] != string(rewrite.SourceFallback) {
		t.Errorf("extraction source = %v", snap.ParsedConstraints["extraction_source"])
	}
	for _, stage := range []string{"rewrite", "map_filters", "search"} {
		if _, ok := snap.ExecutionTimes[stage]; !ok {
			t.Errorf("missing timing for stage %q", stage)
		}
	}
}

func TestSearch_StageErrors(t *testing.T) {
	stageErr := errors.New("stage failed")
	okOutcome := mustOutcome(t, "rice", nil, rewrite.SourceLLM)

	tests := []struct {
		name      string
		rewriter  *mockRewriter
		mapper    *mockMapper
		retriever *mockRetriever
	}{
		{"rewrite fails", &mockRewriter{err: stageErr}, &mockMapper{}, &mockRetriever{}},
		{"map fails", &mockRewriter{outcome: okOutcome}, &mockMapper{err: stageErr}, &mockRetriever{}},
		{"search fails", &mockRewriter{outcome: okOutcome}, &mockMapper{}, &mockRetriever{err: stageErr}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(tt.rewriter, tt.mapper, tt.retriever, zap.NewNop())
			_, err := svc.Search(context.Background(), "rice", Options{})
			if !errors.Is(err, stageErr) {
				t.Errorf("error = %v, want wrapped stage error", err)
			}
		})
	}
}
