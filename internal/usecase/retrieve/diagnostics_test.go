package retrieve

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storefind/internal/domain"
	"github.com/kailas-cloud/storefind/internal/domain/query"
)

func fullColumns() map[string]string {
	return map[string]string{
		"id": "uuid", "name": "text", "description": "text",
		"price": "numeric", "stock_level": "integer",
		"is_active": "boolean", "embedding": "USER-DEFINED",
	}
}

func TestValidateSchema_OK(t *testing.T) {
	store := &mockStore{columns: fullColumns(), hasVector: true}
	r := newTestRetriever(store, &mockEmbedder{})

	report, err := r.ValidateSchema(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.OK || len(report.MissingColumns) != 0 || !report.VectorExtension {
		t.Errorf("report = %+v, want ok", report)
	}
}

func TestValidateSchema_MissingColumns(t *testing.T) {
	cols := fullColumns()
	delete(cols, "embedding")
	delete(cols, "is_active")
	store := &mockStore{columns: cols, hasVector: true}
	r := newTestRetriever(store, &mockEmbedder{})

	report, err := r.ValidateSchema(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.OK {
		t.Error("report should not be ok")
	}
	if !reflect.DeepEqual(report.MissingColumns, []string{"embedding", "is_active"}) {
		t.Errorf("missing columns = %v", report.MissingColumns)
	}
}

func TestValidateSchema_NoVectorExtension(t *testing.T) {
	store := &mockStore{columns: fullColumns(), hasVector: false}
	r := newTestRetriever(store, &mockEmbedder{})

	report, err := r.ValidateSchema(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.OK || report.VectorExtension {
		t.Errorf("report = %+v, want vector extension missing", report)
	}
}

func TestInspectIndexes_DetectsANN(t *testing.T) {
	store := &mockStore{indexDefs: []IndexDef{
		{Name: "products_pkey", Definition: "CREATE UNIQUE INDEX products_pkey ON products (id)"},
		{Name: "products_emb_idx", Definition: "CREATE INDEX products_emb_idx ON products USING hnsw (embedding vector_cosine_ops)"},
	}}
	r := newTestRetriever(store, &mockEmbedder{})

	report, err := r.InspectIndexes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.HasANNIndex {
		t.Error("hnsw index not detected")
	}
	if len(report.Recommendations) != 0 {
		t.Errorf("unexpected recommendations: %v", report.Recommendations)
	}
}

func TestInspectIndexes_RecommendsWhenMissing(t *testing.T) {
	store := &mockStore{indexDefs: []IndexDef{
		{Name: "products_pkey", Definition: "CREATE UNIQUE INDEX products_pkey ON products (id)"},
	}}
	r := newTestRetriever(store, &mockEmbedder{})

	report, err := r.InspectIndexes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.HasANNIndex {
		t.Error("no ANN index expected")
	}
	if len(report.Recommendations) != 3 {
		t.Fatalf("recommendations = %d, want 3", len(report.Recommendations))
	}
	if !strings.Contains(report.Recommendations[0], "hnsw") {
		t.Errorf("first recommendation should prefer hnsw: %q", report.Recommendations[0])
	}
}

func TestAnalyzePlan_SeqScan(t *testing.T) {
	plan := `[{"Plan": {"Node Type": "Limit", "Plans": [{"Node Type": "Seq Scan"}]}, "Execution Time": 42.5}]`
	store := &mockStore{plan: []byte(plan)}
	embedder := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	r := newTestRetriever(store, embedder)

	report, err := r.AnalyzePlan(context.Background(), "noodles", query.FilterParams{}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.SequentialScan {
		t.Error("sequential scan not detected")
	}
	if report.ExecutionTimeMs != 42.5 {
		t.Errorf("execution time = %v, want 42.5", report.ExecutionTimeMs)
	}
	if len(report.Recommendations) == 0 {
		t.Error("expected an ANN index recommendation")
	}
}

func TestAnalyzePlan_IndexScan(t *testing.T) {
	plan := `[{"Plan": {"Node Type": "Limit", "Plans": [
		{"Node Type": "Index Scan", "Index Name": "products_emb_idx"}
	]}, "Execution Time": 1.2}]`
	store := &mockStore{plan: []byte(plan)}
	embedder := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	r := newTestRetriever(store, embedder)

	report, err := r.AnalyzePlan(context.Background(), "noodles", query.FilterParams{}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.SequentialScan {
		t.Error("no sequential scan expected")
	}
	if !reflect.DeepEqual(report.IndexesUsed, []string{"products_emb_idx"}) {
		t.Errorf("indexes used = %v", report.IndexesUsed)
	}
	if len(report.Recommendations) != 0 {
		t.Errorf("unexpected recommendations: %v", report.Recommendations)
	}
}

func TestParsePlan_Malformed(t *testing.T) {
	if _, err := parsePlan([]byte("not json")); err == nil {
		t.Error("expected error for malformed plan")
	}
	if _, err := parsePlan([]byte("[]")); err == nil {
		t.Error("expected error for empty plan")
	}
}

func TestAnalyzePlan_DefaultLimit(t *testing.T) {
	plan := `[{"Plan": {"Node Type": "Limit"}, "Execution Time": 1.0}]`
	store := &mockStore{plan: []byte(plan)}
	embedder := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	r := New(store, embedder, Config{DefaultLimit: 7}, zap.NewNop())

	if _, err := r.AnalyzePlan(context.Background(), "q", query.FilterParams{}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
