package search

import (
	"testing"

	"github.com/kailas-cloud/storefind/internal/domain/product"
	"github.com/kailas-cloud/storefind/internal/domain/query"
)

func mustResult(t *testing.T, id string, price float64, stock int, score float64) product.Result {
	t.Helper()
	r, err := product.NewResult(id, "product "+id, nil, price, stock, score)
	if err != nil {
		t.Fatalf("NewResult(%s): %v", id, err)
	}
	return r
}

func testResponse(t *testing.T) Response {
	t.Helper()
	results := []product.Result{
		mustResult(t, "a", 15, 3, 0.9),
		mustResult(t, "b", 45, 0, 0.95),
		mustResult(t, "c", 25, 1, 0.7),
	}
	return NewResponse(results, query.FiltersApplied{}, nil)
}

func TestResponse_PreservesRetrievalOrder(t *testing.T) {
	resp := testResponse(t)
	got := resp.Results()
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i].ID() != want[i] {
			t.Errorf("results[%d] = %s, want %s", i, got[i].ID(), want[i])
		}
	}
}

func TestResponse_SortedBySimilarity(t *testing.T) {
	resp := testResponse(t)
	got := resp.SortedBySimilarity()
	want := []string{"b", "a", "c"}
	for i := range want {
		if got[i].ID() != want[i] {
			t.Errorf("sorted[%d] = %s, want %s", i, got[i].ID(), want[i])
		}
	}

	// The view must not reorder the response itself.
	if resp.Results()[0].ID() != "a" {
		t.Error("SortedBySimilarity mutated retrieval order")
	}
}

func TestResponse_StockViews(t *testing.T) {
	resp := testResponse(t)

	in := resp.InStock()
	if len(in) != 2 || in[0].ID() != "a" || in[1].ID() != "c" {
		t.Errorf("InStock = %v results, want [a c]", len(in))
	}

	out := resp.OutOfStock()
	if len(out) != 1 || out[0].ID() != "b" {
		t.Errorf("OutOfStock = %v results, want [b]", len(out))
	}
}

func TestResponse_WithinPriceRange(t *testing.T) {
	resp := testResponse(t)
	got := resp.WithinPriceRange(15, 25)
	if len(got) != 2 || got[0].ID() != "a" || got[1].ID() != "c" {
		t.Errorf("WithinPriceRange(15, 25) = %d results, want [a c]", len(got))
	}
}

func TestResponse_Stats(t *testing.T) {
	resp := testResponse(t)
	s := resp.Stats()

	if s.Total != 3 || s.InStock != 2 || s.OutOfStock != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/2/1", s.Total, s.InStock, s.OutOfStock)
	}
	if s.MinPrice != 15 || s.MaxPrice != 45 {
		t.Errorf("price range = %v..%v, want 15..45", s.MinPrice, s.MaxPrice)
	}
	wantAvg := (0.9 + 0.95 + 0.7) / 3
	if diff := s.AvgSimilarity - wantAvg; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("avg similarity = %v, want %v", s.AvgSimilarity, wantAvg)
	}
}

func TestResponse_StatsEmpty(t *testing.T) {
	resp := NewResponse(nil, query.FiltersApplied{}, nil)
	s := resp.Stats()
	if s.Total != 0 || s.AvgSimilarity != 0 || s.MinPrice != 0 || s.MaxPrice != 0 {
		t.Errorf("empty stats = %+v, want zero value", s)
	}
}
