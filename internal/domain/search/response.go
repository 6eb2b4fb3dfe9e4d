// Package search holds the aggregated search response value object.
package search

import (
	"sort"

	"github.com/kailas-cloud/storefind/internal/domain/product"
	"github.com/kailas-cloud/storefind/internal/domain/query"
	"github.com/kailas-cloud/storefind/internal/trace"
)

// Response aggregates ranked results, the filters actually applied, and an
// optional debug snapshot. It holds no invariants of its own beyond those of
// its constituents.
type Response struct {
	results        []product.Result
	filtersApplied query.FiltersApplied
	debug          *trace.Snapshot
}

// Summary holds aggregate statistics over a result set.
type Summary struct {
	Total         int     `json:"total"`
	InStock       int     `json:"in_stock"`
	OutOfStock    int     `json:"out_of_stock"`
	AvgSimilarity float64 `json:"avg_similarity"`
	MinPrice      float64 `json:"min_price"`
	MaxPrice      float64 `json:"max_price"`
}

// NewResponse creates a search response. debug may be nil.
func NewResponse(
	results []product.Result, filtersApplied query.FiltersApplied, debug *trace.Snapshot,
) Response {
	return Response{
		results:        append([]product.Result(nil), results...),
		filtersApplied: filtersApplied,
		debug:          debug,
	}
}

// Results returns the ranked results in retrieval order.
func (r *Response) Results() []product.Result {
	return append([]product.Result(nil), r.results...)
}

// FiltersApplied returns the transparency record of applied filters.
func (r *Response) FiltersApplied() query.FiltersApplied { return r.filtersApplied }

// Debug returns the debug snapshot, or nil when tracing was disabled.
func (r *Response) Debug() *trace.Snapshot { return r.debug }

// SortedBySimilarity returns the results ordered by descending similarity.
func (r *Response) SortedBySimilarity() []product.Result {
	out := r.Results()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SimilarityScore() > out[j].SimilarityScore()
	})
	return out
}

// InStock returns the subset of results with stock.
func (r *Response) InStock() []product.Result {
	return r.filter(func(p *product.Result) bool { return p.InStock() })
}

// OutOfStock returns the subset of results without stock.
func (r *Response) OutOfStock() []product.Result {
	return r.filter(func(p *product.Result) bool { return !p.InStock() })
}

// WithinPriceRange returns results whose price lies in [min, max] inclusive.
func (r *Response) WithinPriceRange(min, max float64) []product.Result {
	return r.filter(func(p *product.Result) bool {
		return p.Price() >= min && p.Price() <= max
	})
}

// Stats computes aggregate statistics over the result set.
func (r *Response) Stats() Summary {
	s := Summary{Total: len(r.results)}
	if s.Total == 0 {
		return s
	}

	var sumScore float64
	s.MinPrice = r.results[0].Price()
	s.MaxPrice = r.results[0].Price()
	for i := range r.results {
		p := &r.results[i]
		if p.InStock() {
			s.InStock++
		} else {
			s.OutOfStock++
		}
		sumScore += p.SimilarityScore()
		if p.Price() < s.MinPrice {
			s.MinPrice = p.Price()
		}
		if p.Price() > s.MaxPrice {
			s.MaxPrice = p.Price()
		}
	}
	s.AvgSimilarity = sumScore / float64(s.Total)
	return s
}

func (r *Response) filter(keep func(*product.Result) bool) []product.Result {
	out := make([]product.Result, 0, len(r.results))
	for i := range r.results {
		if keep(&r.results[i]) {
			out = append(out, r.results[i])
		}
	}
	return out
}
