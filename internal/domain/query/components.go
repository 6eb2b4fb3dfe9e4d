// Package query holds the value objects flowing through the search pipeline:
// extracted query components and the relational filter parameters derived
// from them.
package query

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/storefind/internal/domain"
)

// Components is the structured form of a free-text shopper query: the semantic
// remainder used for similarity ranking, optional price bounds, and optional
// negated terms. Immutable after construction.
type Components struct {
	semanticQuery string
	priceMin      *float64
	priceMax      *float64
	negatedTerms  []string
}

// NewComponents validates and constructs query components.
// semanticQuery is trimmed and must be non-empty. Price bounds, when present,
// must be non-negative with min <= max. negatedTerms may be nil.
func NewComponents(
	semanticQuery string, priceMin, priceMax *float64, negatedTerms []string,
) (Components, error) {
	semanticQuery = strings.TrimSpace(semanticQuery)
	if semanticQuery == "" {
		return Components{}, fmt.Errorf("%w: semantic query is required", domain.ErrValidation)
	}
	if err := validatePriceRange(priceMin, priceMax); err != nil {
		return Components{}, err
	}

	return Components{
		semanticQuery: semanticQuery,
		priceMin:      copyFloat(priceMin),
		priceMax:      copyFloat(priceMax),
		negatedTerms:  copyTerms(negatedTerms),
	}, nil
}

// FromMap reconstructs components from their map form (inverse of ToMap).
func FromMap(m map[string]any) (Components, error) {
	semantic, _ := m["semantic_query"].(string)
	return NewComponents(
		semantic,
		floatFromAny(m["price_min"]),
		floatFromAny(m["price_max"]),
		termsFromAny(m["negated_terms"]),
	)
}

// SemanticQuery returns the text to embed for similarity ranking.
func (c *Components) SemanticQuery() string { return c.semanticQuery }

// PriceMin returns the lower price bound, or nil.
func (c *Components) PriceMin() *float64 { return copyFloat(c.priceMin) }

// PriceMax returns the upper price bound, or nil.
func (c *Components) PriceMax() *float64 { return copyFloat(c.priceMax) }

// NegatedTerms returns the terms the shopper wants excluded, or nil.
func (c *Components) NegatedTerms() []string { return copyTerms(c.negatedTerms) }

// ToMap renders the components as a plain map (for debug traces and transport).
func (c *Components) ToMap() map[string]any {
	m := map[string]any{
		"semantic_query": c.semanticQuery,
		"price_min":      nil,
		"price_max":      nil,
		"negated_terms":  nil,
	}
	if c.priceMin != nil {
		m["price_min"] = *c.priceMin
	}
	if c.priceMax != nil {
		m["price_max"] = *c.priceMax
	}
	if c.negatedTerms != nil {
		m["negated_terms"] = copyTerms(c.negatedTerms)
	}
	return m
}

func validatePriceRange(min, max *float64) error {
	if min != nil && *min < 0 {
		return fmt.Errorf("%w: price_min must be non-negative, got %v", domain.ErrValidation, *min)
	}
	if max != nil && *max < 0 {
		return fmt.Errorf("%w: price_max must be non-negative, got %v", domain.ErrValidation, *max)
	}
	if min != nil && max != nil && *min > *max {
		return fmt.Errorf("%w: price_min %v exceeds price_max %v", domain.ErrValidation, *min, *max)
	}
	return nil
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func copyTerms(terms []string) []string {
	if terms == nil {
		return nil
	}
	out := make([]string, len(terms))
	copy(out, terms)
	return out
}

func floatFromAny(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case float32:
		f := float64(n)
		return &f
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	}
	return nil
}

func termsFromAny(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	return nil
}
