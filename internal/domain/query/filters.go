package query

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/storefind/internal/domain"
)

// FilterParams are the relational filter parameters derived from Components.
// Invariant: excludedTerms is either nil or a non-empty, deduplicated,
// trimmed-lowercase list. An empty list is normalized to nil at construction,
// the single silent repair this type performs.
type FilterParams struct {
	minPrice      *float64
	maxPrice      *float64
	excludedTerms []string
}

// NewFilterParams validates and constructs filter parameters.
// excludedTerms must already be normalized (trimmed, lowercase, deduplicated);
// a violation is a validation error, not repaired here.
func NewFilterParams(minPrice, maxPrice *float64, excludedTerms []string) (FilterParams, error) {
	if err := validatePriceRange(minPrice, maxPrice); err != nil {
		return FilterParams{}, err
	}
	if len(excludedTerms) == 0 {
		excludedTerms = nil
	}
	if err := validateExcludedTerms(excludedTerms); err != nil {
		return FilterParams{}, err
	}

	return FilterParams{
		minPrice:      copyFloat(minPrice),
		maxPrice:      copyFloat(maxPrice),
		excludedTerms: copyTerms(excludedTerms),
	}, nil
}

// MinPrice returns the inclusive lower price bound, or nil.
func (p *FilterParams) MinPrice() *float64 { return copyFloat(p.minPrice) }

// MaxPrice returns the inclusive upper price bound, or nil.
func (p *FilterParams) MaxPrice() *float64 { return copyFloat(p.maxPrice) }

// ExcludedTerms returns the normalized exclusion list, or nil.
func (p *FilterParams) ExcludedTerms() []string { return copyTerms(p.excludedTerms) }

// IsEmpty reports whether no filter is set.
func (p *FilterParams) IsEmpty() bool {
	return p.minPrice == nil && p.maxPrice == nil && p.excludedTerms == nil
}

func validateExcludedTerms(terms []string) error {
	seen := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		if term == "" {
			return fmt.Errorf("%w: excluded term must be non-empty", domain.ErrValidation)
		}
		if term != strings.ToLower(strings.TrimSpace(term)) {
			return fmt.Errorf("%w: excluded term %q is not normalized", domain.ErrValidation, term)
		}
		if _, dup := seen[term]; dup {
			return fmt.Errorf("%w: duplicate excluded term %q", domain.ErrValidation, term)
		}
		seen[term] = struct{}{}
	}
	return nil
}

// FiltersApplied is the transparency record of the filters actually applied
// to a search, in the response wire shape.
type FiltersApplied struct {
	PriceMin      *float64 `json:"price_min"`
	PriceMax      *float64 `json:"price_max"`
	ExcludedTerms []string `json:"excluded_terms"`
}

// FiltersAppliedFrom converts filter parameters into their transparency form.
// The conversion is one-directional.
func FiltersAppliedFrom(p FilterParams) FiltersApplied {
	return FiltersApplied{
		PriceMin:      p.MinPrice(),
		PriceMax:      p.MaxPrice(),
		ExcludedTerms: p.ExcludedTerms(),
	}
}
