// Package filtermap maps extracted query components onto relational filter
// parameters. The mapping is a pure function with no I/O.
package filtermap

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/storefind/internal/domain"
	"github.com/kailas-cloud/storefind/internal/domain/query"
)

// Config holds mapper settings.
type Config struct {
	// ValidateRanges re-validates the price range invariant on both the input
	// components and the constructed parameters. Redundant with the value
	// objects' own validation, kept as defense in depth.
	ValidateRanges bool
	// AllowNullFilters is a documented configuration surface with no
	// behavioral branch in the mapping itself.
	AllowNullFilters bool
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{ValidateRanges: true, AllowNullFilters: true}
}

// Mapper converts query components into filter parameters.
type Mapper struct {
	cfg Config
}

// New creates a mapper.
func New(cfg Config) *Mapper {
	return &Mapper{cfg: cfg}
}

// Map converts components into filter parameters: price bounds pass through
// unchanged, negated terms are trimmed, lowercased, and deduplicated, and an
// empty exclusion list becomes nil.
func (m *Mapper) Map(c query.Components) (query.FilterParams, error) {
	priceMin := c.PriceMin()
	priceMax := c.PriceMax()

	if m.cfg.ValidateRanges {
		if priceMin != nil && priceMax != nil && *priceMin > *priceMax {
			return query.FilterParams{}, fmt.Errorf(
				"%w: price_min %v exceeds price_max %v", domain.ErrValidation, *priceMin, *priceMax)
		}
	}

	excluded := NormalizeTerms(c.NegatedTerms())

	params, err := query.NewFilterParams(priceMin, priceMax, excluded)
	if err != nil {
		return query.FilterParams{}, fmt.Errorf("construct filter params: %w", err)
	}
	return params, nil
}

// NormalizeTerms trims, lowercases, and deduplicates terms, dropping empties.
// Returns nil for an empty result. Idempotent.
func NormalizeTerms(terms []string) []string {
	if len(terms) == 0 {
		return nil
	}
	out := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, raw := range terms {
		term := strings.ToLower(strings.TrimSpace(raw))
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
