// Package product holds the product search result value object.
package product

import (
	"fmt"

	"github.com/kailas-cloud/storefind/internal/domain"
)

// Stock status labels, fixed wire-level text.
const (
	StatusInStock    = "In Stock"
	StatusOutOfStock = "Out of Stock"
)

// Result is a single ranked product hit. The in-stock flag and status label
// are derived from the stock level; constructing a Result whose derived
// fields disagree with the stock level is a hard validation error.
//
// The similarity score is expected to lie in [0,1] but is deliberately not
// enforced here: out-of-range scores coming back from the datastore are
// flagged by the post-query validator, not rejected.
type Result struct {
	id              string
	name            string
	description     *string
	price           float64
	stockLevel      int
	inStock         bool
	statusLabel     string
	similarityScore float64
}

// NewResult constructs a result from row-level fields, deriving the in-stock
// flag and status label from the stock level.
func NewResult(
	id, name string, description *string,
	price float64, stockLevel int, similarityScore float64,
) (Result, error) {
	inStock := stockLevel > 0
	return Reconstruct(id, name, description, price, stockLevel,
		inStock, labelFor(inStock), similarityScore)
}

// Reconstruct builds a result from a fully specified object, validating that
// the derived fields are consistent with the stock level.
func Reconstruct(
	id, name string, description *string,
	price float64, stockLevel int,
	inStock bool, statusLabel string, similarityScore float64,
) (Result, error) {
	if id == "" {
		return Result{}, fmt.Errorf("%w: product id is required", domain.ErrValidation)
	}
	if name == "" {
		return Result{}, fmt.Errorf("%w: product name is required", domain.ErrValidation)
	}
	if price < 0 {
		return Result{}, fmt.Errorf("%w: price must be non-negative, got %v", domain.ErrValidation, price)
	}
	if stockLevel < 0 {
		return Result{}, fmt.Errorf("%w: stock level must be non-negative, got %d", domain.ErrValidation, stockLevel)
	}
	if inStock != (stockLevel > 0) {
		return Result{}, fmt.Errorf(
			"%w: in_stock=%t inconsistent with stock_level=%d", domain.ErrValidation, inStock, stockLevel)
	}
	if statusLabel != labelFor(inStock) {
		return Result{}, fmt.Errorf(
			"%w: status_label %q inconsistent with stock_level=%d", domain.ErrValidation, statusLabel, stockLevel)
	}

	var desc *string
	if description != nil {
		d := *description
		desc = &d
	}

	return Result{
		id:              id,
		name:            name,
		description:     desc,
		price:           price,
		stockLevel:      stockLevel,
		inStock:         inStock,
		statusLabel:     statusLabel,
		similarityScore: similarityScore,
	}, nil
}

// ID returns the product identifier.
func (r *Result) ID() string { return r.id }

// Name returns the product name.
func (r *Result) Name() string { return r.name }

// Description returns the product description, or nil.
func (r *Result) Description() *string {
	if r.description == nil {
		return nil
	}
	d := *r.description
	return &d
}

// Price returns the product price.
func (r *Result) Price() float64 { return r.price }

// StockLevel returns the units in stock.
func (r *Result) StockLevel() int { return r.stockLevel }

// InStock reports whether the product has stock.
func (r *Result) InStock() bool { return r.inStock }

// StatusLabel returns the fixed stock status text.
func (r *Result) StatusLabel() string { return r.statusLabel }

// SimilarityScore returns the [0,1] similarity to the query embedding.
func (r *Result) SimilarityScore() float64 { return r.similarityScore }

// ScoreInRange reports whether the similarity score lies in [0,1].
func (r *Result) ScoreInRange() bool {
	return r.similarityScore >= 0 && r.similarityScore <= 1
}

func labelFor(inStock bool) string {
	if inStock {
		return StatusInStock
	}
	return StatusOutOfStock
}
