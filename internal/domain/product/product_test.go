package product

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/storefind/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestNewResult_DerivesStockStatus(t *testing.T) {
	tests := []struct {
		name       string
		stockLevel int
		wantIn     bool
		wantLabel  string
	}{
		{"positive stock", 5, true, StatusInStock},
		{"zero stock", 0, false, StatusOutOfStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewResult("p1", "Instant Noodles", nil, 12.5, tt.stockLevel, 0.9)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.InStock() != tt.wantIn {
				t.Errorf("InStock = %t, want %t", r.InStock(), tt.wantIn)
			}
			if r.StatusLabel() != tt.wantLabel {
				t.Errorf("StatusLabel = %q, want %q", r.StatusLabel(), tt.wantLabel)
			}
		})
	}
}

func TestNewResult_Validation(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		pname string
		price float64
		stock int
	}{
		{"missing id", "", "Noodles", 10, 1},
		{"missing name", "p1", "", 10, 1},
		{"negative price", "p1", "Noodles", -1, 1},
		{"negative stock", "p1", "Noodles", 10, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResult(tt.id, tt.pname, nil, tt.price, tt.stock, 0.5)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestReconstruct_InconsistentDerivedFields(t *testing.T) {
	// in_stock disagrees with stock_level
	_, err := Reconstruct("p1", "Noodles", nil, 10, 5, false, StatusOutOfStock, 0.5)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("inconsistent in_stock error = %v, want ErrValidation", err)
	}

	// label disagrees with in_stock
	_, err = Reconstruct("p1", "Noodles", nil, 10, 5, true, StatusOutOfStock, 0.5)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("inconsistent label error = %v, want ErrValidation", err)
	}
}

func TestNewResult_OutOfRangeScoreAllowed(t *testing.T) {
	// Score range is checked after construction, never enforced at it.
	r, err := NewResult("p1", "Noodles", nil, 10, 1, 1.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ScoreInRange() {
		t.Error("expected ScoreInRange to be false for 1.7")
	}

	r, err = NewResult("p2", "Rice", nil, 10, 1, 0.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.ScoreInRange() {
		t.Error("expected ScoreInRange to be true for 0.0")
	}
}

func TestResult_DescriptionCopy(t *testing.T) {
	desc := strPtr("chewy noodles")
	r, err := NewResult("p1", "Noodles", desc, 10, 1, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	*desc = "mutated"
	got := r.Description()
	if got == nil || *got != "chewy noodles" {
		t.Errorf("description = %v, want %q", got, "chewy noodles")
	}

	*got = "mutated again"
	if *r.Description() != "chewy noodles" {
		t.Error("returned description aliases internal state")
	}
}
