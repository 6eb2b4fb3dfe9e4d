package rewrite

import (
	"reflect"
	"testing"
)

func TestExtractFallback_PriceUpperBound(t *testing.T) {
	res := extractFallback("instant noodles under 20 pesos")
	if !res.ok {
		t.Fatalf("extraction failed: %s", res.reason)
	}

	c := res.components
	if c.SemanticQuery() != "instant noodles" {
		t.Errorf("semantic query = %q, want %q", c.SemanticQuery(), "instant noodles")
	}
	if c.PriceMin() != nil {
		t.Errorf("price min = %v, want nil", *c.PriceMin())
	}
	if c.PriceMax() == nil || *c.PriceMax() != 20 {
		t.Errorf("price max = %v, want 20", c.PriceMax())
	}
	if c.NegatedTerms() != nil {
		t.Errorf("negated terms = %v, want nil", c.NegatedTerms())
	}
}

func TestExtractFallback_LowerBoundWithNegation(t *testing.T) {
	res := extractFallback("rice above 50 pesos no spicy")
	if !res.ok {
		t.Fatalf("extraction failed: %s", res.reason)
	}

	c := res.components
	if c.SemanticQuery() != "rice" {
		t.Errorf("semantic query = %q, want %q", c.SemanticQuery(), "rice")
	}
	if c.PriceMin() == nil || *c.PriceMin() != 50 {
		t.Errorf("price min = %v, want 50", c.PriceMin())
	}
	if c.PriceMax() != nil {
		t.Errorf("price max = %v, want nil", *c.PriceMax())
	}
	if !reflect.DeepEqual(c.NegatedTerms(), []string{"spicy"}) {
		t.Errorf("negated terms = %v, want [spicy]", c.NegatedTerms())
	}
}

func TestExtractFallback_BetweenWithNegation(t *testing.T) {
	res := extractFallback("tools between 100 and 500 pesos without batteries")
	if !res.ok {
		t.Fatalf("extraction failed: %s", res.reason)
	}

	c := res.components
	if c.PriceMin() == nil || *c.PriceMin() != 100 {
		t.Errorf("price min = %v, want 100", c.PriceMin())
	}
	if c.PriceMax() == nil || *c.PriceMax() != 500 {
		t.Errorf("price max = %v, want 500", c.PriceMax())
	}
	if !reflect.DeepEqual(c.NegatedTerms(), []string{"batteries"}) {
		t.Errorf("negated terms = %v, want [batteries]", c.NegatedTerms())
	}
	if c.SemanticQuery() != "tools" {
		t.Errorf("semantic query = %q, want %q", c.SemanticQuery(), "tools")
	}
}

func TestExtractFallback_ReversedBetweenSwapped(t *testing.T) {
	res := extractFallback("snacks between 500 and 100 pesos")
	if !res.ok {
		t.Fatalf("extraction failed: %s", res.reason)
	}
	c := res.components
	if *c.PriceMin() != 100 || *c.PriceMax() != 500 {
		t.Errorf("bounds = %v..%v, want 100..500", *c.PriceMin(), *c.PriceMax())
	}
}

func TestExtractFallback_ReversedIndependentBoundsSwapped(t *testing.T) {
	res := extractFallback("drinks above 100 under 50")
	if !res.ok {
		t.Fatalf("extraction failed: %s", res.reason)
	}
	c := res.components
	if c.PriceMin() == nil || c.PriceMax() == nil {
		t.Fatalf("bounds = %v/%v, want both set", c.PriceMin(), c.PriceMax())
	}
	if *c.PriceMin() != 50 || *c.PriceMax() != 100 {
		t.Errorf("bounds = %v..%v, want 50..100", *c.PriceMin(), *c.PriceMax())
	}
}

func TestExtractFallback_CompoundNegations(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"snacks without nuts or dairy", []string{"nuts", "dairy"}},
		{"candy, don't want chocolate, caramel", []string{"chocolate", "caramel"}},
		{"chips no onion and garlic", []string{"onion", "garlic"}},
		{"soup avoid spicy avoid spicy", []string{"spicy"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res := extractFallback(tt.query)
			if !res.ok {
				t.Fatalf("extraction failed: %s", res.reason)
			}
			if got := res.components.NegatedTerms(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("negated terms = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractFallback_FillerAndSynonyms(t *testing.T) {
	res := extractFallback("please find me some noodle under 30")
	if !res.ok {
		t.Fatalf("extraction failed: %s", res.reason)
	}
	if got := res.components.SemanticQuery(); got != "noodles" {
		t.Errorf("semantic query = %q, want %q", got, "noodles")
	}
}

func TestExtractFallback_DegradesToLeadTokens(t *testing.T) {
	// The negation phrase consumes the whole query; the semantic query falls
	// back to leading meaningful tokens of the original.
	res := extractFallback("no spicy")
	if !res.ok {
		t.Fatalf("extraction failed: %s", res.reason)
	}
	if got := res.components.SemanticQuery(); got != "no spicy" {
		t.Errorf("semantic query = %q, want %q", got, "no spicy")
	}
	if !reflect.DeepEqual(res.components.NegatedTerms(), []string{"spicy"}) {
		t.Errorf("negated terms = %v, want [spicy]", res.components.NegatedTerms())
	}

	// Nothing meaningful at all: fixed literal.
	res = extractFallback("show me under 20")
	if !res.ok {
		t.Fatalf("extraction failed: %s", res.reason)
	}
	if got := res.components.SemanticQuery(); got != fallbackQuery {
		t.Errorf("semantic query = %q, want %q", got, fallbackQuery)
	}
}

func TestExtractFallback_NoConstraints(t *testing.T) {
	res := extractFallback("fresh vegetables")
	if !res.ok {
		t.Fatalf("extraction failed: %s", res.reason)
	}
	c := res.components
	if c.PriceMin() != nil || c.PriceMax() != nil || c.NegatedTerms() != nil {
		t.Errorf("expected no constraints, got %v", c.ToMap())
	}
	if c.SemanticQuery() != "fresh vegetables" {
		t.Errorf("semantic query = %q", c.SemanticQuery())
	}
}

func TestExtractFallback_CurrencyPrefixes(t *testing.T) {
	res := extractFallback("rice under ₱25.50")
	if !res.ok {
		t.Fatalf("extraction failed: %s", res.reason)
	}
	if c := res.components; c.PriceMax() == nil || *c.PriceMax() != 25.5 {
		t.Errorf("price max = %v, want 25.5", c.PriceMax())
	}
}
