package rewrite

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/storefind/internal/domain/query"
)

const extractionPrompt = `Extract structured search constraints from a shopper's product query.

Return ONLY a JSON object with these fields:
- "semantic_query": the product description with price and negation phrases removed (required, non-empty)
- "price_min": lower price bound as a number, or null
- "price_max": upper price bound as a number, or null
- "negated_terms": array of words the shopper wants excluded, or null

Examples:

Query: "instant noodles under 20 pesos"
{"semantic_query": "instant noodles", "price_min": null, "price_max": 20, "negated_terms": null}

Query: "rice above 50 pesos no spicy"
{"semantic_query": "rice", "price_min": 50, "price_max": null, "negated_terms": ["spicy"]}

Query: "snacks between 10 and 30 pesos without nuts or dairy"
{"semantic_query": "snacks", "price_min": 10, "price_max": 30, "negated_terms": ["nuts", "dairy"]}

Query: %q
`

// buildPrompt renders the few-shot extraction prompt for a raw query.
func buildPrompt(rawQuery string) string {
	return fmt.Sprintf(extractionPrompt, rawQuery)
}

// extractFirstJSON returns the first balanced JSON object substring of s,
// or "" if none exists. Braces inside JSON strings are ignored.
func extractFirstJSON(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// extractionPayload is the loosely-typed shape of the model's JSON response.
// Price and negation fields arrive as any and are normalized afterwards.
type extractionPayload struct {
	SemanticQuery string `json:"semantic_query"`
	PriceMin      any    `json:"price_min"`
	PriceMax      any    `json:"price_max"`
	NegatedTerms  any    `json:"negated_terms"`
}

// parseCompletion extracts and validates the model response.
// Returns a failure result on malformed JSON or a missing semantic query;
// malformed optional fields are discarded, not fatal.
func parseCompletion(text string) result {
	raw := extractFirstJSON(text)
	if raw == "" {
		return failure("no JSON object in completion")
	}

	var payload extractionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return failure("malformed JSON in completion: " + err.Error())
	}

	semantic := strings.TrimSpace(payload.SemanticQuery)
	if semantic == "" {
		return failure("completion missing semantic_query")
	}

	components, err := query.NewComponents(
		semantic,
		priceFromPayload(payload.PriceMin),
		priceFromPayload(payload.PriceMax),
		termsFromPayload(payload.NegatedTerms),
	)
	if err != nil {
		return failure("completion produced invalid components: " + err.Error())
	}
	return success(components)
}

// priceFromPayload keeps a price only when it is a non-negative number.
func priceFromPayload(v any) *float64 {
	n, ok := v.(float64)
	if !ok || n < 0 {
		return nil
	}
	return &n
}

// termsFromPayload keeps negated terms only when they arrive as an array;
// non-string entries are dropped.
func termsFromPayload(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
