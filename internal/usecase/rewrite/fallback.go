package rewrite

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/storefind/internal/domain/query"
)

// fallbackQuery is the last-resort semantic query when nothing usable remains.
const fallbackQuery = "products"

var (
	// "between 100 and 500 pesos"
	betweenRe = regexp.MustCompile(
		`(?i)\bbetween\s+(?:₱|php\s+)?(\d+(?:\.\d+)?)\s+and\s+(?:₱|php\s+)?(\d+(?:\.\d+)?)(?:\s*(?:pesos?|php|dollars?|bucks?))?`)
	// "100 to 500", "100-500", "100–500"
	rangeRe = regexp.MustCompile(
		`(?i)\b(?:from\s+)?(?:₱|php\s+)?(\d+(?:\.\d+)?)\s*(?:to|-|–|—)\s*(\d+(?:\.\d+)?)(?:\s*(?:pesos?|php|dollars?|bucks?))?`)
	// "under 20", "below 20", "at most 20", "max 20", "<= 20"
	upperRe = regexp.MustCompile(
		`(?i)(?:\b(?:under|below|less than|cheaper than|at most|max(?:imum)?|up to)\b|≤|<=|<)\s*(?:₱|php\s+)?(\d+(?:\.\d+)?)(?:\s*(?:pesos?|php|dollars?|bucks?))?`)
	// "above 50", "over 50", "at least 50", "min 50", ">= 50"
	lowerRe = regexp.MustCompile(
		`(?i)(?:\b(?:above|over|more than|at least|min(?:imum)?|starting at)\b|≥|>=|>)\s*(?:₱|php\s+)?(\d+(?:\.\d+)?)(?:\s*(?:pesos?|php|dollars?|bucks?))?`)

	// "no spicy", "without nuts or dairy", "don't want chocolate, candy"
	negationRe = regexp.MustCompile(
		`(?i)\b(?:don'?t\s+want(?:\s+any)?|no|not|avoid|without|exclude|skip)\s+` +
			`([a-z][a-z'-]*(?:(?:\s*,\s*|\s+or\s+|\s+and\s+)[a-z][a-z'-]*)*)`)
	negationSplitRe = regexp.MustCompile(`(?i)\s*,\s*|\s+or\s+|\s+and\s+`)

	numericTokenRe = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	nonWordRe      = regexp.MustCompile(`[^a-z0-9\s-]+`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// stopWords are discarded from captured negation terms and from the
// token-of-last-resort semantic fallback.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "any": {}, "some": {}, "of": {}, "with": {},
	"too": {}, "very": {}, "really": {}, "much": {}, "many": {}, "please": {},
	"and": {}, "or": {}, "to": {}, "under": {}, "below": {}, "above": {},
	"over": {}, "between": {}, "max": {}, "min": {}, "pesos": {}, "peso": {},
	"php": {}, "for": {},
}

// fillerWords are stripped from the semantic remainder.
var fillerWords = map[string]struct{}{
	"please": {}, "find": {}, "looking": {}, "want": {}, "need": {}, "buy": {},
	"show": {}, "me": {}, "get": {}, "give": {}, "search": {}, "searching": {},
	"for": {}, "i": {}, "im": {}, "a": {}, "an": {}, "the": {}, "some": {},
	"any": {}, "can": {}, "you": {}, "would": {}, "like": {}, "hi": {},
	"hello": {}, "pesos": {}, "peso": {}, "php": {},
}

// synonyms folds common variants into the catalog's vocabulary.
var synonyms = map[string]string{
	"noodle": "noodles",
	"snack":  "snacks",
	"drink":  "drinks",
	"chip":   "chips",
	"tool":   "tools",
	"veggie": "vegetables",
}

// extractFallback is the deterministic regex extraction path. It never fails:
// the semantic query degrades to leading tokens of the original query, then
// to a fixed literal.
func extractFallback(rawQuery string) result {
	remainder := rawQuery

	priceMin, priceMax, remainder := extractPrices(remainder)
	negated, remainder := extractNegations(remainder)
	semantic := cleanSemantic(remainder, rawQuery)

	components, err := query.NewComponents(semantic, priceMin, priceMax, negated)
	if err != nil {
		// Unreachable with a non-empty semantic fallback, kept as a guard.
		return failure("fallback produced invalid components: " + err.Error())
	}
	return success(components)
}

// extractPrices detects price constraints and strips the matched phrases.
// An explicit range wins over independent bounds. Independently detected
// bounds that arrive reversed are swapped rather than rejected.
func extractPrices(s string) (*float64, *float64, string) {
	if m := betweenRe.FindStringSubmatch(s); m != nil {
		lo, hi := parsePrice(m[1]), parsePrice(m[2])
		if lo != nil && hi != nil {
			if *lo > *hi {
				lo, hi = hi, lo
			}
			return lo, hi, betweenRe.ReplaceAllString(s, " ")
		}
	}
	if m := rangeRe.FindStringSubmatch(s); m != nil {
		lo, hi := parsePrice(m[1]), parsePrice(m[2])
		if lo != nil && hi != nil {
			if *lo > *hi {
				lo, hi = hi, lo
			}
			return lo, hi, rangeRe.ReplaceAllString(s, " ")
		}
	}

	var priceMin, priceMax *float64
	if m := upperRe.FindStringSubmatch(s); m != nil {
		priceMax = parsePrice(m[1])
		s = upperRe.ReplaceAllString(s, " ")
	}
	if m := lowerRe.FindStringSubmatch(s); m != nil {
		priceMin = parsePrice(m[1])
		s = lowerRe.ReplaceAllString(s, " ")
	}
	// Independently detected bounds can arrive reversed ("above 100 ... under
	// 50"); swapped to keep the range valid.
	if priceMin != nil && priceMax != nil && *priceMin > *priceMax {
		priceMin, priceMax = priceMax, priceMin
	}
	return priceMin, priceMax, s
}

// extractNegations detects negation phrases, strips them, and returns the
// normalized term list (stop words and numeric tokens discarded, deduplicated
// case-insensitively).
func extractNegations(s string) ([]string, string) {
	matches := negationRe.FindAllStringSubmatch(s, -1)
	if matches == nil {
		return nil, s
	}

	var terms []string
	seen := make(map[string]struct{})
	for _, m := range matches {
		for _, raw := range negationSplitRe.Split(m[1], -1) {
			term := strings.ToLower(strings.TrimSpace(raw))
			if term == "" || numericTokenRe.MatchString(term) {
				continue
			}
			if _, stop := stopWords[term]; stop {
				continue
			}
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return nil, negationRe.ReplaceAllString(s, " ")
	}
	return terms, negationRe.ReplaceAllString(s, " ")
}

// cleanSemantic normalizes the remainder after price and negation phrases are
// removed: punctuation collapsed, filler words stripped, lowercased, synonyms
// applied. Degrades to leading tokens of the original query, then to the
// fixed literal.
func cleanSemantic(remainder, original string) string {
	tokens := tokenize(remainder)

	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, filler := fillerWords[tok]; filler {
			continue
		}
		if mapped, ok := synonyms[tok]; ok {
			tok = mapped
		}
		kept = append(kept, tok)
	}
	if len(kept) > 0 {
		return strings.Join(kept, " ")
	}

	// Nothing survived: take the first few meaningful tokens of the original.
	const maxLeadTokens = 3
	lead := make([]string, 0, maxLeadTokens)
	for _, tok := range tokenize(original) {
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if _, filler := fillerWords[tok]; filler {
			continue
		}
		if numericTokenRe.MatchString(tok) {
			continue
		}
		lead = append(lead, tok)
		if len(lead) == maxLeadTokens {
			break
		}
	}
	if len(lead) > 0 {
		return strings.Join(lead, " ")
	}
	return fallbackQuery
}

func tokenize(s string) []string {
	s = strings.ToLower(s)
	s = nonWordRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
	if s == "" {
		return nil
	}
	return strings.Split(s, " ")
}

func parsePrice(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}
