package resolver

import (
	"strings"

	"stagehand/internal/catalog"
)

// Method identifies which scoring strategy produced a match.
type Method string

const (
	MethodNone         Method = "none"
	MethodSubstring    Method = "substring"
	MethodTokenOverlap Method = "token-overlap"
	MethodSimilarity   Method = "similarity"
	// MethodCache marks a resolution replayed from the dedup cache.
	MethodCache Method = "cache"
	// MethodManual marks a host-triggered switch that bypassed matching.
	MethodManual Method = "manual"
)

// Resolution is the outcome of matching a phrase against the catalog.
type Resolution struct {
	Matched    bool
	Product    catalog.Product
	Confidence float64
	Method     Method
}

// Resolve scores every catalog product against phrase and returns the best
// match at or above threshold. Ties keep the first product in catalog order;
// the tie-break is deterministic, not semantically meaningful. An empty
// phrase or catalog yields no match, never an error.
func Resolve(phrase string, cat *catalog.Catalog, threshold float64) Resolution {
	normPhrase := Normalize(phrase)
	if normPhrase == "" || cat.Len() == 0 {
		return Resolution{Method: MethodNone}
	}
	phraseTokens := tokenSet(Tokenize(normPhrase))

	best := Resolution{Method: MethodNone}
	for _, product := range cat.Products() {
		score, method := scoreProduct(normPhrase, phraseTokens, product)
		if score > best.Confidence {
			best = Resolution{Product: product, Confidence: score, Method: method}
		}
	}
	if best.Confidence >= threshold && best.Method != MethodNone {
		best.Matched = true
		return best
	}
	return Resolution{Confidence: best.Confidence, Method: MethodNone}
}

func scoreProduct(normPhrase string, phraseTokens map[string]struct{}, product catalog.Product) (float64, Method) {
	normName := Normalize(product.Name)
	if normName == "" {
		return 0, MethodNone
	}

	if substringMatch(normPhrase, normName, product.Description) {
		return 1.0, MethodSubstring
	}

	score, method := 0.0, MethodNone
	if overlap := tokenOverlap(phraseTokens, product); overlap > score {
		score, method = overlap, MethodTokenOverlap
	}
	if sim := Ratio(normPhrase, normName); sim > score {
		score, method = sim, MethodSimilarity
	}
	return score, method
}

// substringMatch reports exact-strength containment: the full product name
// inside the phrase (or the phrase inside the name, for terse comments), or
// any name/description token appearing contiguously in the phrase.
func substringMatch(normPhrase, normName, description string) bool {
	if strings.Contains(normPhrase, normName) || strings.Contains(normName, normPhrase) {
		return true
	}
	for _, token := range Tokenize(normName) {
		if strings.Contains(normPhrase, token) {
			return true
		}
	}
	for _, token := range Tokenize(description) {
		if strings.Contains(normPhrase, token) {
			return true
		}
	}
	return false
}

// tokenOverlap computes the Jaccard ratio between the phrase tokens and the
// product's name+description tokens.
func tokenOverlap(phraseTokens map[string]struct{}, product catalog.Product) float64 {
	productTokens := tokenSet(Tokenize(product.Name + " " + product.Description))
	if len(phraseTokens) == 0 || len(productTokens) == 0 {
		return 0
	}
	shared := 0
	for token := range productTokens {
		if _, ok := phraseTokens[token]; ok {
			shared++
		}
	}
	union := len(phraseTokens) + len(productTokens) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}
