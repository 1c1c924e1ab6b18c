package resolver

import (
	"regexp"
	"strings"
)

var nonAlnumPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize lowercases text, strips punctuation, and collapses whitespace.
// The result is the canonical form used for matching and cache keys.
func Normalize(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	cleaned := nonAlnumPattern.ReplaceAllString(lowered, " ")
	return strings.Join(strings.Fields(cleaned), " ")
}

// Tokenize splits normalized text into tokens, dropping ones too short to
// carry meaning.
func Tokenize(text string) []string {
	fields := strings.Fields(Normalize(text))
	terms := make([]string, 0, len(fields))
	for _, token := range fields {
		if len(token) < 3 {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
