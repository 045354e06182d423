package textutil

import (
	"regexp"
	"strings"
)

// tokenSplitPattern matches runs of characters that are neither letters nor
// digits in any script, so non-Latin names survive tokenization intact.
var tokenSplitPattern = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Tokenize splits text into lowercase alphanumeric tokens. Empty tokens are
// dropped; short tokens are kept because artist and album names frequently
// consist of them.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	raw := tokenSplitPattern.Split(lowered, -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if token == "" {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// TokenSet returns the unique tokens of text.
func TokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}
