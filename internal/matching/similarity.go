package matching

import (
	"math"
	"sort"
	"strings"

	"github.com/xrash/smetrics"

	"earmark/internal/textutil"
)

// Ratio scores two strings 0-100 by edit distance scaled against their
// combined length, so a one-character edit costs more in short names than
// in long ones. Substitutions count as a delete plus an insert. Either side
// empty scores 0.
func Ratio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	total := len(a) + len(b)
	distance := smetrics.WagnerFischer(a, b, 1, 1, 2)
	return int(math.Round(float64(total-distance) * 100 / float64(total)))
}

// TokenSetRatio compares the token sets of two strings, ignoring word order
// and duplicate tokens. The shared tokens are also compared against each
// full set, so a name that is a subset of the other ("Simon" against
// "Simon & Garfunkel") scores 100.
func TokenSetRatio(a, b string) int {
	setA := textutil.TokenSet(a)
	setB := textutil.TokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var shared, onlyA, onlyB []string
	for token := range setA {
		if _, ok := setB[token]; ok {
			shared = append(shared, token)
		} else {
			onlyA = append(onlyA, token)
		}
	}
	for token := range setB {
		if _, ok := setA[token]; !ok {
			onlyB = append(onlyB, token)
		}
	}
	sort.Strings(shared)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(shared, " ")
	withA := joinTokens(base, onlyA)
	withB := joinTokens(base, onlyB)

	score := Ratio(withA, withB)
	if s := Ratio(base, withA); s > score {
		score = s
	}
	if s := Ratio(base, withB); s > score {
		score = s
	}
	return score
}

func joinTokens(base string, extra []string) string {
	if len(extra) == 0 {
		return base
	}
	if base == "" {
		return strings.Join(extra, " ")
	}
	return base + " " + strings.Join(extra, " ")
}
