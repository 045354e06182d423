package matching

import (
	"html"
	"regexp"
	"strings"

	"earmark/internal/textutil"
)

// rewriteRule is one normalization step: a pattern and its replacement.
// Rules apply in declaration order so the pipeline stays deterministic and
// each rule can be tested on its own.
type rewriteRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// titleRules strip edition and version parentheticals that listening
// services append to album titles but catalog exports usually omit.
// Parentheticals that are part of the title proper ("(What's the Story)
// Morning Glory?") match none of these and survive.
var titleRules = []rewriteRule{
	{regexp.MustCompile(`(?i)\s*\(.*?edition\)\s*`), " "},
	{regexp.MustCompile(`(?i)\s*\((?:\d{4}\s*)?remaster(?:ed)?\)\s*`), " "},
	{regexp.MustCompile(`(?i)\s*\(deluxe\)\s*`), " "},
	{regexp.MustCompile(`(?i)\s*\(expanded\)\s*`), " "},
	{regexp.MustCompile(`(?i)\s*\(demos.*?\)\s*`), " "},
	{regexp.MustCompile(`(?i)\s*\(explicit\)\s*`), " "},
}

// artistRules drop featured-guest suffixes so "Artist feat. Guest" compares
// equal to "Artist".
var artistRules = []rewriteRule{
	{regexp.MustCompile(`(?i)\s+(?:feat\.|featuring|ft\.)\s+.*$`), " "},
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeTitle prepares an album title for comparison: HTML entities are
// decoded, edition parentheticals dropped, diacritics folded, and the result
// lowercased with collapsed whitespace.
func NormalizeTitle(title string) string {
	return normalize(title, titleRules)
}

// NormalizeArtist prepares an artist name for comparison the same way, with
// featured-guest suffixes dropped instead of edition parentheticals.
func NormalizeArtist(artist string) string {
	return normalize(artist, artistRules)
}

func normalize(value string, rules []rewriteRule) string {
	value = html.UnescapeString(value)
	for _, rule := range rules {
		value = rule.pattern.ReplaceAllString(value, rule.replacement)
	}
	value = textutil.FoldDiacritics(value)
	value = strings.ToLower(value)
	value = whitespaceRun.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// artistSeparators mark collaboration joins. The first separator present in
// the name wins, so "A & B feat. C" splits on the ampersand.
var artistSeparators = []string{
	" & ",
	" and ",
	" feat. ",
	" featuring ",
	" ft. ",
	" with ",
	" x ",
	" vs. ",
	" vs ",
	", ",
}

// MainArtist returns the leading artist of a collaboration credit, or the
// whole name when no separator is present. Expects normalized input.
func MainArtist(artist string) string {
	for _, sep := range artistSeparators {
		if idx := strings.Index(artist, sep); idx >= 0 {
			return strings.TrimSpace(artist[:idx])
		}
	}
	return strings.TrimSpace(artist)
}
