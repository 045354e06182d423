// Package matching classifies listening records against a rated-album
// catalog.
//
// Both sides of a comparison are normalized first (HTML entities, edition
// parentheticals, featured-guest suffixes, diacritics, case) and then
// scored with a token-set similarity that ignores word order, so "Beatles,
// The" lines up with "The Beatles". Artist and title scores combine into a
// weighted album score; acceptance is tiered so a near-perfect artist match
// tolerates looser titles. Unmatched records are ranked by play count for
// the report.
package matching
