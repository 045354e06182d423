// Package report renders the reconciliation result for people and scripts.
package report

import (
	"fmt"
	"strings"
)

// Format selects the output rendering.
type Format string

const (
	// FormatAuto picks table on a terminal and plain otherwise.
	FormatAuto  Format = "auto"
	FormatTable Format = "table"
	FormatPlain Format = "plain"
	FormatJSON  Format = "json"
)

// ParseFormat validates a format flag value.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatAuto, Format(""):
		return FormatAuto, nil
	case FormatTable:
		return FormatTable, nil
	case FormatPlain:
		return FormatPlain, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected auto, table, plain, or json)", value)
	}
}

// Candidate is the closest rated album for an unrated row, shown with
// verbose output to explain why the row did not match.
type Candidate struct {
	Artist      string  `json:"artist"`
	Title       string  `json:"title"`
	ArtistScore int     `json:"artist_score"`
	TitleScore  int     `json:"title_score"`
	Combined    float64 `json:"combined"`
}

// Row is one unrated album in rank order.
type Row struct {
	Rank       int        `json:"rank"`
	Artist     string     `json:"artist"`
	Title      string     `json:"title"`
	PlayCount  int        `json:"play_count"`
	Kind       string     `json:"kind,omitempty"`
	Confidence float64    `json:"confidence,omitempty"`
	Closest    *Candidate `json:"closest_rated,omitempty"`
}

// Summary totals one reconciliation run.
type Summary struct {
	ListeningRecords int `json:"listening_records"`
	RatedAlbums      int `json:"rated_albums"`
	Matched          int `json:"matched"`
	Blacklisted      int `json:"blacklisted"`
	Unrated          int `json:"unrated"`
	Shown            int `json:"shown"`
}

// Report is the full render payload.
type Report struct {
	Rows    []Row   `json:"albums"`
	Summary Summary `json:"summary"`
}

// Options control presentation.
type Options struct {
	Format  Format
	Top     int
	Verbose bool
}
