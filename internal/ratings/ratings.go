// Package ratings parses the RYM album export into rated-album records.
package ratings

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Album is one rated entry from the RYM export.
type Album struct {
	Artist          string
	LocalizedArtist string
	Title           string
	ReleaseDate     string
	Rating          int
}

// ArtistVariants returns the artist names to match against: the primary name
// and, when present and different, the localized name.
func (a Album) ArtistVariants() []string {
	variants := []string{a.Artist}
	localized := strings.TrimSpace(a.LocalizedArtist)
	if localized != "" && !strings.EqualFold(localized, a.Artist) {
		variants = append(variants, localized)
	}
	return variants
}

// Load reads and parses the RYM export at path. Only albums with a rating
// above zero and both a title and an artist survive parsing.
func Load(path string) ([]Album, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ratings export: %w", err)
	}
	defer file.Close()

	albums, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return albums, nil
}

// Parse reads the RYM export CSV from r.
//
// The export splits artists across "First Name" and "Last Name" columns
// (bands usually carry only a last name) plus localized variants of both.
// Some header cells arrive with a leading space; headers are matched on
// their trimmed names.
func Parse(r io.Reader) ([]Album, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("ratings export: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("ratings export: read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"Title", "Rating"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("ratings export: missing %q column", required)
		}
	}

	var albums []Album
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ratings export: %w", err)
		}

		rating := parseRating(cell(row, columns, "Rating"))
		if rating <= 0 {
			continue
		}

		title := strings.TrimSpace(cell(row, columns, "Title"))
		artist := joinNames(cell(row, columns, "First Name"), cell(row, columns, "Last Name"))
		if title == "" || artist == "" {
			continue
		}

		albums = append(albums, Album{
			Artist:          artist,
			LocalizedArtist: joinNames(cell(row, columns, "First Name localized"), cell(row, columns, "Last Name localized")),
			Title:           title,
			ReleaseDate:     strings.TrimSpace(cell(row, columns, "Release_Date")),
			Rating:          rating,
		})
	}
	return albums, nil
}

func cell(row []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func joinNames(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

func parseRating(value string) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0
	}
	rating, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0
	}
	return int(rating)
}
