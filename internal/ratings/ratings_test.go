package ratings_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"earmark/internal/ratings"
)

const sampleExport = `RYM Album, First Name,Last Name,First Name localized, Last Name localized,Title,Release_Date,Rating,Ownership,Purchase Date,Media Type,Review
1,,The Beatles,,,Abbey Road,1969,9,n,,,
2,Kate,Bush,,,Hounds of Love,1985,10,n,,,
3,,Fishmans,,フィッシュマンズ,Long Season,1996,9,n,,,
4,,Radiohead,,,Kid A,2000,0,n,,,
5,,Unrated Band,,,Some Album,2001,,n,,,
6,,Titleless,,,,2002,7,n,,,
`

func parseSample(t *testing.T) []ratings.Album {
	t.Helper()
	albums, err := ratings.Parse(strings.NewReader(sampleExport))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return albums
}

func TestParseKeepsOnlyRatedCompleteRows(t *testing.T) {
	albums := parseSample(t)
	if len(albums) != 3 {
		t.Fatalf("expected 3 albums, got %d: %+v", len(albums), albums)
	}
}

func TestParseJoinsSplitArtistNames(t *testing.T) {
	albums := parseSample(t)

	if albums[0].Artist != "The Beatles" {
		t.Fatalf("expected band name from last-name column, got %q", albums[0].Artist)
	}
	if albums[1].Artist != "Kate Bush" {
		t.Fatalf("expected joined first and last name, got %q", albums[1].Artist)
	}
	if albums[0].Title != "Abbey Road" || albums[0].Rating != 9 {
		t.Fatalf("unexpected first album: %+v", albums[0])
	}
}

func TestParseReadsLocalizedArtist(t *testing.T) {
	albums := parseSample(t)

	fishmans := albums[2]
	if fishmans.Artist != "Fishmans" {
		t.Fatalf("unexpected artist: %q", fishmans.Artist)
	}
	if fishmans.LocalizedArtist != "フィッシュマンズ" {
		t.Fatalf("expected localized artist from leading-space header, got %q", fishmans.LocalizedArtist)
	}

	variants := fishmans.ArtistVariants()
	if len(variants) != 2 || variants[0] != "Fishmans" || variants[1] != "フィッシュマンズ" {
		t.Fatalf("unexpected variants: %v", variants)
	}
}

func TestArtistVariantsSkipsDuplicateLocalized(t *testing.T) {
	album := ratings.Album{Artist: "Sigur Rós", LocalizedArtist: "sigur rós", Title: "( )", Rating: 8}
	variants := album.ArtistVariants()
	if len(variants) != 1 {
		t.Fatalf("expected single variant for case-equal localized name, got %v", variants)
	}
}

func TestParseMissingRequiredColumn(t *testing.T) {
	_, err := ratings.Parse(strings.NewReader("First Name,Last Name\nKate,Bush\n"))
	if err == nil {
		t.Fatal("expected error for missing Title column")
	}
	if !strings.Contains(err.Error(), "Title") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseEmptyInput(t *testing.T) {
	_, err := ratings.Parse(strings.NewReader(""))
	if err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestParseToleratesShortRows(t *testing.T) {
	export := "Title,Rating, First Name,Last Name\nAbbey Road,9\n"
	albums, err := ratings.Parse(strings.NewReader(export))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(albums) != 0 {
		t.Fatalf("expected row without artist columns to be skipped, got %+v", albums)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := ratings.Load(filepath.Join(t.TempDir(), "absent.csv"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratings.csv")
	if err := os.WriteFile(path, []byte(sampleExport), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}

	albums, err := ratings.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(albums) != 3 {
		t.Fatalf("expected 3 albums, got %d", len(albums))
	}
}
