package musicbrainz

import "strings"

// ReleaseType describes the MusicBrainz release group resolved for one
// album, with a confidence tier recording how it was found.
type ReleaseType struct {
	MBID           string
	Title          string
	Artist         string
	PrimaryType    string
	SecondaryTypes []string
	Confidence     float64
}

type searchResponse struct {
	ReleaseGroups []releaseGroup `json:"release-groups"`
}

type releaseGroup struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	PrimaryType    string         `json:"primary-type"`
	SecondaryTypes []string       `json:"secondary-types"`
	ArtistCredit   []artistCredit `json:"artist-credit"`
}

type artistCredit struct {
	Name       string `json:"name"`
	JoinPhrase string `json:"joinphrase"`
	Artist     struct {
		Name string `json:"name"`
	} `json:"artist"`
}

func (g releaseGroup) releaseType(confidence float64) ReleaseType {
	return ReleaseType{
		MBID:           g.ID,
		Title:          g.Title,
		Artist:         creditedArtist(g.ArtistCredit),
		PrimaryType:    g.PrimaryType,
		SecondaryTypes: g.SecondaryTypes,
		Confidence:     confidence,
	}
}

// creditedArtist joins artist credits into a display name, preserving the
// join phrases MusicBrainz supplies ("A & B", "A feat. B").
func creditedArtist(credits []artistCredit) string {
	if len(credits) == 0 {
		return ""
	}
	var b strings.Builder
	for _, credit := range credits {
		name := credit.Name
		if name == "" {
			name = credit.Artist.Name
		}
		b.WriteString(name)
		b.WriteString(credit.JoinPhrase)
	}
	return b.String()
}
