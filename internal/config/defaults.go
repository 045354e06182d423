package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	defaultPeriod              = "overall"
	defaultLimit               = 1000
	defaultArtistThreshold     = 85
	defaultTitleThreshold      = 85
	defaultArtistWeight        = 0.6
	defaultTitleWeight         = 0.4
	defaultScrobblesTTLHours   = 24
	defaultMusicBrainzTTLHours = 720
	defaultMusicBrainzBaseURL  = "https://musicbrainz.org/ws/2"
	defaultMusicBrainzAgent    = "earmark/0.1 (personal listening reconciliation)"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Lastfm: Lastfm{
			Period: defaultPeriod,
			Limit:  defaultLimit,
		},
		Paths: Paths{
			RatingsCSV:    filepath.Join(xdg.DataHome, "earmark", "ratings.csv"),
			BlacklistFile: filepath.Join(xdg.ConfigHome, "earmark", "blacklist.json"),
			CacheDir:      filepath.Join(xdg.CacheHome, "earmark"),
			LogDir:        filepath.Join(xdg.StateHome, "earmark", "logs"),
		},
		Matching: Matching{
			ArtistThreshold: defaultArtistThreshold,
			TitleThreshold:  defaultTitleThreshold,
			ArtistWeight:    defaultArtistWeight,
			TitleWeight:     defaultTitleWeight,
		},
		Cache: Cache{
			Enabled:             true,
			ScrobblesTTLHours:   defaultScrobblesTTLHours,
			MusicBrainzTTLHours: defaultMusicBrainzTTLHours,
		},
		MusicBrainz: MusicBrainz{
			Enabled:   true,
			BaseURL:   defaultMusicBrainzBaseURL,
			UserAgent: defaultMusicBrainzAgent,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
