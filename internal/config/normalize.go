package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeLastfm()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMatching()
	c.normalizeCache()
	c.normalizeMusicBrainz()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeLastfm() {
	c.Lastfm.APIKey = strings.TrimSpace(c.Lastfm.APIKey)
	if c.Lastfm.APIKey == "" {
		if value, ok := os.LookupEnv("LASTFM_API_KEY"); ok {
			c.Lastfm.APIKey = strings.TrimSpace(value)
		}
	}
	c.Lastfm.User = strings.TrimSpace(c.Lastfm.User)
	if c.Lastfm.User == "" {
		if value, ok := os.LookupEnv("LASTFM_USER"); ok {
			c.Lastfm.User = strings.TrimSpace(value)
		}
	}
	c.Lastfm.Period = strings.ToLower(strings.TrimSpace(c.Lastfm.Period))
	if c.Lastfm.Period == "" {
		c.Lastfm.Period = defaultPeriod
	}
	if c.Lastfm.Limit <= 0 {
		c.Lastfm.Limit = defaultLimit
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.RatingsCSV, err = expandPath(c.Paths.RatingsCSV); err != nil {
		return fmt.Errorf("paths.ratings_csv: %w", err)
	}
	if c.Paths.BlacklistFile, err = expandPath(c.Paths.BlacklistFile); err != nil {
		return fmt.Errorf("paths.blacklist_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = Default().Paths.CacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = Default().Paths.LogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMatching() {
	if c.Matching.ArtistThreshold <= 0 {
		c.Matching.ArtistThreshold = defaultArtistThreshold
	}
	if c.Matching.TitleThreshold <= 0 {
		c.Matching.TitleThreshold = defaultTitleThreshold
	}
	if c.Matching.ArtistWeight <= 0 && c.Matching.TitleWeight <= 0 {
		c.Matching.ArtistWeight = defaultArtistWeight
		c.Matching.TitleWeight = defaultTitleWeight
	}
}

func (c *Config) normalizeCache() {
	if c.Cache.ScrobblesTTLHours <= 0 {
		c.Cache.ScrobblesTTLHours = defaultScrobblesTTLHours
	}
	if c.Cache.MusicBrainzTTLHours <= 0 {
		c.Cache.MusicBrainzTTLHours = defaultMusicBrainzTTLHours
	}
}

func (c *Config) normalizeMusicBrainz() {
	c.MusicBrainz.BaseURL = strings.TrimRight(strings.TrimSpace(c.MusicBrainz.BaseURL), "/")
	if c.MusicBrainz.BaseURL == "" {
		c.MusicBrainz.BaseURL = defaultMusicBrainzBaseURL
	}
	c.MusicBrainz.UserAgent = strings.TrimSpace(c.MusicBrainz.UserAgent)
	if c.MusicBrainz.UserAgent == "" {
		c.MusicBrainz.UserAgent = defaultMusicBrainzAgent
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
