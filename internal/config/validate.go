package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLastfm(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateMusicBrainz(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLastfm() error {
	if !IsValidPeriod(c.Lastfm.Period) {
		return fmt.Errorf("lastfm.period must be one of %s", strings.Join(ValidPeriods(), ", "))
	}
	if c.Lastfm.Limit < 1 {
		return errors.New("lastfm.limit must be >= 1")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.RatingsCSV) == "" {
		return errors.New("paths.ratings_csv must be set")
	}
	if strings.TrimSpace(c.Paths.BlacklistFile) == "" {
		return errors.New("paths.blacklist_file must be set")
	}
	return nil
}

func (c *Config) validateMatching() error {
	if err := ensureScoreRange(map[string]int{
		"matching.artist_threshold": c.Matching.ArtistThreshold,
		"matching.title_threshold":  c.Matching.TitleThreshold,
	}); err != nil {
		return err
	}
	if c.Matching.ArtistWeight <= 0 || c.Matching.ArtistWeight >= 1 {
		return errors.New("matching.artist_weight must be between 0 and 1")
	}
	if c.Matching.TitleWeight <= 0 || c.Matching.TitleWeight >= 1 {
		return errors.New("matching.title_weight must be between 0 and 1")
	}
	if math.Abs(c.Matching.ArtistWeight+c.Matching.TitleWeight-1) > 0.001 {
		return errors.New("matching.artist_weight and matching.title_weight must sum to 1")
	}
	return nil
}

func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	if c.Cache.ScrobblesTTLHours <= 0 {
		return errors.New("cache.scrobbles_ttl_hours must be positive when cache.enabled is true")
	}
	if c.Cache.MusicBrainzTTLHours <= 0 {
		return errors.New("cache.musicbrainz_ttl_hours must be positive when cache.enabled is true")
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		return errors.New("paths.cache_dir must be set when cache.enabled is true")
	}
	return nil
}

func (c *Config) validateMusicBrainz() error {
	if !c.MusicBrainz.Enabled {
		return nil
	}
	if strings.TrimSpace(c.MusicBrainz.BaseURL) == "" {
		return errors.New("musicbrainz.base_url must be set when musicbrainz.enabled is true")
	}
	if strings.TrimSpace(c.MusicBrainz.UserAgent) == "" {
		return errors.New("musicbrainz.user_agent must be set when musicbrainz.enabled is true")
	}
	return nil
}

func ensureScoreRange(values map[string]int) error {
	for key, value := range values {
		if value <= 0 || value > 100 {
			return fmt.Errorf("%s must be between 1 and 100", key)
		}
	}
	return nil
}
