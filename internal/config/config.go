package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Lastfm contains configuration for the Last.fm listening-history API.
type Lastfm struct {
	APIKey string `toml:"api_key"`
	User   string `toml:"user"`
	Period string `toml:"period"`
	Limit  int    `toml:"limit"`
}

// Paths contains file and directory configuration.
type Paths struct {
	RatingsCSV    string `toml:"ratings_csv"`
	BlacklistFile string `toml:"blacklist_file"`
	CacheDir      string `toml:"cache_dir"`
	LogDir        string `toml:"log_dir"`
}

// Matching contains tunables for the fuzzy album matcher.
type Matching struct {
	ArtistThreshold int     `toml:"artist_threshold"`
	TitleThreshold  int     `toml:"title_threshold"`
	ArtistWeight    float64 `toml:"artist_weight"`
	TitleWeight     float64 `toml:"title_weight"`
}

// Cache contains configuration for the API response cache.
type Cache struct {
	Enabled             bool `toml:"enabled"`
	ScrobblesTTLHours   int  `toml:"scrobbles_ttl_hours"`
	MusicBrainzTTLHours int  `toml:"musicbrainz_ttl_hours"`
}

// MusicBrainz contains configuration for release-type enrichment lookups.
type MusicBrainz struct {
	Enabled   bool   `toml:"enabled"`
	BaseURL   string `toml:"base_url"`
	UserAgent string `toml:"user_agent"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for earmark.
//
// Configuration sections by subsystem:
//   - Lastfm: scrobble account, listening period, and fetch limit
//   - Paths: ratings export, blacklist file, cache and log directories
//   - Matching: fuzzy matcher thresholds and score weights
//   - Cache: API response cache toggles and TTLs
//   - MusicBrainz: release-type enrichment settings
//   - Logging: log format and level
type Config struct {
	Lastfm      Lastfm      `toml:"lastfm"`
	Paths       Paths       `toml:"paths"`
	Matching    Matching    `toml:"matching"`
	Cache       Cache       `toml:"cache"`
	MusicBrainz MusicBrainz `toml:"musicbrainz"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(filepath.Join(xdg.ConfigHome, "earmark", "config.toml"))
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("earmark.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the cache and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ValidPeriods lists the listening periods accepted by the Last.fm API.
func ValidPeriods() []string {
	return []string{"overall", "7day", "1month", "3month", "6month", "12month"}
}

// IsValidPeriod reports whether period is an accepted Last.fm listening period.
func IsValidPeriod(period string) bool {
	for _, p := range ValidPeriods() {
		if period == p {
			return true
		}
	}
	return false
}
