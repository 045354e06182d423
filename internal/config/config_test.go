package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"earmark/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent")
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if cfg.Lastfm.Period != "overall" {
		t.Fatalf("unexpected default period: %q", cfg.Lastfm.Period)
	}
	if cfg.Lastfm.Limit != 1000 {
		t.Fatalf("unexpected default limit: %d", cfg.Lastfm.Limit)
	}
	if cfg.Matching.ArtistThreshold != 85 || cfg.Matching.TitleThreshold != 85 {
		t.Fatalf("unexpected default thresholds: %d/%d", cfg.Matching.ArtistThreshold, cfg.Matching.TitleThreshold)
	}
	if cfg.Matching.ArtistWeight != 0.6 || cfg.Matching.TitleWeight != 0.4 {
		t.Fatalf("unexpected default weights: %v/%v", cfg.Matching.ArtistWeight, cfg.Matching.TitleWeight)
	}
	if !cfg.Cache.Enabled {
		t.Fatal("expected cache enabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %q/%q", cfg.Logging.Format, cfg.Logging.Level)
	}
	if cfg.Paths.RatingsCSV == "" || !filepath.IsAbs(cfg.Paths.RatingsCSV) {
		t.Fatalf("expected absolute default ratings path, got %q", cfg.Paths.RatingsCSV)
	}
}

func TestLoadParsesFileAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := writeConfig(t, `
[lastfm]
api_key = "abc123"
user = "listener"
period = "7DAY"
limit = 50

[paths]
ratings_csv = "~/exports/rym.csv"
blacklist_file = "~/exports/blacklist.json"
cache_dir = "~/cachehome"
log_dir = "~/loghome"

[matching]
artist_threshold = 90
title_threshold = 80
artist_weight = 0.7
title_weight = 0.3
`)

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Lastfm.APIKey != "abc123" || cfg.Lastfm.User != "listener" {
		t.Fatalf("unexpected lastfm settings: %+v", cfg.Lastfm)
	}
	if cfg.Lastfm.Period != "7day" {
		t.Fatalf("expected period lowered to 7day, got %q", cfg.Lastfm.Period)
	}
	if cfg.Lastfm.Limit != 50 {
		t.Fatalf("unexpected limit: %d", cfg.Lastfm.Limit)
	}
	if want := filepath.Join(tempHome, "exports", "rym.csv"); cfg.Paths.RatingsCSV != want {
		t.Fatalf("unexpected ratings path: got %q want %q", cfg.Paths.RatingsCSV, want)
	}
	if want := filepath.Join(tempHome, "cachehome"); cfg.Paths.CacheDir != want {
		t.Fatalf("unexpected cache dir: got %q want %q", cfg.Paths.CacheDir, want)
	}
	if cfg.Matching.ArtistThreshold != 90 || cfg.Matching.TitleThreshold != 80 {
		t.Fatalf("unexpected thresholds: %+v", cfg.Matching)
	}
}

func TestLoadUsesEnvAPIKeyFallback(t *testing.T) {
	t.Setenv("LASTFM_API_KEY", "env-key")
	t.Setenv("LASTFM_USER", "env-user")

	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Lastfm.APIKey != "env-key" {
		t.Fatalf("expected API key from env, got %q", cfg.Lastfm.APIKey)
	}
	if cfg.Lastfm.User != "env-user" {
		t.Fatalf("expected user from env, got %q", cfg.Lastfm.User)
	}
}

func TestLoadRejectsInvalidPeriod(t *testing.T) {
	path := writeConfig(t, `
[lastfm]
period = "fortnight"
`)
	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for invalid period")
	}
	if !strings.Contains(err.Error(), "lastfm.period") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsWeightsNotSummingToOne(t *testing.T) {
	path := writeConfig(t, `
[matching]
artist_weight = 0.8
title_weight = 0.3
`)
	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for weights not summing to 1")
	}
	if !strings.Contains(err.Error(), "sum to 1") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsThresholdOutOfRange(t *testing.T) {
	path := writeConfig(t, `
[matching]
artist_threshold = 140
`)
	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for out-of-range threshold")
	}
	if !strings.Contains(err.Error(), "between 1 and 100") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Lastfm.Period != "overall" {
		t.Fatalf("unexpected sample period: %q", cfg.Lastfm.Period)
	}
	if !cfg.MusicBrainz.Enabled {
		t.Fatal("expected musicbrainz enabled in sample")
	}
}

func TestIsValidPeriod(t *testing.T) {
	for _, period := range config.ValidPeriods() {
		if !config.IsValidPeriod(period) {
			t.Fatalf("expected %q to be valid", period)
		}
	}
	for _, period := range []string{"", "weekly", "OVERALL", "2month"} {
		if config.IsValidPeriod(period) {
			t.Fatalf("expected %q to be invalid", period)
		}
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.CacheDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}
