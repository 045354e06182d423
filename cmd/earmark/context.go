package main

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"earmark/internal/apicache"
	"earmark/internal/config"
	"earmark/internal/logging"
	"earmark/internal/musicbrainz"
	"earmark/internal/reconcile"
	"earmark/internal/scrobbles"
)

// commandContext lazily loads configuration and the logger so that every
// subcommand shares one copy of each per invocation.
type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.TrimSpace(*c.logLevelFlag); level != "" {
				cfg.Logging.Level = level
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger.With(logging.String(logging.FieldRunID, uuid.NewString()))
	})
	return c.logger, c.loggerErr
}

// openCache opens the shared response cache. Returns nil when caching is
// disabled or the store cannot be opened; callers then fetch uncached.
func (c *commandContext) openCache(logger *slog.Logger) *apicache.Store {
	cfg, err := c.ensureConfig()
	if err != nil || !cfg.Cache.Enabled {
		return nil
	}
	store, err := apicache.Open(cfg)
	if err != nil {
		if errors.Is(err, apicache.ErrLocked) {
			logger.Warn("api cache locked by another invocation, continuing uncached")
		} else {
			logger.Warn("api cache unavailable, continuing uncached", logging.Error(err))
		}
		return nil
	}
	return store
}

// requireCache opens the cache store for maintenance commands, which need
// the real store rather than a silent fallback.
func (c *commandContext) requireCache() (*apicache.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := apicache.Open(cfg)
	if err != nil {
		if errors.Is(err, apicache.ErrLocked) {
			return nil, errors.New("api cache is locked by another earmark invocation; retry once it finishes")
		}
		return nil, err
	}
	return store, nil
}

func (c *commandContext) listeningSource(store *apicache.Store, logger *slog.Logger) (*scrobbles.Source, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	client, err := scrobbles.NewClient(cfg.Lastfm.APIKey, logger)
	if err != nil {
		return nil, err
	}
	var cache scrobbles.Cache
	if store != nil {
		cache = store
	}
	ttl := time.Duration(cfg.Cache.ScrobblesTTLHours) * time.Hour
	return scrobbles.NewSource(client, cache, ttl, logger), nil
}

// enricher returns the MusicBrainz client when enrichment is enabled. The
// returned interface is nil when disabled so callers can pass it straight
// through.
func (c *commandContext) enricher(store *apicache.Store, logger *slog.Logger) reconcile.Enricher {
	cfg, err := c.ensureConfig()
	if err != nil || !cfg.MusicBrainz.Enabled {
		return nil
	}
	var cache musicbrainz.Cache
	if store != nil {
		cache = store
	}
	return musicbrainz.New(cfg, cache, logger)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
