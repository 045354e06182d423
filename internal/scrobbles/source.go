package scrobbles

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"earmark/internal/logging"
	"earmark/internal/textutil"
)

// Fetcher retrieves listening history from the Last.fm API.
type Fetcher interface {
	TopAlbums(ctx context.Context, opts FetchOptions) ([]Record, error)
}

// Cache persists fetched history between runs. *apicache.Store satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

// Source fetches listening history through a cache.
type Source struct {
	fetcher Fetcher
	cache   Cache
	ttl     time.Duration
	logger  *slog.Logger
}

// NewSource wires a fetcher to a cache. A nil cache disables caching and
// every Fetch goes to the API.
func NewSource(fetcher Fetcher, cache Cache, ttl time.Duration, logger *slog.Logger) *Source {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Source{
		fetcher: fetcher,
		cache:   cache,
		ttl:     ttl,
		logger:  logging.NewComponentLogger(logger, "scrobbles"),
	}
}

// Fetch returns the user's top albums. A fresh cache entry short-circuits
// the API call unless refresh is set. Cache failures are logged and the
// fetch proceeds; only API failures are returned.
func (s *Source) Fetch(ctx context.Context, opts FetchOptions, refresh bool) ([]Record, error) {
	key := cacheKey(opts)
	if s.cache != nil && !refresh {
		if records, ok := s.lookup(ctx, key); ok {
			return records, nil
		}
	}
	s.logger.Debug("fetching from api",
		logging.String(logging.FieldCacheKey, key),
		logging.Bool("refresh", refresh))

	records, err := s.fetcher.TopAlbums(ctx, opts)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, records)
	return records, nil
}

func (s *Source) lookup(ctx context.Context, key string) ([]Record, bool) {
	payload, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed",
			logging.String(logging.FieldCacheKey, key),
			logging.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var records []Record
	if err := json.Unmarshal(payload, &records); err != nil {
		s.logger.Warn("discarding unreadable cache entry",
			logging.String(logging.FieldCacheKey, key),
			logging.Error(err))
		return nil, false
	}
	s.logger.Debug("cache hit",
		logging.String(logging.FieldCacheKey, key),
		logging.Int("albums", len(records)))
	return records, true
}

func (s *Source) store(ctx context.Context, key string, records []Record) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(records)
	if err != nil {
		s.logger.Warn("encode cache entry failed",
			logging.String(logging.FieldCacheKey, key),
			logging.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
		s.logger.Warn("cache write failed",
			logging.String(logging.FieldCacheKey, key),
			logging.Error(err))
	}
}

// cacheKey is stable across runs for one user/period/limit combination.
func cacheKey(opts FetchOptions) string {
	return fmt.Sprintf("lastfm:%s:%s:%d",
		textutil.SanitizeToken(opts.User),
		textutil.SanitizeToken(opts.Period),
		opts.Limit)
}
