// Package musicbrainz resolves albums to MusicBrainz release groups for
// release-type enrichment. The service allows one anonymous request per
// second and requires an identifying User-Agent, so the client rate limits
// itself and caches responses aggressively.
package musicbrainz

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"earmark/internal/config"
	"earmark/internal/logging"
	"earmark/internal/textutil"
)

const (
	rateLimitInterval = time.Second

	maxRetries    = 3
	initialDelay  = 2 * time.Second
	maxRetryDelay = 30 * time.Second
)

// Confidence tiers: a direct MBID lookup is definitive, a search hit whose
// title matches exactly is strong, anything else is a guess worth showing.
const (
	ConfidenceLookup  = 1.0
	ConfidenceExact   = 0.8
	ConfidencePartial = 0.7
)

// ErrNotFound reports that MusicBrainz has no release group for the query.
var ErrNotFound = errors.New("release group not found")

// Cache stores raw API responses between runs. Satisfied by
// *apicache.Store; may be nil to disable caching.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

// Client queries the MusicBrainz release-group endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	cache      Cache
	cacheTTL   time.Duration
	retryDelay time.Duration
	rateEvery  time.Duration
	logger     *slog.Logger

	mu          sync.Mutex
	lastRequest time.Time
}

// New builds a client from configuration. cache may be nil.
func New(cfg *config.Config, cache Cache, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(cfg.MusicBrainz.BaseURL, "/"),
		userAgent:  cfg.MusicBrainz.UserAgent,
		cache:      cache,
		cacheTTL:   time.Duration(cfg.Cache.MusicBrainzTTLHours) * time.Hour,
		retryDelay: initialDelay,
		rateEvery:  rateLimitInterval,
		logger:     logging.NewComponentLogger(logger, "musicbrainz"),
	}
}

// Lookup fetches a release group by its MusicBrainz ID. The caller already
// holds the definitive identifier, so the confidence is 1.0.
func (c *Client) Lookup(ctx context.Context, mbid string) (*ReleaseType, error) {
	mbid = strings.TrimSpace(mbid)
	if mbid == "" {
		return nil, fmt.Errorf("lookup release group: empty mbid")
	}

	var group releaseGroup
	key := "musicbrainz:rg:" + textutil.SanitizeToken(mbid)
	if err := c.fetchJSON(ctx, key, c.lookupURL(mbid), &group); err != nil {
		return nil, fmt.Errorf("lookup release group %s: %w", mbid, err)
	}
	result := group.releaseType(ConfidenceLookup)
	return &result, nil
}

// Search resolves an artist and album pair to a release group. Hits are
// preferred in the order exact title match, substring overlap, first
// result, mirroring how the service ranks fuzzy queries.
func (c *Client) Search(ctx context.Context, artist, album string) (*ReleaseType, error) {
	artist = strings.TrimSpace(artist)
	album = strings.TrimSpace(album)
	if artist == "" || album == "" {
		return nil, fmt.Errorf("%q by %q: %w", album, artist, ErrNotFound)
	}

	var resp searchResponse
	if err := c.fetchJSON(ctx, searchCacheKey(artist, album), c.searchURL(artist, album), &resp); err != nil {
		return nil, fmt.Errorf("search release group: %w", err)
	}

	group, confidence := selectResult(resp.ReleaseGroups, album)
	if group == nil {
		return nil, fmt.Errorf("%q by %q: %w", album, artist, ErrNotFound)
	}

	// Search hits occasionally omit the type fields; the direct lookup
	// always carries them. Confidence stays at the search tier.
	if group.PrimaryType == "" && group.ID != "" {
		if full, err := c.Lookup(ctx, group.ID); err == nil {
			full.Confidence = confidence
			if full.Artist == "" {
				full.Artist = creditedArtist(group.ArtistCredit)
			}
			return full, nil
		}
	}

	result := group.releaseType(confidence)
	return &result, nil
}

// selectResult prefers exact title matches, then substring overlaps, then
// whatever the search ranked first.
func selectResult(groups []releaseGroup, album string) (*releaseGroup, float64) {
	if len(groups) == 0 {
		return nil, 0
	}
	want := strings.ToLower(strings.TrimSpace(album))
	var partial *releaseGroup
	for i := range groups {
		title := strings.ToLower(strings.TrimSpace(groups[i].Title))
		if title == "" {
			continue
		}
		if title == want {
			return &groups[i], ConfidenceExact
		}
		if partial == nil && (strings.Contains(title, want) || strings.Contains(want, title)) {
			partial = &groups[i]
		}
	}
	if partial != nil {
		return partial, ConfidencePartial
	}
	return &groups[0], ConfidencePartial
}

// searchCacheKey keeps keys readable for cache stats while a digest suffix
// guards against distinct names collapsing to the same sanitized token.
func searchCacheKey(artist, album string) string {
	digest := sha256.Sum256([]byte(artist + "\x00" + album))
	return fmt.Sprintf("musicbrainz:search:%s:%s:%x",
		textutil.SanitizeToken(artist), textutil.SanitizeToken(album), digest[:4])
}

func (c *Client) lookupURL(mbid string) string {
	params := url.Values{}
	params.Set("fmt", "json")
	return fmt.Sprintf("%s/release-group/%s?%s", c.baseURL, url.PathEscape(mbid), params.Encode())
}

func (c *Client) searchURL(artist, album string) string {
	params := url.Values{}
	params.Set("query", fmt.Sprintf("releasegroup:%q AND artist:%q", album, artist))
	params.Set("limit", "5")
	params.Set("fmt", "json")
	return fmt.Sprintf("%s/release-group?%s", c.baseURL, params.Encode())
}

// fetchJSON resolves a request through the cache, falling back to the API
// and storing the raw body on success. Cache failures are never fatal.
func (c *Client) fetchJSON(ctx context.Context, cacheKey, requestURL string, out any) error {
	if payload, ok := c.cached(ctx, cacheKey); ok {
		if err := json.Unmarshal(payload, out); err == nil {
			return nil
		}
		c.logger.Warn("discarding unreadable cache entry",
			logging.String(logging.FieldCacheKey, cacheKey))
	}

	body, err := c.get(ctx, requestURL)
	if err != nil {
		return err
	}
	c.store(ctx, cacheKey, body)

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) cached(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	payload, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed",
			logging.String(logging.FieldCacheKey, key),
			logging.Error(err))
		return nil, false
	}
	return payload, ok
}

func (c *Client) store(ctx context.Context, key string, payload []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, payload, c.cacheTTL); err != nil {
		c.logger.Warn("cache write failed",
			logging.String(logging.FieldCacheKey, key),
			logging.Error(err))
	}
}

func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("musicbrainz status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// doWithRetry retries server errors and network failures with exponential
// backoff. Client errors return immediately.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	delay := c.retryDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay = min(delay*2, maxRetryDelay)
		}
		c.waitTurn()

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		if resp.StatusCode < http.StatusInternalServerError {
			return resp, nil
		}
		resp.Body.Close()
		lastErr = fmt.Errorf("server status %d", resp.StatusCode)
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries+1, lastErr)
}

// waitTurn spaces requests to the service's one-per-second allowance.
func (c *Client) waitTurn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elapsed := time.Since(c.lastRequest); elapsed < c.rateEvery {
		time.Sleep(c.rateEvery - elapsed)
	}
	c.lastRequest = time.Now()
}
