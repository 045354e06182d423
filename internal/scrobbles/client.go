// Package scrobbles fetches album listening history from Last.fm.
//
// The only endpoint used is user.getTopAlbums, which is public: it needs an
// API key but no user session. Last.fm returns albums ordered by play count
// and the client preserves that order.
package scrobbles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shkh/lastfm-go/lastfm"

	"earmark/internal/logging"
)

var (
	// ErrMissingAPIKey is returned when no Last.fm API key is configured.
	ErrMissingAPIKey = errors.New("lastfm api key not configured")
	// ErrMissingUser is returned when no Last.fm username is configured.
	ErrMissingUser = errors.New("lastfm user not configured")
)

// pageSize is the per-request album count for top-album pagination.
const pageSize = 200

// Client calls the Last.fm API.
type Client struct {
	api    *lastfm.Api
	logger *slog.Logger
}

// NewClient builds a Client around the given API key.
func NewClient(apiKey string, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		api:    lastfm.New(apiKey, ""),
		logger: logging.NewComponentLogger(logger, "lastfm"),
	}, nil
}

// FetchOptions select whose history to fetch and how much of it.
type FetchOptions struct {
	User   string
	Period string
	Limit  int
}

// TopAlbums returns up to opts.Limit albums for the user, most played
// first. Entries without an artist or title and entries whose play count
// does not parse to a positive number are dropped. The API binding is not
// context-aware; cancellation takes effect between page requests.
func (c *Client) TopAlbums(ctx context.Context, opts FetchOptions) ([]Record, error) {
	user := strings.TrimSpace(opts.User)
	if user == "" {
		return nil, ErrMissingUser
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = pageSize
	}
	perPage := pageSize
	if limit < perPage {
		perPage = limit
	}

	start := time.Now()
	records := make([]Record, 0, limit)
	for page := 1; len(records) < limit; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := c.api.User.GetTopAlbums(lastfm.P{
			"user":   user,
			"period": opts.Period,
			"limit":  perPage,
			"page":   page,
		})
		if err != nil {
			return nil, fmt.Errorf("get top albums page %d: %w", page, err)
		}
		if len(result.Albums) == 0 {
			break
		}
		for _, album := range result.Albums {
			record, ok := recordFrom(album.Artist.Name, album.Name, album.PlayCount)
			if !ok {
				continue
			}
			records = append(records, record)
			if len(records) == limit {
				break
			}
		}
		if len(result.Albums) < perPage {
			break
		}
	}

	c.logger.Debug("fetched top albums",
		logging.String(logging.FieldUser, user),
		logging.String("period", opts.Period),
		logging.Int("albums", len(records)),
		logging.Duration("elapsed", time.Since(start)))
	return records, nil
}

// recordFrom converts one API album entry. Play counts arrive as strings in
// the XML response; anything that does not parse stays zero and the entry
// is dropped.
func recordFrom(artist, title, playCount string) (Record, bool) {
	artist = strings.TrimSpace(artist)
	title = strings.TrimSpace(title)
	if artist == "" || title == "" {
		return Record{}, false
	}
	plays := 0
	if playCount != "" {
		_, _ = fmt.Sscanf(playCount, "%d", &plays)
	}
	if plays <= 0 {
		return Record{}, false
	}
	return Record{Artist: artist, Title: title, PlayCount: plays}, true
}
