// Package reconcile runs the full reconciliation pass: rated catalog plus
// exclusion list against listening history, producing the ranked report of
// albums listened to but never rated.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"earmark/internal/blacklist"
	"earmark/internal/config"
	"earmark/internal/logging"
	"earmark/internal/matching"
	"earmark/internal/musicbrainz"
	"earmark/internal/ratings"
	"earmark/internal/report"
	"earmark/internal/scrobbles"
	"earmark/internal/textutil"
)

// Source fetches listening records. Satisfied by *scrobbles.Source.
type Source interface {
	Fetch(ctx context.Context, opts scrobbles.FetchOptions, refresh bool) ([]scrobbles.Record, error)
}

// Enricher resolves albums to release types. Satisfied by
// *musicbrainz.Client.
type Enricher interface {
	Search(ctx context.Context, artist, album string) (*musicbrainz.ReleaseType, error)
}

// Deps carries the pipeline collaborators. Enricher may be nil when
// release-type enrichment is disabled.
type Deps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Source   Source
	Enricher Enricher
}

// Options are the per-invocation knobs. Zero values fall back to the
// configuration file.
type Options struct {
	User    string
	Period  string
	Limit   int
	Refresh bool
	Kinds   []string
	Verbose bool
}

// Run executes one reconciliation pass. Collaborator failures abort the
// run; only release-type enrichment degrades to a warning.
func Run(ctx context.Context, deps Deps, opts Options) (report.Report, error) {
	if deps.Config == nil {
		return report.Report{}, errors.New("reconcile: nil config")
	}
	if deps.Source == nil {
		return report.Report{}, errors.New("reconcile: nil listening source")
	}
	logger := logging.NewComponentLogger(deps.Logger, "reconcile")

	rated, err := ratings.Load(deps.Config.Paths.RatingsCSV)
	if err != nil {
		return report.Report{}, fmt.Errorf("load ratings: %w", err)
	}
	logger.Debug("loaded rated albums",
		logging.String("path", deps.Config.Paths.RatingsCSV),
		logging.Int("albums", len(rated)))

	excluded, err := blacklist.Load(deps.Config.Paths.BlacklistFile)
	if err != nil {
		return report.Report{}, fmt.Errorf("load blacklist: %w", err)
	}

	records, err := deps.Source.Fetch(ctx, scrobbles.FetchOptions{
		User:   pick(opts.User, deps.Config.Lastfm.User),
		Period: pick(opts.Period, deps.Config.Lastfm.Period),
		Limit:  pickInt(opts.Limit, deps.Config.Lastfm.Limit),
	}, opts.Refresh)
	if err != nil {
		return report.Report{}, fmt.Errorf("fetch listening history: %w", err)
	}

	kept, blacklisted := excluded.Filter(records)

	matcher := matching.New(matcherConfig(deps.Config), rated, deps.Logger)
	matches := matcher.Run(kept)
	unrated := matching.Unrated(matches)

	matched := len(kept) - len(unrated)
	rows := buildRows(ctx, logger, deps.Enricher, unrated, opts)

	summary := report.Summary{
		ListeningRecords: len(records),
		RatedAlbums:      len(rated),
		Matched:          matched,
		Blacklisted:      blacklisted,
		Unrated:          len(rows),
	}
	logger.Info("reconciliation complete",
		logging.Int("listening_records", summary.ListeningRecords),
		logging.Int("rated_albums", summary.RatedAlbums),
		logging.Int("matched", summary.Matched),
		logging.Int("blacklisted", summary.Blacklisted),
		logging.Int("unrated", summary.Unrated))

	return report.Report{Rows: rows, Summary: summary}, nil
}

// buildRows converts the ranked unrated matches to report rows, applying
// release-type enrichment when kinds were requested.
func buildRows(ctx context.Context, logger *slog.Logger, enricher Enricher, unrated []matching.Match, opts Options) []report.Row {
	kinds := normalizeKinds(opts.Kinds)
	if len(kinds) > 0 && enricher == nil {
		logger.Warn("release-type filter requested but enrichment is disabled")
		kinds = nil
	}

	rows := make([]report.Row, 0, len(unrated))
	for _, match := range unrated {
		row := report.Row{
			Artist:    match.Record.Artist,
			Title:     match.Record.Title,
			PlayCount: match.Record.PlayCount,
		}
		if opts.Verbose && match.Best != nil {
			row.Closest = &report.Candidate{
				Artist:      match.Best.Artist,
				Title:       match.Best.Title,
				ArtistScore: match.Best.ArtistScore,
				TitleScore:  match.Best.TitleScore,
				Combined:    match.Best.Combined,
			}
		}

		if len(kinds) > 0 {
			keep := enrichRow(ctx, logger, enricher, &row, kinds)
			logger.Debug("release-type filter",
				logging.String("artist", row.Artist),
				logging.String("title", row.Title),
				logging.String("kind", row.Kind),
				logging.String("decision", textutil.Ternary(keep, "keep", "drop")))
			if !keep {
				continue
			}
		}

		row.Rank = len(rows) + 1
		rows = append(rows, row)
	}
	return rows
}

// enrichRow annotates one row with its release type and reports whether the
// row survives the kind filter. Albums MusicBrainz does not know and release
// groups without a primary type are kept: unknown is not excluded. Lookup
// failures keep the row and warn.
func enrichRow(ctx context.Context, logger *slog.Logger, enricher Enricher, row *report.Row, kinds []string) bool {
	released, err := enricher.Search(ctx, row.Artist, row.Title)
	if err != nil {
		if !errors.Is(err, musicbrainz.ErrNotFound) {
			logger.Warn("release-type lookup failed",
				logging.String("artist", row.Artist),
				logging.String("title", row.Title),
				logging.Error(err))
		}
		return true
	}

	row.Kind = released.PrimaryType
	row.Confidence = released.Confidence
	if released.PrimaryType == "" {
		return true
	}
	for _, kind := range kinds {
		if strings.EqualFold(released.PrimaryType, kind) {
			return true
		}
	}
	return false
}

func normalizeKinds(kinds []string) []string {
	out := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		if trimmed := strings.TrimSpace(kind); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func matcherConfig(cfg *config.Config) matching.Config {
	return matching.Config{
		ArtistThreshold: cfg.Matching.ArtistThreshold,
		TitleThreshold:  cfg.Matching.TitleThreshold,
		ArtistWeight:    cfg.Matching.ArtistWeight,
		TitleWeight:     cfg.Matching.TitleWeight,
	}
}

func pick(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func pickInt(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
