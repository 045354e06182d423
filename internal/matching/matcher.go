package matching

import (
	"log/slog"
	"sort"
	"strings"

	"earmark/internal/logging"
	"earmark/internal/ratings"
	"earmark/internal/scrobbles"
)

// Scores where the tier rules change. An artist score at or above
// nearPerfectArtist relaxes the title requirement to lenientTitleFloor.
// containmentScore is awarded when one main artist appears inside the
// other's full credit, covering "Artist" against "Artist & Friends".
const (
	nearPerfectArtist = 95
	lenientTitleFloor = 60
	containmentScore  = 85
)

// Config tunes acceptance thresholds and the component weights of the
// combined score. Thresholds are inclusive; weights should sum to 1.
type Config struct {
	ArtistThreshold int
	TitleThreshold  int
	ArtistWeight    float64
	TitleWeight     float64
}

// DefaultConfig mirrors the configuration file defaults.
func DefaultConfig() Config {
	return Config{
		ArtistThreshold: 85,
		TitleThreshold:  85,
		ArtistWeight:    0.6,
		TitleWeight:     0.4,
	}
}

// Candidate records how close a listening record came to one rated album.
// It is kept both for match attribution and for diagnosing near misses.
type Candidate struct {
	Artist      string
	Title       string
	Rating      int
	ArtistScore int
	TitleScore  int
	Combined    float64
}

// Match classifies one listening record against the rated catalog. For a
// matched record Best is the accepted rated album; for an unmatched record
// it is the closest decline, or nil when the catalog is empty.
type Match struct {
	Record  scrobbles.Record
	Matched bool
	Best    *Candidate
}

type preparedVariant struct {
	artist string
	main   string
}

type preparedAlbum struct {
	source   ratings.Album
	title    string
	variants []preparedVariant
}

// Matcher classifies listening records against a rated-album catalog.
type Matcher struct {
	cfg    Config
	rated  []preparedAlbum
	logger *slog.Logger
}

// New prepares the rated catalog for repeated classification. Titles and
// artist variants are normalized once up front; albums whose artist or
// title normalize to nothing can never be matched and are dropped here.
func New(cfg Config, rated []ratings.Album, logger *slog.Logger) *Matcher {
	def := DefaultConfig()
	if cfg.ArtistThreshold <= 0 {
		cfg.ArtistThreshold = def.ArtistThreshold
	}
	if cfg.TitleThreshold <= 0 {
		cfg.TitleThreshold = def.TitleThreshold
	}
	if cfg.ArtistWeight <= 0 || cfg.TitleWeight <= 0 {
		cfg.ArtistWeight = def.ArtistWeight
		cfg.TitleWeight = def.TitleWeight
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	prepared := make([]preparedAlbum, 0, len(rated))
	for _, album := range rated {
		entry := preparedAlbum{source: album, title: NormalizeTitle(album.Title)}
		for _, variant := range album.ArtistVariants() {
			normalized := NormalizeArtist(variant)
			if normalized == "" {
				continue
			}
			entry.variants = append(entry.variants, preparedVariant{
				artist: normalized,
				main:   MainArtist(normalized),
			})
		}
		if entry.title == "" || len(entry.variants) == 0 {
			continue
		}
		prepared = append(prepared, entry)
	}

	return &Matcher{
		cfg:    cfg,
		rated:  prepared,
		logger: logging.NewComponentLogger(logger, "matcher"),
	}
}

// Classify scores one listening record against every rated album. Records
// whose artist or title normalize to nothing are unmatched by definition.
// Ties on the combined score keep the earliest catalog entry.
func (m *Matcher) Classify(record scrobbles.Record) Match {
	match := Match{Record: record}
	artist := NormalizeArtist(record.Artist)
	title := NormalizeTitle(record.Title)
	if artist == "" || title == "" {
		return match
	}
	mainArtist := MainArtist(artist)

	var best, bestAccepted *Candidate
	for i := range m.rated {
		album := &m.rated[i]
		artistScore := 0
		for _, variant := range album.variants {
			if score := m.scoreArtist(artist, mainArtist, variant); score > artistScore {
				artistScore = score
			}
		}
		titleScore := TokenSetRatio(title, album.title)
		candidate := &Candidate{
			Artist:      album.source.Artist,
			Title:       album.source.Title,
			Rating:      album.source.Rating,
			ArtistScore: artistScore,
			TitleScore:  titleScore,
			Combined:    m.cfg.ArtistWeight*float64(artistScore) + m.cfg.TitleWeight*float64(titleScore),
		}
		if best == nil || candidate.Combined > best.Combined {
			best = candidate
		}
		if m.accepts(artistScore, titleScore) && (bestAccepted == nil || candidate.Combined > bestAccepted.Combined) {
			bestAccepted = candidate
		}
	}

	if bestAccepted != nil {
		match.Matched = true
		match.Best = bestAccepted
		m.logger.Debug("record matched rated album",
			logging.String("artist", record.Artist),
			logging.String("title", record.Title),
			logging.String("rated_artist", bestAccepted.Artist),
			logging.String("rated_title", bestAccepted.Title),
			logging.Float64("combined", bestAccepted.Combined))
		return match
	}
	match.Best = best
	return match
}

// scoreArtist takes the best of the full-credit comparison, the main-artist
// comparison, and the containment fallback.
func (m *Matcher) scoreArtist(artist, mainArtist string, variant preparedVariant) int {
	score := TokenSetRatio(artist, variant.artist)
	if s := TokenSetRatio(mainArtist, variant.main); s > score {
		score = s
	}
	if score < containmentScore &&
		(strings.Contains(variant.artist, mainArtist) || strings.Contains(artist, variant.main)) {
		score = containmentScore
	}
	return score
}

// accepts applies the tiered threshold rule. Both boundaries are inclusive.
func (m *Matcher) accepts(artistScore, titleScore int) bool {
	if artistScore < m.cfg.ArtistThreshold {
		return false
	}
	floor := m.cfg.TitleThreshold
	if artistScore >= nearPerfectArtist {
		floor = lenientTitleFloor
	}
	return titleScore >= floor
}

// Run classifies every listening record, preserving input order.
func (m *Matcher) Run(records []scrobbles.Record) []Match {
	matches := make([]Match, 0, len(records))
	matched := 0
	for _, record := range records {
		match := m.Classify(record)
		if match.Matched {
			matched++
		}
		matches = append(matches, match)
	}
	m.logger.Debug("classified listening records",
		logging.Int("records", len(records)),
		logging.Int("rated_albums", len(m.rated)),
		logging.Int("matched", matched))
	return matches
}

// Unrated selects the unmatched records ordered by play count descending.
// Equal counts keep their input order so repeated runs print identically.
func Unrated(matches []Match) []Match {
	unrated := make([]Match, 0, len(matches))
	for _, match := range matches {
		if !match.Matched {
			unrated = append(unrated, match)
		}
	}
	sort.SliceStable(unrated, func(i, j int) bool {
		return unrated[i].Record.PlayCount > unrated[j].Record.PlayCount
	})
	return unrated
}
