package apicache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"earmark/internal/config"
)

// ErrLocked is returned when another process holds the cache lock.
var ErrLocked = errors.New("api cache is in use by another process")

// timeLayout keeps a fixed-width fraction so SQL string comparison on
// stored timestamps stays ordered.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is the SQLite-backed response cache.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open connects to the cache database under the configured cache directory,
// acquiring the cache lock and applying migrations. Callers that cannot
// obtain the lock receive ErrLocked and should run uncached.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.CacheDir, "api_cache.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	dbPath := filepath.Join(cfg.Paths.CacheDir, "api_cache.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Close closes the database and releases the cache lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var closeErr error
	if s.db != nil {
		closeErr = s.db.Close()
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && closeErr == nil {
			closeErr = fmt.Errorf("release cache lock: %w", err)
		}
	}
	return closeErr
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Get returns the payload stored under key. A missing or expired entry is a
// miss, not an error; expired entries are deleted on the way out.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload, expires_at FROM api_responses WHERE key = ?`, key)
	var (
		payload    []byte
		expiresRaw sql.NullString
	)
	if err := row.Scan(&payload, &expiresRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get cache entry: %w", err)
	}
	if expiresRaw.Valid {
		expires, err := time.Parse(time.RFC3339Nano, expiresRaw.String)
		if err == nil && !expires.After(time.Now().UTC()) {
			_, _ = s.db.ExecContext(ctx, `DELETE FROM api_responses WHERE key = ?`, key)
			return nil, false, nil
		}
	}
	return payload, true, nil
}

// Set stores a payload under key, replacing any existing entry. A ttl of
// zero or less stores the entry without an expiry.
func (s *Store) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("cache key is required")
	}
	now := time.Now().UTC()
	var expires any
	if ttl > 0 {
		expires = now.Add(ttl).Format(timeLayout)
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO api_responses (key, payload, created_at, expires_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET
             payload = excluded.payload,
             created_at = excluded.created_at,
             expires_at = excluded.expires_at`,
		key,
		payload,
		now.Format(timeLayout),
		expires,
	)
	if err != nil {
		return fmt.Errorf("set cache entry: %w", err)
	}
	return nil
}

// Prune deletes every expired entry and returns the number removed.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM api_responses WHERE expires_at IS NOT NULL AND expires_at < ?`,
		time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("prune cache: %w", err)
	}
	return res.RowsAffected()
}

// Clear deletes every entry and returns the number removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM api_responses`)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return res.RowsAffected()
}

// Stats summarizes cache contents for diagnostic output.
type Stats struct {
	Path      string
	Entries   int
	Expired   int
	BySource  map[string]int
	SizeBytes int64
}

// Stats counts entries overall, expired, and grouped by the source prefix
// before the first ':' in each key.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: s.path, BySource: make(map[string]int)}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT CASE WHEN instr(key, ':') > 1 THEN substr(key, 1, instr(key, ':') - 1) ELSE key END AS source,
                COUNT(1)
         FROM api_responses GROUP BY source`,
	)
	if err != nil {
		return stats, fmt.Errorf("cache stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			source string
			count  int
		)
		if err := rows.Scan(&source, &count); err != nil {
			return stats, err
		}
		stats.BySource[source] = count
		stats.Entries += count
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	row := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM api_responses WHERE expires_at IS NOT NULL AND expires_at < ?`,
		time.Now().UTC().Format(timeLayout),
	)
	if err := row.Scan(&stats.Expired); err != nil {
		return stats, fmt.Errorf("count expired entries: %w", err)
	}

	if info, err := os.Stat(s.path); err == nil {
		stats.SizeBytes = info.Size()
	}
	return stats, nil
}

// DatabaseHealth is diagnostic information about the cache database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TableExists      bool
	MissingColumns   []string
	TotalEntries     int
	IntegrityCheck   bool
	Error            string
}

// CheckHealth inspects the cache database file, schema, and integrity.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat cache database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("cache database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping cache database: %w", err)
	}
	health.DatabaseReadable = true

	var tableName string
	row := s.db.QueryRowContext(connCtx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'api_responses'")
	if err := row.Scan(&tableName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return health, nil
		}
		health.Error = err.Error()
		return health, fmt.Errorf("query table info: %w", err)
	}
	health.TableExists = true

	colsRows, err := s.db.QueryContext(connCtx, "PRAGMA table_info(api_responses)")
	if err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("table info: %w", err)
	}
	defer colsRows.Close()

	present := make(map[string]struct{})
	for colsRows.Next() {
		var (
			cid     int
			name    string
			typeStr string
			notNull int
			dflt    any
			pk      int
		)
		if err := colsRows.Scan(&cid, &name, &typeStr, &notNull, &dflt, &pk); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("scan table info: %w", err)
		}
		present[name] = struct{}{}
	}
	if err := colsRows.Err(); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("iterate table info: %w", err)
	}
	for _, col := range []string{"key", "payload", "created_at", "expires_at"} {
		if _, ok := present[col]; !ok {
			health.MissingColumns = append(health.MissingColumns, col)
		}
	}

	row = s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM api_responses")
	if err := row.Scan(&health.TotalEntries); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("count cache entries: %w", err)
	}

	row = s.db.QueryRowContext(connCtx, "PRAGMA integrity_check")
	var integrityResult string
	if err := row.Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}
