package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"gapscout/internal/core"
)

// Store represents the SQLite-based result cache
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new store instance with SQLite database
func NewStore(dataDir string) (*Store, error) {
	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "gapscout.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:   db,
		path: dbPath,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	analysesTable := `
	CREATE TABLE IF NOT EXISTS analyses (
		cache_key TEXT PRIMARY KEY,
		run_id TEXT,
		primary_domain TEXT,
		competitor_domains TEXT,
		location_code INTEGER,
		target_gap_count INTEGER,
		strategy TEXT,
		gap_count INTEGER,
		result_json TEXT,
		date_generated DATETIME,
		expires_at DATETIME
	);`

	primaryIndex := `CREATE INDEX IF NOT EXISTS idx_analyses_primary ON analyses (primary_domain);`

	for _, stmt := range []string{analysesTable, primaryIndex} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Backend names this cache implementation
func (s *Store) Backend() string { return "sqlite" }

// Path returns the database file path
func (s *Store) Path() string { return s.path }

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores an analysis result. A non-positive ttl never expires.
func (s *Store) Put(ctx context.Context, key Key, result *core.AnalysisResult, ttl time.Duration) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: time.Now().UTC().Add(ttl), Valid: true}
	}

	query := `
	INSERT OR REPLACE INTO analyses
	(cache_key, run_id, primary_domain, competitor_domains, location_code, target_gap_count, strategy, gap_count, result_json, date_generated, expires_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		key.String(),
		result.RunID,
		key.Primary,
		strings.Join(key.Competitors, ","),
		key.LocationCode,
		result.TargetGapCount,
		string(result.Strategy),
		len(result.Gaps),
		string(payload),
		result.GeneratedAt.UTC(),
		expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to cache analysis: %w", err)
	}
	return nil
}

// Get retrieves an unexpired analysis result or ErrCacheMiss
func (s *Store) Get(ctx context.Context, key Key) (*core.AnalysisResult, error) {
	query := `
	SELECT result_json
	FROM analyses
	WHERE cache_key = ? AND (expires_at IS NULL OR expires_at > ?)`

	var payload string
	err := s.db.QueryRowContext(ctx, query, key.String(), time.Now().UTC()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan analysis: %w", err)
	}

	var result core.AnalysisResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached analysis: %w", err)
	}
	return &result, nil
}

// Stats returns statistics about the cache
func (s *Store) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{Backend: s.Backend()}

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(SUM(gap_count), 0) FROM analyses").
		Scan(&stats.AnalysisCount, &stats.GapCount)
	if err != nil {
		return nil, fmt.Errorf("failed to get count: %w", err)
	}

	// Get cache size (file size)
	if fileInfo, err := os.Stat(s.path); err == nil {
		stats.CacheSize = fileInfo.Size()
		stats.LastUpdated = fileInfo.ModTime()
	}

	return stats, nil
}

// Clear removes all cached data
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM analyses"); err != nil {
		return fmt.Errorf("failed to clear analyses table: %w", err)
	}

	// Vacuum to reclaim space
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}

	return nil
}

// CleanupExpired removes expired entries and reports how many were deleted
func (s *Store) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM analyses WHERE expires_at IS NOT NULL AND expires_at <= ?", time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to clean expired analyses: %w", err)
	}
	return res.RowsAffected()
}
