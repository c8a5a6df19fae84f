package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gapscout/internal/core"
	"gapscout/internal/gap"
)

// ErrCacheMiss indicates a cache miss.
var ErrCacheMiss = errors.New("cache miss")

// ResultCache stores analysis results keyed by domain set and location.
type ResultCache interface {
	Get(ctx context.Context, key Key) (*core.AnalysisResult, error)
	Put(ctx context.Context, key Key, result *core.AnalysisResult, ttl time.Duration) error
	Stats(ctx context.Context) (*CacheStats, error)
	Clear(ctx context.Context) error
	Backend() string
	Close() error
}

// CacheStats represents cache statistics
type CacheStats struct {
	Backend       string
	AnalysisCount int
	GapCount      int
	CacheSize     int64
	LastUpdated   time.Time
}

// Key identifies a cached analysis: normalized primary, sorted normalized competitors, location code.
type Key struct {
	Primary      string
	Competitors  []string
	LocationCode int
}

// NewKey normalizes and sorts the domains so equivalent requests share one key.
func NewKey(primary string, competitors []string, locationCode int) Key {
	normalized := make([]string, 0, len(competitors))
	seen := make(map[string]bool, len(competitors))
	for _, c := range competitors {
		n := gap.Normalize(c)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		normalized = append(normalized, n)
	}
	sort.Strings(normalized)
	return Key{Primary: gap.Normalize(primary), Competitors: normalized, LocationCode: locationCode}
}

// String renders the key as "primary|c1,c2|location".
func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%d", k.Primary, strings.Join(k.Competitors, ","), k.LocationCode)
}

// Open creates the cache for a backend name: sqlite, redis or none. None returns a nil cache.
func Open(ctx context.Context, backend, dataDir string, redisCfg RedisConfig) (ResultCache, error) {
	switch strings.ToLower(backend) {
	case "", "sqlite":
		s, err := NewStore(dataDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "redis":
		c, err := NewRedisCache(ctx, redisCfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", backend)
	}
}
