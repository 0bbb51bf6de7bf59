package cache

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/damon-houk/fxconv/internal/domain/entity"
)

// DefaultExpiration is used when a non-positive TTL is given
const DefaultExpiration = time.Hour

// CacheEntry represents a cached series with its insertion time
type CacheEntry struct {
	Series    *entity.HistoricalSeries
	Timestamp time.Time
}

// HistoryCache provides a thread-safe in-memory cache for historical series
type HistoryCache struct {
	cache      map[string]CacheEntry
	expiration time.Duration
	now        func() time.Time
	mutex      sync.RWMutex
}

// NewHistoryCache creates a new history cache with the given TTL
func NewHistoryCache(expiration time.Duration) *HistoryCache {
	if expiration <= 0 {
		expiration = DefaultExpiration
	}

	return &HistoryCache{
		cache:      make(map[string]CacheEntry),
		expiration: expiration,
		now:        time.Now,
	}
}

// generateCacheKey creates a cache key from the currency pair and period
func generateCacheKey(base, target string, days int) string {
	return strings.Join([]string{base, target, strconv.Itoa(days)}, ":")
}

// Get retrieves a series from the cache if available and not expired
func (c *HistoryCache) Get(base, target string, days int) *entity.HistoricalSeries {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.cache[generateCacheKey(base, target, days)]

	// Return nil if entry doesn't exist or is expired
	if !exists || c.now().Sub(entry.Timestamp) > c.expiration {
		return nil
	}

	return entry.Series
}

// Put stores a series in the cache and drops entries that have expired
func (c *HistoryCache) Put(series *entity.HistoricalSeries, days int) {
	if series == nil {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	c.removeExpired(now)

	c.cache[generateCacheKey(series.Base, series.Target, days)] = CacheEntry{
		Series:    series,
		Timestamp: now,
	}
}

// removeExpired deletes expired entries. The caller holds the write lock.
func (c *HistoryCache) removeExpired(now time.Time) int {
	count := 0
	for key, entry := range c.cache {
		if now.Sub(entry.Timestamp) > c.expiration {
			delete(c.cache, key)
			count++
		}
	}

	return count
}
