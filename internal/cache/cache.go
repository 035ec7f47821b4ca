// Package cache provides the process-local cache tier in front of the remote
// store.
package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/betmind/internal/models"
)

// Cache is a bounded TTL cache. One mutex guards every read-check-then-insert.
type Cache[V any] struct {
	name      string
	cache     *gocache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// New creates a cache whose entries live for ttl. maxSize <= 0 means unbounded.
func New[V any](name string, ttl time.Duration, maxSize int) *Cache[V] {
	return &Cache[V]{
		name:    name,
		cache:   gocache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// NewArtifactCache creates the analysis artifact cache keyed by entity id.
func NewArtifactCache(ttl time.Duration, maxSize int) *Cache[*models.AnalysisArtifact] {
	return New[*models.AnalysisArtifact]("analysis", ttl, maxSize)
}

// NewFixtureCache creates the fixture list cache keyed by civil day.
func NewFixtureCache(ttl time.Duration, maxSize int) *Cache[[]models.FixtureRef] {
	return New[[]models.FixtureRef]("fixtures", ttl, maxSize)
}

// Get retrieves a cached value
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, found := c.cache.Get(key); found {
		if typed, ok := v.(V); ok {
			c.hitCount++
			c.updateMetrics()
			return typed, true
		}
	}

	c.missCount++
	c.updateMetrics()
	var zero V
	return zero, false
}

// Set stores a value, overwriting any previous entry for key
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize > 0 && c.cache.ItemCount() >= c.maxSize {
		if _, exists := c.cache.Get(key); !exists {
			c.cache.DeleteExpired()
			if c.cache.ItemCount() >= c.maxSize {
				c.evictOldestLocked()
			}
		}
	}

	c.cache.Set(key, value, c.ttl)
}

// evictOldestLocked drops the entry closest to expiry.
func (c *Cache[V]) evictOldestLocked() {
	var (
		oldestKey string
		oldestExp int64
	)
	for k, item := range c.cache.Items() {
		if oldestKey == "" || item.Expiration < oldestExp {
			oldestKey, oldestExp = k, item.Expiration
		}
	}
	if oldestKey != "" {
		c.cache.Delete(oldestKey)
	}
}

// Stats returns cache statistics
func (c *Cache[V]) Stats() (hits, misses uint64, ratio float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statsLocked()
}

func (c *Cache[V]) statsLocked() (hits, misses uint64, ratio float64) {
	hits = c.hitCount
	misses = c.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

func (c *Cache[V]) updateMetrics() {
	_, _, ratio := c.statsLocked()
	CacheHitRatio.WithLabelValues(c.name).Set(ratio)
}

// ItemCount returns the number of items in cache, expired ones included
// until the janitor runs.
func (c *Cache[V]) ItemCount() int {
	return c.cache.ItemCount()
}
