package grading

import (
	"context"
	"sync"
	"time"

	"github.com/diewo77/go-schools/internal/models"
)

// scaleLoader fetches a scale from the store; id 0 means the default scale.
type scaleLoader func(ctx context.Context, id uint) (*models.GradeScale, error)

// scaleCache wraps a scaleLoader with TTL-based caching so report generation
// does not reload the scale for every subject.
type scaleCache struct {
	load  scaleLoader
	cache map[uint]*cacheEntry
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
}

type cacheEntry struct {
	scale     *models.GradeScale
	expiresAt time.Time
}

func newScaleCache(load scaleLoader, ttl time.Duration, now func() time.Time) *scaleCache {
	return &scaleCache{
		load:  load,
		cache: make(map[uint]*cacheEntry),
		ttl:   ttl,
		now:   now,
	}
}

// Get returns the scale for id, using the cache when the entry is fresh.
func (c *scaleCache) Get(ctx context.Context, id uint) (*models.GradeScale, error) {
	c.mu.RLock()
	entry, ok := c.cache[id]
	c.mu.RUnlock()

	if ok && c.now().Before(entry.expiresAt) {
		return entry.scale, nil
	}

	scale, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.ttl <= 0 {
		return scale, nil
	}

	c.mu.Lock()
	c.cache[id] = &cacheEntry{
		scale:     scale,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()

	return scale, nil
}

// InvalidateAll clears the cache. Called whenever a scale is created or the
// default changes.
func (c *scaleCache) InvalidateAll() {
	c.mu.Lock()
	c.cache = make(map[uint]*cacheEntry)
	c.mu.Unlock()
}
