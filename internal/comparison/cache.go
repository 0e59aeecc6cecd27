package comparison

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"fund-overlap-lab/internal/domain"
	"fund-overlap-lab/internal/observability"
	"fund-overlap-lab/internal/storage"
)

// DefaultMaxAge is how long a cached comparison stays valid.
const DefaultMaxAge = 7 * 24 * time.Hour

// Cache wraps a ComparisonStore with an age-based invalidation policy.
// An entry older than maxAge is treated exactly like a missing entry:
// callers cannot distinguish "never computed" from "expired" and must
// recompute on a miss. Storage failures never surface to the caller;
// the system stays functional, just slower, with no cache at all.
type Cache struct {
	store  storage.ComparisonStore
	maxAge time.Duration
	logger *log.Logger
	now    func() time.Time
}

// NewCache creates a Cache over store. maxAge <= 0 selects DefaultMaxAge.
func NewCache(store storage.ComparisonStore, maxAge time.Duration, logger *log.Logger) *Cache {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Cache{
		store:  store,
		maxAge: maxAge,
		logger: logger,
		now:    time.Now,
	}
}

// Get returns the cached result for (fundTicker, institutionID), or
// ok=false when the entry is absent, expired, unreadable or corrupted.
func (c *Cache) Get(ctx context.Context, fundTicker, institutionID string) (*domain.ComparisonResult, bool) {
	payload, storedAt, err := c.store.Get(ctx, fundTicker, institutionID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			observability.DefaultMetrics.CacheErrors.WithLabelValues("get").Inc()
			c.logger.Printf("comparison cache read failed for %s/%s, treating as miss: %v",
				fundTicker, institutionID, err)
		}
		observability.DefaultMetrics.CacheMisses.Inc()
		return nil, false
	}

	age := c.now().UnixMilli() - storedAt
	if age > c.maxAge.Milliseconds() {
		observability.DefaultMetrics.CacheMisses.Inc()
		return nil, false
	}

	var result domain.ComparisonResult
	if err := json.Unmarshal(payload, &result); err != nil {
		observability.DefaultMetrics.CacheErrors.WithLabelValues("get").Inc()
		c.logger.Printf("comparison cache entry for %s/%s is corrupted, treating as miss: %v",
			fundTicker, institutionID, err)
		observability.DefaultMetrics.CacheMisses.Inc()
		return nil, false
	}

	observability.DefaultMetrics.CacheHits.Inc()
	return &result, true
}

// Put stores a result, overwriting any previous entry. A storage
// failure is logged and swallowed: failure to cache must never abort
// the computation that produced the result.
func (c *Cache) Put(ctx context.Context, result *domain.ComparisonResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		observability.DefaultMetrics.CacheErrors.WithLabelValues("put").Inc()
		c.logger.Printf("comparison cache encode failed for %s/%s: %v",
			result.FundTicker, result.InstitutionID, err)
		return
	}

	if err := c.store.Put(ctx, result.FundTicker, result.InstitutionID, payload); err != nil {
		observability.DefaultMetrics.CacheErrors.WithLabelValues("put").Inc()
		c.logger.Printf("comparison cache write failed for %s/%s: %v",
			result.FundTicker, result.InstitutionID, err)
	}
}
