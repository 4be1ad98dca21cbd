package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/endersclarity/nevada-county-kids-events/internal/metrics"
	"github.com/endersclarity/nevada-county-kids-events/internal/model"
	"github.com/endersclarity/nevada-county-kids-events/internal/normalize"
	"github.com/endersclarity/nevada-county-kids-events/internal/storage"
)

// FetchFunc obtains raw events from a source. It may fail as a whole; the
// cache never swallows its errors.
type FetchFunc func(ctx context.Context) ([]model.RawEvent, error)

// Cache wraps the store with TTL-based freshness. It holds no mutable state
// across calls; every invocation is independent.
type Cache struct {
	store  storage.Store
	logger *slog.Logger
}

// New creates a Cache over the given store.
func New(store storage.Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{store: store, logger: logger}
}

// GetOrFetch returns fresh stored records for the source, or runs a
// fetch-normalize-store cycle on miss. The returned hit flag reports which
// path was taken.
//
// On a miss with a non-empty fetch, the store is re-queried after the write
// so the returned records carry storage identity and scraped_at, the same
// shape a hit returns. Errors from fetch or the store propagate to the
// caller; fault isolation is the orchestrator's job.
func (c *Cache) GetOrFetch(ctx context.Context, source string, fetch FetchFunc, ttl time.Duration) ([]model.Event, bool, error) {
	cached, err := c.store.RecentEvents(ctx, source, ttl)
	if err != nil {
		return nil, false, fmt.Errorf("query cache for %s: %w", source, err)
	}

	if len(cached) > 0 {
		age := time.Since(cached[0].ScrapedAt)
		c.logger.Info("cache hit",
			"source", source,
			"events", len(cached),
			"age", age.Round(time.Minute),
		)
		metrics.CacheHits.WithLabelValues(source).Inc()
		return cached, true, nil
	}

	c.logger.Info("cache miss, fetching fresh data", "source", source)
	metrics.CacheMisses.WithLabelValues(source).Inc()

	raw, err := fetch(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("fetch %s: %w", source, err)
	}
	if len(raw) == 0 {
		c.logger.Warn("fetch returned no events", "source", source)
		return nil, false, nil
	}

	normalizer := normalize.New(source, c.logger)
	events, _ := normalizer.Normalize(raw, 0)
	if len(events) == 0 {
		c.logger.Warn("no events survived normalization", "source", source)
		return nil, false, nil
	}

	count, err := c.store.UpsertEvents(ctx, events)
	if err != nil {
		return nil, false, fmt.Errorf("store %s events: %w", source, err)
	}
	c.logger.Info("cached fresh events", "source", source, "count", count)

	// Re-query so the result carries ids and scraped_at like a hit would.
	stored, err := c.store.RecentEvents(ctx, source, ttl)
	if err != nil {
		return nil, false, fmt.Errorf("re-query cache for %s: %w", source, err)
	}
	return stored, false, nil
}

// Invalidate clears all stored records for a source, forcing the next
// GetOrFetch to miss.
func (c *Cache) Invalidate(ctx context.Context, source string) error {
	c.logger.Info("invalidating cache", "source", source)

	n, err := c.store.DeleteSource(ctx, source)
	if err != nil {
		return fmt.Errorf("invalidate %s: %w", source, err)
	}

	c.logger.Info("cache invalidated", "source", source, "removed", n)
	return nil
}
