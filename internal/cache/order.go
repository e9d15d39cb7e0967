package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"masonry/internal/core"
	"masonry/internal/observability"
)

// Key identifies one cached ordering. A changed content version hash yields a
// distinct key, so stale entries are never overwritten; they age out by TTL.
type Key struct {
	IssueID     int64
	Columns     int
	VersionHash string
}

// String renders the storage key.
func (k Key) String() string {
	return fmt.Sprintf("order:%d:%d:%s", k.IssueID, k.Columns, k.VersionHash)
}

// ComputeFunc produces an ordering when the cache has no usable entry.
type ComputeFunc func(ctx context.Context) (core.OrderingResult, error)

// OrderCache memoizes ordering results per (issueId, columnCount, versionHash)
// with TTL and single-flight computation: concurrent callers for the same key
// share one compute invocation instead of each running the skyline pass.
type OrderCache struct {
	store   Store
	ttl     time.Duration
	metrics *observability.Metrics
	flight  singleflight.Group
}

// NewOrderCache creates an ordering cache over the given store.
// A non-positive ttl falls back to DefaultOrderTTL. metrics may be nil.
func NewOrderCache(store Store, ttl time.Duration, metrics *observability.Metrics) *OrderCache {
	if ttl <= 0 {
		ttl = DefaultOrderTTL
	}
	return &OrderCache{store: store, ttl: ttl, metrics: metrics}
}

// TTL returns the configured time-to-live for ordering entries.
func (c *OrderCache) TTL() time.Duration {
	return c.ttl
}

// GetOrCompute returns the cached ordering for key, or runs compute exactly
// once per key under concurrency and caches its result. The second return
// value reports whether the result came from the cache.
//
// The computation runs on a context detached from the caller: if the caller
// disconnects, only its wait is abandoned and other waiters still receive the
// result. A caller whose context expires while waiting gets a computation
// timeout error.
func (c *OrderCache) GetOrCompute(ctx context.Context, key Key, compute ComputeFunc) (core.OrderingResult, bool, error) {
	storageKey := key.String()

	if data, ok, err := c.store.Get(ctx, storageKey); err == nil && ok {
		var res core.OrderingResult
		if err := json.Unmarshal(data, &res); err == nil {
			c.metrics.OrderCacheHit(key.Columns)
			return res, true, nil
		}
		slog.Warn("discarding undecodable cache entry", "key", storageKey)
	} else if err != nil {
		// A broken store degrades to compute-every-time rather than failing.
		slog.Warn("order cache read failed", "key", storageKey, "error", err)
	}

	c.metrics.OrderCacheMiss(key.Columns)

	detached := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(storageKey, func() (interface{}, error) {
		start := time.Now()
		res, err := compute(detached)
		if err != nil {
			return core.OrderingResult{}, err
		}
		c.metrics.ObserveComputeDuration(time.Since(start))

		data, err := json.Marshal(res)
		if err != nil {
			return core.OrderingResult{}, fmt.Errorf("failed to marshal ordering: %w", err)
		}
		if err := c.store.Set(detached, storageKey, data, c.ttl); err != nil {
			// The result is still valid; losing the cache write only costs a
			// recompute on the next miss.
			slog.Warn("order cache write failed", "key", storageKey, "error", err)
		}
		return res, nil
	})

	select {
	case <-ctx.Done():
		return core.OrderingResult{}, false, core.NewComputationTimeoutError(
			fmt.Sprintf("timed out waiting for ordering of issue %d (%d columns)", key.IssueID, key.Columns),
			ctx.Err(),
		)
	case out := <-ch:
		if out.Err != nil {
			return core.OrderingResult{}, false, out.Err
		}
		return out.Val.(core.OrderingResult), false, nil
	}
}
