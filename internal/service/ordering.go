// Package service orchestrates layout ordering requests: upstream reads,
// dimension resolution, cached skyline computation and response assembly.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"masonry/internal/cache"
	"masonry/internal/core"
	"masonry/internal/dimensions"
	"masonry/internal/layout"
	"masonry/internal/observability"
	"masonry/internal/version"
)

// The two column counts of the product's responsive grid. The orderer itself
// generalizes to any count >= 1; the service always serves this pair.
const (
	narrowColumns = 2
	wideColumns   = 4
)

// DefaultRequestTimeout bounds one ordering request end to end.
const DefaultRequestTimeout = 10 * time.Second

// Config holds service tunables.
type Config struct {
	// RequestTimeout bounds a single request including any single-flight wait.
	RequestTimeout time.Duration

	// FallbackTTL is how long the last assembled response per issue stays
	// replayable during upstream outages.
	FallbackTTL time.Duration
}

// Deps are the collaborators an OrderingService is wired with at startup.
// All cache state is owned here explicitly; there is no ambient global cache.
type Deps struct {
	Source     core.Source
	Dimensions *dimensions.Provider
	Orders     *cache.OrderCache
	Store      cache.Store
	Orderer    *layout.Skyline
	Metrics    *observability.Metrics
}

// OrderingService serves placement orders for issues.
type OrderingService struct {
	src         core.Source
	dims        *dimensions.Provider
	orders      *cache.OrderCache
	store       cache.Store
	orderer     *layout.Skyline
	metrics     *observability.Metrics
	timeout     time.Duration
	fallbackTTL time.Duration
}

// New creates an OrderingService from its dependencies.
func New(deps Deps, cfg *Config) *OrderingService {
	timeout := DefaultRequestTimeout
	fallbackTTL := cache.DefaultFallbackTTL
	if cfg != nil {
		if cfg.RequestTimeout > 0 {
			timeout = cfg.RequestTimeout
		}
		if cfg.FallbackTTL > 0 {
			fallbackTTL = cfg.FallbackTTL
		}
	}
	return &OrderingService{
		src:         deps.Source,
		dims:        deps.Dimensions,
		orders:      deps.Orders,
		store:       deps.Store,
		orderer:     deps.Orderer,
		metrics:     deps.Metrics,
		timeout:     timeout,
		fallbackTTL: fallbackTTL,
	}
}

// GetOrder computes (or serves from cache) the 2-column and 4-column placement
// orders for an issue. The viewport name only selects the default column count
// echoed back to the client; both orders are always returned.
func (s *OrderingService) GetOrder(ctx context.Context, issueID int64, viewport string) (*core.OrderResponse, error) {
	if issueID <= 0 {
		return nil, core.NewInvalidRequestError("issueId must be a positive integer", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	profile := layout.ResolveProfile(viewport)

	refs, err := s.src.ListApproved(ctx, issueID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, core.NewComputationTimeoutError("submission listing timed out", err)
		}
		return s.serveFallback(ctx, issueID, profile.Columns,
			core.NewUpstreamUnavailableError("submission listing unavailable", err))
	}

	images, err := s.dims.ResolveBatch(ctx, refs)
	if err != nil {
		var le *core.LayoutError
		if errors.As(err, &le) && le.Type == core.ErrorTypeUpstreamUnavailable {
			return s.serveFallback(ctx, issueID, profile.Columns, le)
		}
		return nil, err
	}

	// calculationTimeMs covers cache lookup and ordering only, never the
	// upstream fetches above.
	start := time.Now()
	versionHash := layout.ContentVersion(images)

	var (
		narrow, wide       core.OrderingResult
		narrowHit, wideHit bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		narrow, narrowHit, err = s.cachedOrder(gctx, issueID, narrowColumns, versionHash, images)
		return err
	})
	g.Go(func() error {
		var err error
		wide, wideHit, err = s.cachedOrder(gctx, issueID, wideColumns, versionHash, images)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &core.OrderResponse{
		Order: core.OrderPair{
			OrderedIDs2Col: narrow.OrderedIDs,
			OrderedIDs4Col: wide.OrderedIDs,
			WideImageCount: narrow.WideImageCount,
			AvgAspectRatio: narrow.AvgAspectRatio,
			TotalItems:     narrow.TotalItems,
		},
		CacheInfo: core.CacheInfo{
			CalculatedAt: time.Now().UTC(),
			IssueID:      issueID,
			// A partial hit is reported as a miss to keep the
			// client-observable semantics simple.
			IsFromCache:       narrowHit && wideHit,
			DataVersionHash:   versionHash,
			CalculationTimeMs: float64(time.Since(start).Nanoseconds()) / 1e6,
			DefaultColumns:    profile.Columns,
		},
	}

	s.saveFallback(ctx, issueID, resp)
	return resp, nil
}

func (s *OrderingService) cachedOrder(ctx context.Context, issueID int64, columns int, versionHash string, images []core.SubmissionImage) (core.OrderingResult, bool, error) {
	key := cache.Key{IssueID: issueID, Columns: columns, VersionHash: versionHash}
	return s.orders.GetOrCompute(ctx, key, func(context.Context) (core.OrderingResult, error) {
		return s.orderer.Order(images, columns)
	})
}

// Health reports shallow liveness of the service and its collaborators.
func (s *OrderingService) Health(ctx context.Context) core.HealthStatus {
	status := core.HealthStatus{
		Status:       "ok",
		CacheBackend: s.store.Kind(),
		Upstream:     "ok",
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.src.Ping(pingCtx); err != nil {
		status.Upstream = "unreachable"
	}
	return status
}

// Debug returns operational introspection, including the current content
// version hash for an issue when one is given.
func (s *OrderingService) Debug(ctx context.Context, issueID int64) (*core.DebugInfo, error) {
	info := &core.DebugInfo{
		Version:           version.Version,
		CacheBackend:      s.store.Kind(),
		OrderCacheTTL:     s.orders.TTL().String(),
		DimensionCacheTTL: s.dims.TTL().String(),
		WideThreshold:     s.orderer.WideThreshold(),
	}
	if issueID <= 0 {
		return info, nil
	}

	info.IssueID = issueID
	refs, err := s.src.ListApproved(ctx, issueID)
	if err != nil {
		info.UpstreamError = err.Error()
		return info, nil
	}
	images, err := s.dims.ResolveBatch(ctx, refs)
	if err != nil {
		info.UpstreamError = err.Error()
		return info, nil
	}
	info.ContentVersionHash = layout.ContentVersion(images)
	return info, nil
}

// fallbackKey names the per-issue slot holding the last assembled response.
func fallbackKey(issueID int64) string {
	return fmt.Sprintf("fallback:%d", issueID)
}

// saveFallback stores the assembled response so a later upstream outage can
// replay it instead of returning 503.
func (s *OrderingService) saveFallback(ctx context.Context, issueID int64, resp *core.OrderResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.store.Set(ctx, fallbackKey(issueID), data, s.fallbackTTL); err != nil {
		slog.Warn("fallback slot write failed", "issue_id", issueID, "error", err)
	}
}

// serveFallback replays the last known good response for the issue, marked
// degraded. Without one, the original upstream error surfaces.
func (s *OrderingService) serveFallback(ctx context.Context, issueID int64, defaultColumns int, cause *core.LayoutError) (*core.OrderResponse, error) {
	data, ok, err := s.store.Get(ctx, fallbackKey(issueID))
	if err != nil || !ok {
		return nil, cause
	}

	var resp core.OrderResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, cause
	}

	resp.CacheInfo.IsFromCache = true
	resp.CacheInfo.Degraded = true
	resp.CacheInfo.DefaultColumns = defaultColumns
	resp.CacheInfo.CalculationTimeMs = 0

	s.metrics.DegradedResponse()
	slog.Warn("serving degraded response from fallback slot",
		"issue_id", issueID,
		"cause", cause.Message,
	)
	return &resp, nil
}
