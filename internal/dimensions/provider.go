// Package dimensions resolves image pixel dimensions through a 24-hour cache.
package dimensions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"masonry/internal/cache"
	"masonry/internal/core"
	"masonry/internal/observability"
)

// batchConcurrency bounds parallel upstream fetches on a cold cache.
const batchConcurrency = 8

// Provider resolves width/height for submission images, caching results
// independently of the ordering cache. A cache hit never re-triggers the
// upstream fetch.
type Provider struct {
	src     core.Source
	store   cache.Store
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewProvider creates a dimension provider over the given source and store.
// A non-positive ttl falls back to cache.DefaultDimensionTTL. metrics may be nil.
func NewProvider(src core.Source, store cache.Store, ttl time.Duration, metrics *observability.Metrics) *Provider {
	if ttl <= 0 {
		ttl = cache.DefaultDimensionTTL
	}
	return &Provider{src: src, store: store, ttl: ttl, metrics: metrics}
}

// TTL returns the configured time-to-live for dimension entries.
func (p *Provider) TTL() time.Duration {
	return p.ttl
}

// Resolve returns the pixel dimensions for an image, from cache when possible.
// Fails with a dimension-unavailable error when the record cannot be resolved.
func (p *Provider) Resolve(ctx context.Context, imageID int64) (core.ImageMeta, error) {
	key := fmt.Sprintf("dim:%d", imageID)

	if data, ok, err := p.store.Get(ctx, key); err == nil && ok {
		var meta core.ImageMeta
		if err := json.Unmarshal(data, &meta); err == nil {
			return meta, nil
		}
		slog.Warn("discarding undecodable dimension entry", "image_id", imageID)
	}

	meta, err := p.src.ImageMeta(ctx, imageID)
	if err != nil {
		return core.ImageMeta{}, core.NewDimensionUnavailableError(imageID, err)
	}
	if meta.Width <= 0 || meta.Height <= 0 {
		return core.ImageMeta{}, core.NewDimensionUnavailableError(
			imageID, fmt.Errorf("malformed metadata: %dx%d", meta.Width, meta.Height))
	}

	if data, err := json.Marshal(meta); err == nil {
		if err := p.store.Set(ctx, key, data, p.ttl); err != nil {
			slog.Warn("dimension cache write failed", "image_id", imageID, "error", err)
		}
	}
	return meta, nil
}

// ResolveBatch resolves dimensions for a set of submissions. A failure for an
// individual image does not abort the batch: the image is excluded and logged,
// so a layout with N-1 images beats a total failure. Only when every image
// fails does the batch surface an upstream-unavailable error.
func (p *Provider) ResolveBatch(ctx context.Context, refs []core.SubmissionRef) ([]core.SubmissionImage, error) {
	if len(refs) == 0 {
		return []core.SubmissionImage{}, nil
	}

	var (
		mu     sync.Mutex
		images = make([]core.SubmissionImage, 0, len(refs))
		failed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for _, ref := range refs {
		g.Go(func() error {
			meta, err := p.Resolve(gctx, ref.ImageID)
			if err != nil {
				p.metrics.DimensionFailure()
				slog.Warn("excluding image from ordering",
					"submission_id", ref.ID,
					"image_id", ref.ImageID,
					"error", err,
				)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			mu.Lock()
			images = append(images, core.SubmissionImage{
				ID:     ref.ID,
				Width:  meta.Width,
				Height: meta.Height,
			})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, core.NewComputationTimeoutError("dimension resolution timed out", err)
	}
	if failed == len(refs) {
		return nil, core.NewUpstreamUnavailableError(
			fmt.Sprintf("all %d images failed dimension resolution", len(refs)), nil)
	}

	sort.Slice(images, func(i, j int) bool { return images[i].ID < images[j].ID })
	return images, nil
}
