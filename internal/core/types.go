// Package core provides the shared types and interfaces for the layout service.
package core

import "time"

// SubmissionRef identifies an approved submission and the image it carries.
// This is the shape returned by the upstream submission listing.
type SubmissionRef struct {
	ID      int64 `json:"id"`
	ImageID int64 `json:"imageId"`
}

// ImageMeta holds the pixel dimensions of a stored image.
type ImageMeta struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SubmissionImage is a submission with its resolved image dimensions.
// Immutable once built for a given computation.
type SubmissionImage struct {
	ID     int64
	Width  int
	Height int
}

// AspectRatio returns width divided by height. Returns 0 for a degenerate
// zero-height record so it never divides by zero.
func (s SubmissionImage) AspectRatio() float64 {
	if s.Height <= 0 {
		return 0
	}
	return float64(s.Width) / float64(s.Height)
}

// OrderingResult is the outcome of one skyline run for a single column count.
// OrderedIDs is always a permutation of the input submission IDs.
type OrderingResult struct {
	OrderedIDs     []int64 `json:"orderedIds"`
	WideImageCount int     `json:"wideImageCount"`
	AvgAspectRatio float64 `json:"avgAspectRatio"`
	TotalItems     int     `json:"totalItems"`
}

// OrderPair combines the 2-column and 4-column orderings served to the
// frontend. The aggregate stats are identical for both column counts since
// they derive from the same image set.
type OrderPair struct {
	OrderedIDs2Col []int64 `json:"orderedIds2col"`
	OrderedIDs4Col []int64 `json:"orderedIds4col"`
	WideImageCount int     `json:"wideImageCount"`
	AvgAspectRatio float64 `json:"avgAspectRatio"`
	TotalItems     int     `json:"totalItems"`
}

// CacheInfo carries cache provenance metadata for a served ordering.
// IsFromCache is true only when both column-count results were cache hits.
type CacheInfo struct {
	CalculatedAt      time.Time `json:"calculatedAt"`
	IssueID           int64     `json:"issueId"`
	IsFromCache       bool      `json:"isFromCache"`
	DataVersionHash   string    `json:"dataVersionHash"`
	CalculationTimeMs float64   `json:"calculationTimeMs"`
	Degraded          bool      `json:"degraded,omitempty"`
	DefaultColumns    int       `json:"defaultColumns,omitempty"`
}

// OrderResponse is the full payload of GET /api/layout/order.
type OrderResponse struct {
	Order     OrderPair `json:"order"`
	CacheInfo CacheInfo `json:"cacheInfo"`
}

// HealthStatus reports shallow liveness of the service and its collaborators.
type HealthStatus struct {
	Status       string `json:"status"`
	CacheBackend string `json:"cacheBackend"`
	Upstream     string `json:"upstream"`
}

// DebugInfo exposes operational introspection for one issue.
type DebugInfo struct {
	Version            string  `json:"version"`
	CacheBackend       string  `json:"cacheBackend"`
	OrderCacheTTL      string  `json:"orderCacheTtl"`
	DimensionCacheTTL  string  `json:"dimensionCacheTtl"`
	WideThreshold      float64 `json:"wideThreshold"`
	IssueID            int64   `json:"issueId,omitempty"`
	ContentVersionHash string  `json:"contentVersionHash,omitempty"`
	UpstreamError      string  `json:"upstreamError,omitempty"`
}
