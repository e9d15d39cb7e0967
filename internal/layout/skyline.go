package layout

import (
	"sort"

	"masonry/internal/core"
)

// DefaultWideThreshold is the aspect ratio at or above which an image is
// flagged for multi-column visual spanning. Matches the product's panorama
// cutoff; override via MASONRY_WIDE_THRESHOLD.
const DefaultWideThreshold = 2.0

// Skyline produces column-balanced, deterministic placement orders using a
// greedy shortest-column heuristic: each image goes to the column with the
// smallest accumulated estimated height, ties broken by lowest column index.
type Skyline struct {
	wideThreshold float64
}

// NewSkyline creates an orderer with the given wide-image threshold.
// A non-positive threshold falls back to DefaultWideThreshold.
func NewSkyline(wideThreshold float64) *Skyline {
	if wideThreshold <= 0 {
		wideThreshold = DefaultWideThreshold
	}
	return &Skyline{wideThreshold: wideThreshold}
}

// WideThreshold returns the configured wide-image aspect ratio cutoff.
func (s *Skyline) WideThreshold() float64 {
	return s.wideThreshold
}

// Order places the images into columns and returns the resulting ordering.
//
// OrderedIDs encodes placement column-major: all of column 0 top to bottom,
// then column 1, and so on. This encoding is a presentation contract consumed
// by the rendering layer and must stay stable across calls.
//
// Images are processed by submission id ascending so identical inputs always
// yield bit-identical results regardless of input slice order. The estimated
// rendered height of an image is columnWidth / aspectRatio for the nominal
// column width of the matching viewport profile.
func (s *Skyline) Order(images []core.SubmissionImage, columns int) (core.OrderingResult, error) {
	if columns < 1 {
		return core.OrderingResult{}, core.NewInvalidConfigurationError("columnCount must be >= 1")
	}

	if len(images) == 0 {
		return core.OrderingResult{
			OrderedIDs:     []int64{},
			WideImageCount: 0,
			AvgAspectRatio: 0,
			TotalItems:     0,
		}, nil
	}

	sorted := make([]core.SubmissionImage, len(images))
	copy(sorted, images)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	columnWidth := float64(ProfileForColumns(columns).ColumnWidth)

	heights := make([]float64, columns)
	assignments := make([][]int64, columns)

	wideCount := 0
	ratioSum := 0.0

	for _, img := range sorted {
		ratio := img.AspectRatio()
		ratioSum += ratio
		if ratio >= s.wideThreshold {
			wideCount++
		}

		col := shortestColumn(heights)
		assignments[col] = append(assignments[col], img.ID)

		// A degenerate zero ratio gets a fixed tall estimate so it still
		// occupies a slot instead of collapsing the column math.
		estHeight := columnWidth
		if ratio > 0 {
			estHeight = columnWidth / ratio
		}
		heights[col] += estHeight
	}

	ordered := make([]int64, 0, len(sorted))
	for _, col := range assignments {
		ordered = append(ordered, col...)
	}

	return core.OrderingResult{
		OrderedIDs:     ordered,
		WideImageCount: wideCount,
		AvgAspectRatio: ratioSum / float64(len(sorted)),
		TotalItems:     len(sorted),
	}, nil
}

// shortestColumn returns the index of the column with the smallest accumulated
// height, preferring the lowest index on ties.
func shortestColumn(heights []float64) int {
	best := 0
	for i := 1; i < len(heights); i++ {
		if heights[i] < heights[best] {
			best = i
		}
	}
	return best
}
