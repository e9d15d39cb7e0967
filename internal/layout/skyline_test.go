package layout

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"masonry/internal/core"
)

func TestOrderEmptyInput(t *testing.T) {
	s := NewSkyline(2.0)

	res, err := s.Order(nil, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.OrderedIDs) != 0 {
		t.Errorf("expected empty ordering, got %v", res.OrderedIDs)
	}
	if res.WideImageCount != 0 || res.AvgAspectRatio != 0 || res.TotalItems != 0 {
		t.Errorf("expected zero stats, got %+v", res)
	}
}

func TestOrderSingleImage(t *testing.T) {
	s := NewSkyline(2.0)

	res, err := s.Order([]core.SubmissionImage{{ID: 42, Width: 800, Height: 600}}, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(res.OrderedIDs, []int64{42}) {
		t.Errorf("expected [42], got %v", res.OrderedIDs)
	}
	if res.TotalItems != 1 {
		t.Errorf("expected 1 item, got %d", res.TotalItems)
	}
}

func TestOrderInvalidColumnCount(t *testing.T) {
	s := NewSkyline(2.0)

	_, err := s.Order([]core.SubmissionImage{{ID: 1, Width: 800, Height: 600}}, 0)
	if err == nil {
		t.Fatal("expected error for columnCount 0")
	}

	var le *core.LayoutError
	if !errors.As(err, &le) {
		t.Fatalf("expected *core.LayoutError, got %T", err)
	}
	if le.Type != core.ErrorTypeInvalidConfiguration {
		t.Errorf("expected invalid configuration error, got %s", le.Type)
	}
}

// Mixed-ratio scenario: the panorama (ratio 3.0) is flagged wide and the
// ordering is a permutation of the input ids.
func TestOrderWideFlaggingScenario(t *testing.T) {
	s := NewSkyline(2.0)
	images := []core.SubmissionImage{
		{ID: 1, Width: 800, Height: 600},
		{ID: 2, Width: 600, Height: 900},
		{ID: 3, Width: 1200, Height: 400},
	}

	res, err := s.Order(images, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.WideImageCount != 1 {
		t.Errorf("expected 1 wide image, got %d", res.WideImageCount)
	}
	if res.TotalItems != 3 {
		t.Errorf("expected 3 items, got %d", res.TotalItems)
	}
	assertPermutation(t, res.OrderedIDs, []int64{1, 2, 3})

	// Placement by id ascending: 1 -> col0, 2 -> col1 (shorter), 3 -> col0
	// (0.75 < 1.5 of col1 in unit heights). Column-major concatenation:
	if !reflect.DeepEqual(res.OrderedIDs, []int64{1, 3, 2}) {
		t.Errorf("expected column-major [1 3 2], got %v", res.OrderedIDs)
	}
}

func TestOrderDeterminism(t *testing.T) {
	s := NewSkyline(2.0)
	images := makeImages(50)

	first, err := s.Order(images, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Shuffle the input; the orderer sorts by id so output must not change.
	rng := rand.New(rand.NewSource(7))
	shuffled := make([]core.SubmissionImage, len(images))
	copy(shuffled, images)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	second, err := s.Order(shuffled, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("ordering not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestOrderPermutationInvariant(t *testing.T) {
	s := NewSkyline(2.0)

	for _, columns := range []int{1, 2, 3, 4, 6} {
		images := makeImages(37)
		res, err := s.Order(images, columns)
		if err != nil {
			t.Fatalf("columns=%d: unexpected error: %v", columns, err)
		}
		if res.TotalItems != len(res.OrderedIDs) {
			t.Errorf("columns=%d: totalItems %d != len(orderedIds) %d", columns, res.TotalItems, len(res.OrderedIDs))
		}
		want := make([]int64, 0, len(images))
		for _, img := range images {
			want = append(want, img.ID)
		}
		assertPermutation(t, res.OrderedIDs, want)
	}
}

func TestOrderTieBreaksLowestColumn(t *testing.T) {
	s := NewSkyline(2.0)
	// Identical square images: columns fill left to right, then wrap.
	images := []core.SubmissionImage{
		{ID: 1, Width: 500, Height: 500},
		{ID: 2, Width: 500, Height: 500},
		{ID: 3, Width: 500, Height: 500},
		{ID: 4, Width: 500, Height: 500},
	}

	res, err := s.Order(images, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(res.OrderedIDs, []int64{1, 3, 2, 4}) {
		t.Errorf("expected [1 3 2 4] for equal heights, got %v", res.OrderedIDs)
	}
}

func TestOrderDegenerateDimensions(t *testing.T) {
	s := NewSkyline(2.0)
	images := []core.SubmissionImage{
		{ID: 1, Width: 800, Height: 0},
		{ID: 2, Width: 800, Height: 600},
	}

	res, err := s.Order(images, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalItems != 2 {
		t.Errorf("degenerate image should still be placed, got %d items", res.TotalItems)
	}
	assertPermutation(t, res.OrderedIDs, []int64{1, 2})
}

func TestNewSkylineDefaultThreshold(t *testing.T) {
	s := NewSkyline(0)
	if s.WideThreshold() != DefaultWideThreshold {
		t.Errorf("expected default threshold %f, got %f", DefaultWideThreshold, s.WideThreshold())
	}
}

// makeImages builds a deterministic set of varied-ratio images.
func makeImages(n int) []core.SubmissionImage {
	rng := rand.New(rand.NewSource(42))
	images := make([]core.SubmissionImage, 0, n)
	for i := 1; i <= n; i++ {
		images = append(images, core.SubmissionImage{
			ID:     int64(i),
			Width:  400 + rng.Intn(1600),
			Height: 300 + rng.Intn(1200),
		})
	}
	return images
}

func assertPermutation(t *testing.T, got, want []int64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d ids, want %d", len(got), len(want))
	}
	seen := make(map[int64]int, len(got))
	for _, id := range got {
		seen[id]++
	}
	for _, id := range want {
		if seen[id] != 1 {
			t.Fatalf("id %d appears %d times in %v", id, seen[id], got)
		}
	}
}
