package layout

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"

	"masonry/internal/core"
)

// ContentVersion computes a deterministic fingerprint over the resolved
// (id, width, height) tuples of an issue. The tuples are sorted by id before
// hashing so two identical image sets hash identically regardless of
// submission order. The hash doubles as the cache-invalidation key: any
// change to the set or to a single image's dimensions produces a new version.
func ContentVersion(images []core.SubmissionImage) string {
	sorted := make([]core.SubmissionImage, len(images))
	copy(sorted, images)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	digest := xxhash.New()
	var buf [8]byte
	for _, img := range sorted {
		binary.BigEndian.PutUint64(buf[:], uint64(img.ID))
		_, _ = digest.Write(buf[:])
		binary.BigEndian.PutUint64(buf[:], uint64(img.Width))
		_, _ = digest.Write(buf[:])
		binary.BigEndian.PutUint64(buf[:], uint64(img.Height))
		_, _ = digest.Write(buf[:])
	}

	return fmt.Sprintf("%016x", digest.Sum64())
}
