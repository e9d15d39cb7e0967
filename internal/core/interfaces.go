package core

import "context"

// Source is the read-side view of the submission application's data.
// Implementations must be safe for concurrent use.
type Source interface {
	// ListApproved returns the approved submissions for an issue in id order.
	ListApproved(ctx context.Context, issueID int64) ([]SubmissionRef, error)

	// ImageMeta returns the pixel dimensions for a stored image.
	ImageMeta(ctx context.Context, imageID int64) (ImageMeta, error)

	// Ping verifies the upstream is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the source.
	Close() error
}
