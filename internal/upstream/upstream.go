// Package upstream implements the read-side adapters over the submission
// application's data: a direct Postgres reader and an HTTP client for the
// internal CRUD API. Both satisfy core.Source.
package upstream

import "errors"

// ErrNotFound is returned when an image record does not exist upstream.
var ErrNotFound = errors.New("upstream: record not found")
