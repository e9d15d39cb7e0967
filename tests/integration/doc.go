// Package integration provides integration tests for the Postgres upstream
// adapter. These tests use a real database via testcontainers.
//
// Run with: go test -tags=integration ./tests/integration/...
package integration
