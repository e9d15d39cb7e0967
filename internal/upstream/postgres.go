package upstream

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"masonry/internal/core"
)

// PostgresSource reads approved submissions and image metadata directly from
// the submission application's database. Read-only; the CRUD app owns writes.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates a pooled read connection to the submission database.
func NewPostgresSource(ctx context.Context, url string, maxConns int32) (*PostgresSource, error) {
	if url == "" {
		return nil, fmt.Errorf("postgres URL is required")
	}

	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres URL: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	} else {
		poolCfg.MaxConns = 10
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresSource{pool: pool}, nil
}

// ListApproved returns the approved submissions for an issue in id order.
func (s *PostgresSource) ListApproved(ctx context.Context, issueID int64) ([]core.SubmissionRef, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, image_id FROM submissions WHERE issue_id = $1 AND status = 'approved' ORDER BY id`,
		issueID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved submissions for issue %d: %w", issueID, err)
	}
	defer rows.Close()

	var refs []core.SubmissionRef
	for rows.Next() {
		var ref core.SubmissionRef
		if err := rows.Scan(&ref.ID, &ref.ImageID); err != nil {
			return nil, fmt.Errorf("failed to scan submission row: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading submission rows: %w", err)
	}
	return refs, nil
}

// ImageMeta returns the stored pixel dimensions for an image.
func (s *PostgresSource) ImageMeta(ctx context.Context, imageID int64) (core.ImageMeta, error) {
	var meta core.ImageMeta
	err := s.pool.QueryRow(ctx,
		`SELECT width, height FROM images WHERE id = $1`,
		imageID,
	).Scan(&meta.Width, &meta.Height)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.ImageMeta{}, ErrNotFound
		}
		return core.ImageMeta{}, fmt.Errorf("failed to fetch image %d metadata: %w", imageID, err)
	}
	return meta, nil
}

// Ping verifies database connectivity.
func (s *PostgresSource) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *PostgresSource) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
