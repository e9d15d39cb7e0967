//go:build integration

package integration

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	pgContainer *postgres.PostgresContainer
	pgPool      *pgxpool.Pool
	pgURL       string

	testCtx    context.Context
	cancelFunc context.CancelFunc
)

// schema mirrors the submission application's tables this service reads from.
const schema = `
CREATE TABLE images (
	id     BIGINT PRIMARY KEY,
	width  INTEGER NOT NULL,
	height INTEGER NOT NULL
);

CREATE TABLE submissions (
	id       BIGINT PRIMARY KEY,
	issue_id BIGINT NOT NULL,
	image_id BIGINT NOT NULL REFERENCES images(id),
	status   TEXT NOT NULL
);
`

// TestMain sets up and tears down the test container.
func TestMain(m *testing.M) {
	testCtx, cancelFunc = context.WithTimeout(context.Background(), 10*time.Minute)

	if err := setupPostgreSQL(testCtx); err != nil {
		log.Printf("Container setup failed: %v", err)
		cleanup()
		cancelFunc()
		os.Exit(1)
	}

	code := m.Run()

	cleanup()
	cancelFunc()
	os.Exit(code)
}

// setupPostgreSQL starts a PostgreSQL container, creates the schema and the
// connection pool.
func setupPostgreSQL(ctx context.Context) error {
	var err error

	log.Println("Starting PostgreSQL container...")
	pgContainer, err = postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("masonry_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to start PostgreSQL container: %w", err)
	}

	pgURL, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fmt.Errorf("failed to get PostgreSQL connection string: %w", err)
	}

	pgPool, err = pgxpool.New(ctx, pgURL)
	if err != nil {
		return fmt.Errorf("failed to create PostgreSQL pool: %w", err)
	}

	if err := pgPool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	if _, err := pgPool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	log.Println("PostgreSQL container ready")
	return nil
}

// cleanup terminates the container and closes the pool.
func cleanup() {
	if pgPool != nil {
		pgPool.Close()
	}

	if pgContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := pgContainer.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate PostgreSQL container: %v", err)
		}
	}
}

// GetTestContext returns the shared test context.
func GetTestContext() context.Context {
	return testCtx
}

// GetPostgreSQLURL returns the PostgreSQL connection URL.
func GetPostgreSQLURL() string {
	return pgURL
}

// GetPostgreSQLPool returns the PostgreSQL connection pool for seeding.
func GetPostgreSQLPool() *pgxpool.Pool {
	return pgPool
}
