//go:build integration

// Package testutil starts a throwaway PostgreSQL for integration tests and applies migrations.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	once      sync.Once
	sharedDSN string
	container *postgres.PostgresContainer
	initErr   error
)

// StartPostgres boots one container per test binary and returns its DSN.
func StartPostgres(ctx context.Context) (string, error) {
	once.Do(func() {
		sharedDSN, initErr = startAndMigrate(ctx)
	})

	return sharedDSN, initErr
}

// Stop terminates the shared container. Call it from TestMain after m.Run.
func Stop(ctx context.Context) error {
	if container == nil {
		return nil
	}

	return container.Terminate(ctx)
}

func startAndMigrate(ctx context.Context) (string, error) {
	var err error

	container, err = postgres.Run(ctx, "postgres:17",
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return "", fmt.Errorf("could not start postgres container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return "", fmt.Errorf("failed to get connection string: %w", err)
	}

	_, b, _, _ := runtime.Caller(0)
	migrationsPath := filepath.ToSlash(filepath.Join(filepath.Dir(b), "../../migrations"))

	migrator, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return "", fmt.Errorf("failed to create migrator for '%s': %w", migrationsPath, err)
	}

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return "", fmt.Errorf("failed to run migrations: %w", err)
	}

	return dsn, nil
}

// Connect opens a pool against the shared container.
func Connect(t *testing.T, dsn string) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Fatalf("failed to connect to test postgres: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}

// Truncate empties every table and resets identities.
func Truncate(t *testing.T, db *sqlx.DB) {
	t.Helper()

	_, err := db.Exec(`TRUNCATE TABLE task_delay_media, task_delay_reasons, repair_task_media, repair_tasks,
		repair_delay_media, repair_delay_reasons, repair_media, repairs, request_ratings, request_history, request_files, request_covers,
		service_requests, moderator_group_members, moderator_group_categories, moderator_group_cities,
		moderator_group_regions, moderator_groups, request_categories, cities, regions, users
		RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}
