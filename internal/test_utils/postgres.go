package test_utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moveplan/moveplan/internal/config"
	"github.com/moveplan/moveplan/internal/database"
	log "github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// PostgresTestsEnv must be set for the container-backed tests to run.
const PostgresTestsEnv = "MOVEPLAN_POSTGRES_TESTS"

// PostgresEnabled reports whether container-backed tests were requested.
func PostgresEnabled() bool {
	return os.Getenv(PostgresTestsEnv) != ""
}

func preparePostgresContainer() (*postgres.PostgresContainer, error) {
	ctx := context.Background()

	root, err := projectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %v", err)
	}

	pgContainer, err := postgres.Run(
		ctx, "postgres:18.1-alpine",
		postgres.WithInitScripts(filepath.Join(root, "dev", "init.sql")),
		postgres.WithDatabase("moveplan"),
		postgres.WithUsername("test_moveplan"),
		postgres.WithPassword("test_moveplan"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		log.Errorf("failed to start container: %s", err)
		return nil, err
	}
	return pgContainer, nil
}

// TestWithDB starts a Postgres container, applies migrations and snapshots it.
// The returned function opens a fresh pool against the container.
func TestWithDB() (*postgres.PostgresContainer, func() *pgxpool.Pool) {
	ctx := context.Background()

	container, err := preparePostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start postgres container: %v", err)
	}

	host, _ := container.Host(ctx)
	port, _ := container.MappedPort(ctx, "5432/tcp")

	log.Infof("Postgres container started at %s:%d", host, port.Int())

	cfg := config.Database{
		Host:   host,
		Port:   port.Int(),
		User:   "test_moveplan",
		Pass:   "test_moveplan",
		Name:   "moveplan",
		Schema: "moveplan",
	}

	if err := database.MigratePostgres(cfg); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	if err := container.Snapshot(ctx, postgres.WithSnapshotName("postgres-test-snapshot")); err != nil {
		log.Fatalf("Failed to snapshot postgres container: %v", err)
	}

	return container, func() *pgxpool.Pool {
		pool, err := database.OpenPostgres(cfg)
		if err != nil {
			log.Fatalf("Failed to open database connection: %v", err)
		}
		return pool
	}
}
