// Package testutil provides test helpers for PostgreSQL-backed packages.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/storage/postgres"
)

// postgresImage matches the server version the migrations are written for.
const postgresImage = "postgres:16-alpine"

// arenaTables lists every table created by migrations/, children first.
var arenaTables = []string{
	"pve_fights_actions_used",
	"pve_fights_results",
	"fights_actions_used",
	"fights_results",
	"fights_actions",
	"profiles",
}

// Database is a migrated PostgreSQL instance running in a container.
type Database struct {
	container testcontainers.Container
	Config    config.DatabaseConfig
	Pool      *pgxpool.Pool
}

// StartDatabase runs a PostgreSQL container, connects to it and applies
// every migration. It does not depend on a *testing.T so a TestMain can
// share one instance across a package.
//
// Postcondition: on error nothing is left running.
func StartDatabase(ctx context.Context) (*Database, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "arena",
				"POSTGRES_PASSWORD": "arena",
				"POSTGRES_DB":       "arena",
			},
			// the server restarts once after initdb
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("starting %s: %w", postgresImage, err)
	}
	db := &Database{container: container}
	if err := db.connect(ctx); err != nil {
		db.Terminate(ctx)
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Terminate(ctx)
		return nil, err
	}
	return db, nil
}

func (db *Database) connect(ctx context.Context) error {
	host, err := db.container.Host(ctx)
	if err != nil {
		return fmt.Errorf("container host: %w", err)
	}
	port, err := db.container.MappedPort(ctx, "5432")
	if err != nil {
		return fmt.Errorf("container port: %w", err)
	}
	db.Config = config.DatabaseConfig{
		Enabled:         true,
		Host:            host,
		Port:            port.Int(),
		User:            "arena",
		Password:        "arena",
		Name:            "arena",
		SSLMode:         "disable",
		MaxConns:        8,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}
	pool, err := pgxpool.New(ctx, db.Config.DSN())
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("pinging: %w", err)
	}
	db.Pool = pool
	return nil
}

// Migrate applies migrations/ up to the latest version.
func (db *Database) Migrate() error {
	dir, err := MigrationsDir()
	if err != nil {
		return err
	}
	m, err := migrate.New("file://"+dir, db.Config.DSN())
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// Store wraps the pool in the arena store.
func (db *Database) Store() *postgres.Store {
	return postgres.NewStore(db.Pool)
}

// Truncate empties every arena table and resets their sequences.
func (db *Database) Truncate(ctx context.Context) error {
	for _, table := range arenaTables {
		if _, err := db.Pool.Exec(ctx, "TRUNCATE "+table+" RESTART IDENTITY CASCADE"); err != nil {
			return fmt.Errorf("truncating %s: %w", table, err)
		}
	}
	return nil
}

// Terminate closes the pool and removes the container.
func (db *Database) Terminate(ctx context.Context) {
	if db.Pool != nil {
		db.Pool.Close()
	}
	_ = db.container.Terminate(ctx)
}

// NewDatabase starts a migrated database owned by t. The test is skipped
// under -short or when no container runtime is reachable.
func NewDatabase(t *testing.T) *Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	start := time.Now()
	db, err := StartDatabase(ctx)
	if err != nil {
		t.Fatalf("%v [%s]", err, time.Since(start))
	}
	t.Logf("postgres ready [%s]", time.Since(start))
	t.Cleanup(func() { db.Terminate(ctx) })
	return db
}

// NewPool is NewDatabase for tests that only need the pool.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	return NewDatabase(t).Pool
}

// MigrationsDir walks up from the working directory to the module root and
// returns its migrations/ directory.
func MigrationsDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "migrations"), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found above working directory")
		}
		dir = parent
	}
}
