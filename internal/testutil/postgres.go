// Package testutil starts the throwaway Postgres used by integration tests.
package testutil

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/segyhp/installment-engine/internal/database"
)

// PostgresDB is a migrated database inside a container.
type PostgresDB struct {
	Container *postgres.PostgresContainer
	DSN       string
	DB        *sqlx.DB
}

// StartPostgres runs a postgres container and applies the repository
// migrations to it. Callers must Close the result.
func StartPostgres(ctx context.Context) (*PostgresDB, error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("installments_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	pg := &PostgresDB{Container: container}

	pg.DSN, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		pg.Close()
		return nil, fmt.Errorf("postgres connection string: %w", err)
	}

	if err = database.RunMigrations("file://"+migrationsDir(), pg.DSN); err != nil {
		pg.Close()
		return nil, err
	}

	pg.DB, err = sqlx.Connect("postgres", pg.DSN)
	if err != nil {
		pg.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return pg, nil
}

// Reset empties every table. Payments and reminders go with their plans.
func (pg *PostgresDB) Reset() {
	pg.DB.MustExec("DELETE FROM installment_plans")
}

func (pg *PostgresDB) Close() {
	if pg.DB != nil {
		pg.DB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pg.Container.Terminate(ctx); err != nil {
		fmt.Printf("warning: failed to terminate postgres container: %v\n", err)
	}
}

// Suite shares one database between the tests of a package.
type Suite struct {
	pg   *PostgresDB
	skip string
}

// NewSuite starts Postgres unless tests run in short mode. It must be called
// from TestMain; a database that cannot start makes every test skip.
func NewSuite() *Suite {
	if !flag.Parsed() {
		flag.Parse()
	}
	if testing.Short() {
		return &Suite{skip: "integration tests disabled in short mode"}
	}

	pg, err := StartPostgres(context.Background())
	if err != nil {
		return &Suite{skip: err.Error()}
	}
	return &Suite{pg: pg}
}

// Run runs the tests and tears the database down.
func (s *Suite) Run(m *testing.M) int {
	code := m.Run()
	if s.pg != nil {
		s.pg.Close()
	}
	return code
}

// DB returns the emptied database, or skips t when there is none.
func (s *Suite) DB(t *testing.T) *sqlx.DB {
	t.Helper()
	if s.skip != "" {
		t.Skip(s.skip)
	}
	s.pg.Reset()
	return s.pg.DB
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}
