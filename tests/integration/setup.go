//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"studio-booking/internal/infra/db"
	"studio-booking/internal/pkg/config"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	postgresOnce      sync.Once
	postgresContainer testcontainers.Container

	dbUser     = "test"
	dbPassword = "testpass"
)

// newTestPool starts the shared Postgres container once, creates a database
// private to the calling test and applies the schema to it.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	host, port := startPostgres(t)
	dbName := "testdb_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	adminDSN := fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
		dbUser, dbPassword, host, port.Port())
	adminPool, err := pgxpool.New(ctx, adminDSN)
	require.NoError(t, err)
	defer adminPool.Close()

	_, err = adminPool.Exec(ctx, "CREATE DATABASE "+dbName)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropCtx, dropCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer dropCancel()

		dropPool, err := pgxpool.New(dropCtx, adminDSN)
		if err != nil {
			return
		}
		defer dropPool.Close()
		_, _ = dropPool.Exec(dropCtx, "DROP DATABASE IF EXISTS "+dbName)
	})

	pool, closePool, err := db.Connect(ctx, config.DBConfig{
		Host:     host,
		Port:     port.Port(),
		User:     dbUser,
		Password: dbPassword,
		DBName:   dbName,
		SSLMode:  "disable",
		TimeZone: "Asia/Jakarta",
	})
	require.NoError(t, err)
	t.Cleanup(closePool)

	applySchema(t, pool)
	return pool
}

func applySchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	sqlBytes, err := os.ReadFile(filepath.Join("..", "..", "db", "migrations", "0001_init.sql"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, err = pool.Exec(ctx, string(sqlBytes))
	require.NoError(t, err)
}

func startPostgres(t *testing.T) (string, nat.Port) {
	t.Helper()

	postgresOnce.Do(func() {
		req := testcontainers.ContainerRequest{
			Image:        "postgres:17",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     dbUser,
				"POSTGRES_PASSWORD": dbPassword,
				"POSTGRES_DB":       "postgres",
			},
			Tmpfs: map[string]string{
				"/var/lib/postgresql/data": "rw,size=256m",
			},
			Cmd: []string{
				"postgres",
				"-c", "fsync=off",
				"-c", "synchronous_commit=off",
			},
			WaitingFor: wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
				return fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
					dbUser, dbPassword, host, port.Port())
			}).WithStartupTimeout(60 * time.Second),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
		defer cancel()

		var err error
		postgresContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		require.NoError(t, err)

		t.Cleanup(func() {
			termCtx, termCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer termCancel()
			_ = postgresContainer.Terminate(termCtx)
		})
	})

	ctx := context.Background()
	port, err := postgresContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err)
	return host, port
}

func seedService(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		INSERT INTO services (id, name, base_price, discount_value, is_active)
		VALUES ($1, 'Prewedding Gold', 500000, 50000, true)`, id)
	require.NoError(t, err)
}
