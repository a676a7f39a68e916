//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startContainer starts a container and registers its termination.
func startContainer(t *testing.T, req testcontainers.ContainerRequest) (host, port string) {
	t.Helper()
	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err = c.Host(ctx)
	require.NoError(t, err)
	mapped, err := c.MappedPort(ctx, req.ExposedPorts[0])
	require.NoError(t, err)
	return host, mapped.Port()
}

// exerciseBackends runs the full command cycle against the given cache and history settings.
func exerciseBackends(t *testing.T, env map[string]string) {
	t.Helper()
	env["HOME"] = t.TempDir()

	_, err := runGreenplate(t, env, "cache", "clear")
	require.NoError(t, err)
	_, err = runGreenplate(t, env, "history", "clear")
	require.NoError(t, err)

	out, err := runGreenplate(t, env, "rank", "--limit", "2", "something", "warm")
	require.NoError(t, err)
	assert.Contains(t, out, "Lentil Soup")

	out, err = runGreenplate(t, env, "score", "7,31")
	require.NoError(t, err)
	assert.Contains(t, out, "Chickpea Salad")

	out, err = runGreenplate(t, env, "cache", "status")
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	out, err = runGreenplate(t, env, "history", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Runs: 2")

	_, err = runGreenplate(t, env, "history", "migrate", "--target-version", "0")
	require.NoError(t, err)
	_, err = runGreenplate(t, env, "history", "migrate")
	require.NoError(t, err)
}

// TestGreenplateWithMySQL tests the CLI with MySQL cache and history backends.
func TestGreenplateWithMySQL(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "greenplate",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	})

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/greenplate?parseTime=true", host, port)
	exerciseBackends(t, map[string]string{
		"GREENPLATE_CACHE_BACKEND":      "mysql",
		"GREENPLATE_CACHE_DB_CONNECT":   connStr,
		"GREENPLATE_HISTORY_BACKEND":    "mysql",
		"GREENPLATE_HISTORY_DB_CONNECT": connStr,
	})
}

// TestGreenplateWithPostgres tests the CLI with PostgreSQL cache and history backends.
func TestGreenplateWithPostgres(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	})

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port)
	exerciseBackends(t, map[string]string{
		"GREENPLATE_CACHE_BACKEND":      "postgresql",
		"GREENPLATE_CACHE_DB_CONNECT":   connStr,
		"GREENPLATE_HISTORY_BACKEND":    "postgresql",
		"GREENPLATE_HISTORY_DB_CONNECT": connStr,
	})
}

// TestGreenplateWithRedis tests the CLI with a Redis suggestion cache and SQLite history.
func TestGreenplateWithRedis(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	})

	exerciseBackends(t, map[string]string{
		"GREENPLATE_CACHE_BACKEND":    "redis",
		"GREENPLATE_CACHE_DB_CONNECT": fmt.Sprintf("redis://%s:%s/0", host, port),
		"GREENPLATE_HISTORY_BACKEND":  "sqlite",
	})
}
