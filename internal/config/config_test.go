package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"STORE_BACKEND", "REMOTE_DRIVER", "LOCAL_PATH", "DATABASE_URL", "DB_PASSWORD", "SERVER_HOST", "SERVER_PORT", "MONITOR_INTERVAL", "RUN_MIGRATIONS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "taskboard", cfg.AppName)
	assert.Equal(t, BackendLocal, cfg.Store.Backend)
	assert.Equal(t, "./data/taskboard.db", cfg.Store.LocalPath)
	assert.Equal(t, time.Second, cfg.Store.LockTimeout)
	assert.Equal(t, 10*time.Second, cfg.Monitor.Interval)
	assert.False(t, cfg.Migrations.Enabled)
	assert.False(t, cfg.UsesPostgres())
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Contains(t, cfg.Database.URL, "postgres://taskboard:")
}

func TestLoadRemoteDrivers(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Remote")
	t.Setenv("REMOTE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/tb")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "30")
	t.Setenv("MONITOR_INTERVAL", "1m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.UsesPostgres())
	assert.Equal(t, "postgres://u:p@db:5432/tb", cfg.Database.URL)
	assert.Equal(t, 30*time.Second, cfg.Context.ShutdownTimeout)
	assert.Equal(t, time.Minute, cfg.Monitor.Interval)
}

func TestLoadRejectsIncompleteSelections(t *testing.T) {
	t.Run("aztables without connection string", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "remote")
		t.Setenv("REMOTE_DRIVER", "aztables")
		_, err := Load()
		assert.ErrorContains(t, err, "AZURE_TABLES_CONNECTION_STRING")
	})
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "remote")
		t.Setenv("REMOTE_DRIVER", "cassandra")
		_, err := Load()
		assert.ErrorContains(t, err, "REMOTE_DRIVER")
	})
	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "cloud")
		_, err := Load()
		assert.ErrorContains(t, err, "STORE_BACKEND")
	})
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("SERVER_MAX_CONN", "many")
	t.Setenv("RUN_MIGRATIONS", "maybe")
	t.Setenv("LOCAL_LOCK_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.HTTP.MaxConn)
	assert.False(t, cfg.Migrations.Enabled)
	assert.Equal(t, time.Second, cfg.Store.LockTimeout)
}
