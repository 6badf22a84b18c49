package db_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authkeeper/internal/auth/config"
	"authkeeper/internal/auth/db"
)

func TestMigrationsSource(t *testing.T) {
	t.Run("relative path is resolved", func(t *testing.T) {
		src, err := db.MigrationsSource("migrations/auth")
		require.NoError(t, err)

		abs, err := filepath.Abs("migrations/auth")
		require.NoError(t, err)
		assert.Equal(t, "file://"+filepath.ToSlash(abs), src)
	})

	t.Run("absolute path is kept", func(t *testing.T) {
		dir := t.TempDir()

		src, err := db.MigrationsSource(dir)
		require.NoError(t, err)
		assert.Equal(t, "file://"+filepath.ToSlash(dir), src)
	})
}

func TestNewFailsOnMissingMigrations(t *testing.T) {
	cfg := &config.PostgresConfig{
		Host:     "127.0.0.1",
		Port:     1,
		User:     "postgres",
		Password: "postgres",
		Database: "auth",
		MinConn:  1,
		MaxConn:  2,
	}

	database, err := db.New(context.Background(), cfg, filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Nil(t, database)
	assert.True(t, strings.HasPrefix(err.Error(), db.ErrDBMigrations))
}
