package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authkeeper/internal/auth/config"
	"authkeeper/pkg/logger"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET_KEY", "secret")

		cfg, err := config.Load(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenTTL)
		assert.Equal(t, 168*time.Hour, cfg.JWT.RefreshTokenTTL)
		assert.Equal(t, 10, cfg.JWT.BCryptCost)
		assert.Equal(t, config.SessionStorePostgres, cfg.Sessions.Store)
		assert.Equal(t, 10*time.Minute, cfg.Sessions.SweepInterval)
		assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.GetAddress())
		assert.Equal(t, "authkeeper", cfg.Redis.KeyPrefix)
		assert.Equal(t, 10*time.Second, cfg.Shutdown.GetTimeout())
		assert.Equal(t, "disable", cfg.Postgres.SSLMode)
		assert.Equal(t, logger.Development, cfg.Logging.GetEnvironment())
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET_KEY", "secret")
		t.Setenv("AUTH_JWT_ACCESS_TOKEN_TTL", "5m")
		t.Setenv("AUTH_JWT_REFRESH_TOKEN_TTL", "24h")
		t.Setenv("AUTH_SESSIONS_STORE", "redis")
		t.Setenv("AUTH_REDIS_HOST", "cache")
		t.Setenv("AUTH_REDIS_PORT", "6380")
		t.Setenv("AUTH_LOGGER_MODE", "production")

		cfg, err := config.Load(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTokenTTL)
		assert.Equal(t, 24*time.Hour, cfg.JWT.RefreshTokenTTL)
		assert.Equal(t, config.SessionStoreRedis, cfg.Sessions.Store)
		assert.Equal(t, logger.Production, cfg.Logging.GetEnvironment())

		rc := cfg.Redis.ClientConfig()
		assert.Equal(t, "cache", rc.Host)
		assert.Equal(t, 6380, rc.Port)
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET_KEY", "")

		_, err := config.Load(context.Background())
		require.Error(t, err)
	})

	t.Run("unknown store", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET_KEY", "secret")
		t.Setenv("AUTH_SESSIONS_STORE", "memcached")

		_, err := config.Load(context.Background())
		require.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("access outlives refresh", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET_KEY", "secret")
		t.Setenv("AUTH_JWT_ACCESS_TOKEN_TTL", "2h")
		t.Setenv("AUTH_JWT_REFRESH_TOKEN_TTL", "1h")

		_, err := config.Load(context.Background())
		require.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func TestPostgresConfig(t *testing.T) {
	cfg := config.PostgresConfig{
		Host:     "db",
		Port:     5432,
		User:     "u",
		Password: "p",
		Database: "auth",
	}

	assert.Equal(t, "host=db port=5432 user=u password=p dbname=auth sslmode=disable", cfg.GetDSN())
	assert.Equal(t, "postgres://u:p@db:5432/auth?sslmode=disable", cfg.GetConnectionURL())

	cfg.Password = "p@ss/word"
	cfg.SSLMode = "require"
	assert.Equal(t, "postgres://u:p%40ss%2Fword@db:5432/auth?sslmode=require", cfg.GetConnectionURL())
}
