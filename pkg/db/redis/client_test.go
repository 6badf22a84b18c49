package redis_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authkeeper/pkg/db/redis"
)

func TestNewClient(t *testing.T) {
	t.Run("connects to running server", func(t *testing.T) {
		srv := miniredis.RunT(t)
		port, err := strconv.Atoi(srv.Port())
		require.NoError(t, err)

		cfg := redis.DefaultConfig()
		cfg.Host = srv.Host()
		cfg.Port = port

		client, err := redis.NewClient(context.Background(), cfg)
		require.NoError(t, err)
		require.NotNil(t, client.RawClient())
		assert.NoError(t, client.Close())
	})

	t.Run("fails when server is unreachable", func(t *testing.T) {
		srv := miniredis.RunT(t)
		port, err := strconv.Atoi(srv.Port())
		require.NoError(t, err)
		srv.Close()

		cfg := &redis.Config{Host: "127.0.0.1", Port: port, Timeout: 200 * time.Millisecond}

		client, err := redis.NewClient(context.Background(), cfg)
		require.Error(t, err)
		assert.Nil(t, client)
	})
}
