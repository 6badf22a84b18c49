package logger_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"authkeeper/pkg/logger"
)

func TestFromContext(t *testing.T) {
	t.Run("logger stored in context is returned", func(t *testing.T) {
		testLogger, err := logger.NewLogger(logger.Development, "debug")
		require.NoError(t, err)

		ctx := logger.NewContext(context.Background(), testLogger)

		retrieved, err := logger.FromContext(ctx)
		require.NoError(t, err)
		assert.Same(t, testLogger, retrieved)
	})

	t.Run("missing logger is reported", func(t *testing.T) {
		retrieved, err := logger.FromContext(context.Background())
		require.ErrorIs(t, err, logger.ErrLoggerNotFound)
		assert.Nil(t, retrieved)
	})

	t.Run("derived context keeps logger", func(t *testing.T) {
		testLogger, err := logger.NewLogger(logger.Production, "info")
		require.NoError(t, err)

		type ctxKey struct{}
		ctx := context.WithValue(logger.NewContext(context.Background(), testLogger), ctxKey{}, "value")

		retrieved, err := logger.FromContext(ctx)
		require.NoError(t, err)
		assert.Same(t, testLogger, retrieved)
	})
}

func TestLog(t *testing.T) {
	t.Run("context logger wins over global", func(t *testing.T) {
		globalLog, err := logger.NewLogger(logger.Development, "info")
		require.NoError(t, err)
		logger.SetGlobalLogger(globalLog)
		defer logger.SetGlobalLogger(nil)

		ctxLog, err := logger.NewLogger(logger.Development, "debug")
		require.NoError(t, err)

		assert.Same(t, ctxLog, logger.Log(logger.NewContext(context.Background(), ctxLog)))
		assert.Same(t, globalLog, logger.Log(context.Background()))
	})

	t.Run("fallback logger when nothing configured", func(t *testing.T) {
		logger.SetGlobalLogger(nil)

		log := logger.Log(context.Background())
		require.NotNil(t, log)
		assert.NotPanics(t, func() {
			log.Info(context.Background(), "fallback message")
		})
	})
}

func TestInitGlobalLogger(t *testing.T) {
	logger.SetGlobalLogger(nil)
	defer logger.SetGlobalLogger(nil)

	require.NoError(t, logger.InitGlobalLogger(logger.Production))
	first := logger.Log(context.Background())

	require.NoError(t, logger.InitGlobalLoggerWithLevel(logger.Development, "debug"))
	second := logger.Log(context.Background())

	assert.Same(t, first, second, "already initialized global logger must be kept")
}

func TestNewLogger(t *testing.T) {
	levels := []string{"debug", "info", "warn", "warning", "error", "invalid", ""}

	for _, env := range []logger.Environment{logger.Development, logger.Production} {
		for _, level := range levels {
			t.Run(string(env)+"/level="+level, func(t *testing.T) {
				log, err := logger.NewLogger(env, level)
				require.NoError(t, err)
				require.NotNil(t, log)
			})
		}
	}
}

func TestLoggerMethods(t *testing.T) {
	log, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)

	t.Run("With returns a new instance", func(t *testing.T) {
		child := log.With(zap.String("key", "value"), zap.Int("count", 1))
		assert.NotSame(t, log, child)
	})

	t.Run("logging with request id does not panic", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "req-1")
		assert.NotPanics(t, func() {
			log.Debug(ctx, "debug")
			log.Info(ctx, "info")
			log.Warn(ctx, "warn")
			log.Error(ctx, "error", zap.String("custom", "field"))
			_ = log.Sync()
		})
	})
}

func TestRequestID(t *testing.T) {
	t.Run("explicit request id is kept", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "req-42")

		id, ok := logger.GetRequestID(ctx)
		require.True(t, ok)
		assert.Equal(t, "req-42", id)
	})

	t.Run("empty request id is generated as uuid", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "")

		id, ok := logger.GetRequestID(ctx)
		require.True(t, ok)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})

	t.Run("missing request id", func(t *testing.T) {
		_, ok := logger.GetRequestID(context.Background())
		assert.False(t, ok)
	})

	t.Run("WithRequestID only derives when id present", func(t *testing.T) {
		log, err := logger.NewLogger(logger.Development, "info")
		require.NoError(t, err)

		assert.Same(t, log, log.WithRequestID(context.Background()))
		assert.NotSame(t, log, log.WithRequestID(logger.NewRequestIDContext(context.Background(), "x")))
	})
}
