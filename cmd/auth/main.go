// Package main реализует точку входа службы аутентификации.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	httpadapter "authkeeper/internal/auth/adapters/http"
	"authkeeper/internal/auth/adapters/postgres"
	redisadapter "authkeeper/internal/auth/adapters/redis"
	"authkeeper/internal/auth/adapters/services"
	"authkeeper/internal/auth/app"
	"authkeeper/internal/auth/config"
	"authkeeper/internal/auth/db"
	"authkeeper/internal/auth/ports/repositories"
	"authkeeper/pkg/db/redis"
	"authkeeper/pkg/logger"
	"authkeeper/pkg/retry"
	"authkeeper/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "AUTH_LOGGER_MODE"
	EnvLoggerLevel = "AUTH_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitDB               = "failed to initialize database"
	ErrInitRedis            = "failed to initialize redis session store"
	ErrStartHTTP            = "failed to start HTTP server"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "authentication service started"
	LogServiceShutdownDone = "authentication service shutdown complete"
	LogClosingDB           = "closing database connections"
	LogClosingRedis        = "closing redis connections"
	LogStoppingHTTP        = "stopping HTTP server"
	LogStoppingSweeper     = "stopping session sweeper"
	LogInitRepo            = "initializing repositories"
	LogInitServices        = "initializing services"
	LogInitUseCases        = "initializing use cases"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
)

const migrationsDir = "migrations/auth"

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		database, err := retry.Do(ctx, "postgres", retry.DefaultPolicy(), func(ctx context.Context) (*db.DB, error) {
			return db.New(ctx, &cfg.Postgres, migrationsDir)
		})
		if err != nil {
			log.Error(ctx, ErrInitDB, zap.Error(err))
			exitCode = 1
			return
		}

		hooks := []shutdown.Hook{
			func(ctx context.Context) error {
				log.Info(ctx, LogClosingDB)
				database.Close(ctx)
				return nil
			},
		}

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		log.Info(ctx, LogInitRepo, zap.String("session_store", cfg.Sessions.Store))
		repoFactory := postgres.NewRepositoryFactory(database.Pool())
		userRepo := repoFactory.UserRepository()

		var sessionRepo repositories.SessionRepository
		switch cfg.Sessions.Store {
		case config.SessionStoreRedis:
			redisClient, err := retry.Do(ctx, "redis", retry.DefaultPolicy(), func(ctx context.Context) (*redis.Client, error) {
				return redis.NewClient(ctx, cfg.Redis.ClientConfig())
			})
			if err != nil {
				log.Error(ctx, ErrInitRedis, zap.Error(err))
				database.Close(ctx)
				exitCode = 1
				return
			}
			sessionRepo = redisadapter.NewSessionRepository(redisClient.RawClient(),
				redisadapter.WithKeyPrefix(cfg.Redis.KeyPrefix))
			hooks = append(hooks, func(ctx context.Context) error {
				log.Info(ctx, LogClosingRedis)
				return redisClient.Close()
			})
		default:
			sessionRepo = repoFactory.SessionRepository()
		}

		log.Info(ctx, LogInitServices)
		serviceFactory := services.NewServiceFactory(
			cfg.JWT.SecretKey,
			cfg.JWT.AccessTokenTTL,
			cfg.JWT.RefreshTokenTTL,
			cfg.JWT.BCryptCost,
		)

		log.Info(ctx, LogInitUseCases)
		authUseCase := app.NewAuthUseCase(
			userRepo,
			sessionRepo,
			serviceFactory.PasswordService(),
			serviceFactory.ClaimsCodec(),
			serviceFactory.TokenIssuer(),
		)
		userUseCase := app.NewUserUseCase(userRepo, sessionRepo, serviceFactory.PasswordService())

		sweepCtx, stopSweeper := context.WithCancel(ctx)
		sweeper := app.NewSessionSweeper(sessionRepo, cfg.Sessions.SweepInterval, nil)
		go sweeper.Run(sweepCtx)
		hooks = append(hooks, func(ctx context.Context) error {
			log.Info(ctx, LogStoppingSweeper)
			stopSweeper()
			return nil
		})

		log.Info(ctx, LogInitHTTPServer)
		server := fiber.New(fiber.Config{
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		})
		httpadapter.SetupRouter(server, authUseCase, userUseCase)

		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
		go func() {
			if err := server.Listen(cfg.HTTP.GetAddress()); err != nil {
				log.Error(ctx, ErrStartHTTP, zap.Error(err))
			}
		}()

		hooks = append(hooks, func(ctx context.Context) error {
			log.Info(ctx, LogStoppingHTTP)
			return server.ShutdownWithContext(ctx)
		})

		shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(), hooks...)

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
