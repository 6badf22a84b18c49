// Package config содержит конфигурацию для аутентификационного сервиса.
package config

import (
	"context"
	"errors"
	"os"

	"go.uber.org/zap"

	pkgconfig "authkeeper/pkg/config"
	"authkeeper/pkg/logger"
)

// Константы сообщений для конфигурации.
const (
	ServiceName          = "auth"
	LogConfigLoaded      = "authentication service configuration"
	ErrInvalidConfigPref = "invalid configuration"
)

// ErrInvalidConfig возвращается, если значения конфигурации несовместимы.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config представляет полную конфигурацию приложения.
type Config struct {
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	HTTP     HTTPConfig     `yaml:"http"`
	JWT      JWTConfig      `yaml:"jwt"`
	Sessions SessionsConfig `yaml:"sessions"`
	Logging  LoggingConfig  `yaml:"logging"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
}

// Load загружает конфигурацию из переменных окружения и необязательного
// .env файла, путь к которому задан в CONFIG_ENV_FILE.
func Load(ctx context.Context) (*Config, error) {
	log := logger.Log(ctx)

	cfg, err := pkgconfig.Load[Config](ctx, ServiceName, os.Getenv(pkgconfig.EnvFileVar))
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		log.Error(ctx, ErrInvalidConfigPref, zap.Error(err))
		return nil, err
	}

	log.Info(ctx, LogConfigLoaded,
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("http_address", cfg.HTTP.GetAddress()),
		zap.String("session_store", cfg.Sessions.Store),
		zap.Duration("access_token_ttl", cfg.JWT.AccessTokenTTL),
		zap.Duration("refresh_token_ttl", cfg.JWT.RefreshTokenTTL),
		zap.Duration("sweep_interval", cfg.Sessions.SweepInterval),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode),
		zap.Duration("shutdown_timeout", cfg.Shutdown.Timeout))

	return cfg, nil
}

// Validate проверяет согласованность значений.
func (c *Config) Validate() error {
	if err := c.JWT.Validate(); err != nil {
		return err
	}
	return c.Sessions.Validate()
}
