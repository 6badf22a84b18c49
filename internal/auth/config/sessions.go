package config

import (
	"fmt"
	"time"
)

// Хранилища refresh-сессий.
const (
	SessionStorePostgres = "postgres"
	SessionStoreRedis    = "redis"
)

// SessionsConfig содержит настройки хранилища refresh-сессий.
type SessionsConfig struct {
	Store         string        `yaml:"store" env:"AUTH_SESSIONS_STORE" env-default:"postgres"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"AUTH_SESSIONS_SWEEP_INTERVAL" env-default:"10m"`
}

// Validate проверяет выбранное хранилище.
func (s *SessionsConfig) Validate() error {
	switch s.Store {
	case SessionStorePostgres, SessionStoreRedis:
	default:
		return fmt.Errorf("%w: unknown session store %q", ErrInvalidConfig, s.Store)
	}
	if s.SweepInterval <= 0 {
		return fmt.Errorf("%w: sweep interval must be positive", ErrInvalidConfig)
	}
	return nil
}
