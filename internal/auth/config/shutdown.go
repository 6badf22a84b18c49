package config

import (
	"time"
)

// ShutdownConfig содержит настройки для graceful shutdown.
type ShutdownConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"AUTH_GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// GetTimeout возвращает время на выполнение хуков завершения.
func (s *ShutdownConfig) GetTimeout() time.Duration {
	return s.Timeout
}
