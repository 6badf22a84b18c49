package config

import (
	"time"

	"authkeeper/pkg/db/redis"
)

// RedisConfig содержит настройки подключения к Redis.
type RedisConfig struct {
	Host      string        `yaml:"host" env:"AUTH_REDIS_HOST" env-default:"localhost"`
	Port      int           `yaml:"port" env:"AUTH_REDIS_PORT" env-default:"6379"`
	Password  string        `yaml:"password" env:"AUTH_REDIS_PASSWORD" env-default:""`
	DB        int           `yaml:"db" env:"AUTH_REDIS_DB" env-default:"0"`
	PoolSize  int           `yaml:"pool_size" env:"AUTH_REDIS_POOL_SIZE" env-default:"10"`
	Timeout   time.Duration `yaml:"timeout" env:"AUTH_REDIS_TIMEOUT" env-default:"5s"`
	KeyPrefix string        `yaml:"key_prefix" env:"AUTH_REDIS_KEY_PREFIX" env-default:"authkeeper"`
}

// ClientConfig преобразует настройки в конфигурацию клиента.
func (r *RedisConfig) ClientConfig() *redis.Config {
	return &redis.Config{
		Host:     r.Host,
		Port:     r.Port,
		Password: r.Password,
		DB:       r.DB,
		PoolSize: r.PoolSize,
		Timeout:  r.Timeout,
	}
}
