package config

import (
	"fmt"
	"time"
)

// JWTConfig содержит настройки для JWT токенов.
type JWTConfig struct {
	SecretKey       string        `yaml:"secret_key" env:"AUTH_JWT_SECRET_KEY" env-required:"true"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"AUTH_JWT_ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"AUTH_JWT_REFRESH_TOKEN_TTL" env-default:"168h"`
	BCryptCost      int           `yaml:"bcrypt_cost" env:"AUTH_JWT_BCRYPT_COST" env-default:"10"`
}

// Validate проверяет сроки жизни токенов.
func (c *JWTConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("%w: empty JWT secret key", ErrInvalidConfig)
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("%w: token lifetimes must be positive", ErrInvalidConfig)
	}
	if c.AccessTokenTTL >= c.RefreshTokenTTL {
		return fmt.Errorf("%w: access token lifetime must be shorter than refresh token lifetime", ErrInvalidConfig)
	}
	return nil
}
