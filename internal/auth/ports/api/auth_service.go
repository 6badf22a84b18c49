package api

import (
	"context"

	"authkeeper/internal/auth/domain/services"
)

// AuthUseCase определяет основной порт для операций аутентификации.
type AuthUseCase interface {
	Register(ctx context.Context, email, username, password string, device services.DeviceInfo) (*services.AuthResult, error)

	Login(ctx context.Context, email, password string, device services.DeviceInfo) (*services.AuthResult, error)

	// RefreshTokens обменивает refresh токен на новую пару. accessToken необязателен.
	RefreshTokens(ctx context.Context, refreshToken, accessToken string, device services.DeviceInfo) (*services.TokenPair, error)

	Logout(ctx context.Context, accessToken, refreshToken string) error

	LogoutAll(ctx context.Context, accessToken string) (int64, error)

	ListSessions(ctx context.Context, accessToken string) ([]*services.RefreshSession, error)

	Authenticate(ctx context.Context, accessToken string) (*services.JWTClaims, error)
}
