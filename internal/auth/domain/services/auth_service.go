package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"authkeeper/internal/auth/domain/entities"
)

// ErrUnauthorized - общий вердикт отказа в аутентификации.
var ErrUnauthorized = errors.New("unauthorized")

// Ошибки домена аутентификации. Все отказы клиенту оборачивают ErrUnauthorized.
var (
	ErrInvalidCredentials        = fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	ErrAccountInactive           = fmt.Errorf("account is not active: %w", ErrUnauthorized)
	ErrInvalidAccessToken        = fmt.Errorf("invalid access token: %w", ErrUnauthorized)
	ErrInvalidRefreshToken       = fmt.Errorf("invalid refresh token: %w", ErrUnauthorized)
	ErrRefreshTokenNotRecognized = fmt.Errorf("refresh token not recognized: %w", ErrUnauthorized)
	ErrRefreshTokenExpired       = fmt.Errorf("refresh token expired: %w", ErrUnauthorized)
	ErrTokenSubjectMismatch      = fmt.Errorf("tokens belong to different subjects: %w", ErrUnauthorized)
	ErrSessionNotFound           = fmt.Errorf("refresh session not found: %w", ErrUnauthorized)
	ErrEmailAlreadyExists        = errors.New("user with this email already exists")
	ErrUsernameAlreadyExists     = errors.New("user with this username already exists")
	ErrSessionConflict           = errors.New("refresh session with this token already exists")
	ErrTokenGenerationFailed     = errors.New("failed to generate authentication tokens")
)

// TokenPair представляет пару токенов аутентификации.
type TokenPair struct {
	UserID                string
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
}

// Предельные длины метаданных устройства в символах, по ширине столбцов refresh_sessions.
const (
	MaxUserAgentLength = 512
	MaxIPAddressLength = 64
)

// DeviceInfo описывает клиента, открывшего сессию.
type DeviceInfo struct {
	UserAgent string
	IPAddress string
}

// Bounded возвращает копию с корректным UTF-8 и полями, усеченными до предельной длины.
func (d DeviceInfo) Bounded() DeviceInfo {
	return DeviceInfo{
		UserAgent: truncateRunes(d.UserAgent, MaxUserAgentLength),
		IPAddress: truncateRunes(d.IPAddress, MaxIPAddressLength),
	}
}

func truncateRunes(value string, limit int) string {
	value = strings.ToValidUTF8(value, "")
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	return string([]rune(value)[:limit])
}

// RefreshSession - серверная запись, подтверждающая действующий refresh токен.
// Запись не изменяется: ротация удаляет старую и создает новую.
type RefreshSession struct {
	ID        string
	UserID    string
	Token     string
	Device    DeviceInfo
	CreatedAt time.Time
	ExpiresAt time.Time
}

// AuthResult - результат входа или регистрации.
type AuthResult struct {
	User   *entities.User
	Tokens *TokenPair
}
