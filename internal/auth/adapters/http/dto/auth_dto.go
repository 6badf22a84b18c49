// Package dto содержит объекты передачи данных HTTP API.
package dto

import (
	"time"

	"authkeeper/internal/auth/domain/entities"
	"authkeeper/internal/auth/domain/services"
)

// RegisterRequest содержит данные для регистрации пользователя.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest содержит данные для входа пользователя.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest содержит данные для обновления токенов.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest содержит данные для выхода пользователя.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UpdateUserRequest содержит изменяемые поля профиля. Отсутствующее поле не меняется.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
}

// TokenResponse содержит данные о токенах.
type TokenResponse struct {
	UserID                string    `json:"user_id"`
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}

// UserProfileResponse содержит данные профиля пользователя.
type UserProfileResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse - ответ на регистрацию и вход.
type AuthResponse struct {
	User   UserProfileResponse `json:"user"`
	Tokens TokenResponse       `json:"tokens"`
}

// SessionResponse описывает одну активную сессию без строки токена.
type SessionResponse struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LogoutAllResponse сообщает число закрытых сессий.
type LogoutAllResponse struct {
	Removed int64 `json:"removed"`
}

// ErrorResponse - тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewTokenResponse преобразует пару токенов.
func NewTokenResponse(pair *services.TokenPair) TokenResponse {
	return TokenResponse{
		UserID:                pair.UserID,
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
	}
}

// NewUserProfileResponse преобразует профиль пользователя.
func NewUserProfileResponse(user *entities.User) UserProfileResponse {
	return UserProfileResponse{
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt,
	}
}

// NewUsersResponse преобразует страницу пользователей.
func NewUsersResponse(users []*entities.User) []UserProfileResponse {
	out := make([]UserProfileResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserProfileResponse(u))
	}
	return out
}

// NewAuthResponse преобразует результат входа или регистрации.
func NewAuthResponse(result *services.AuthResult) AuthResponse {
	return AuthResponse{
		User:   NewUserProfileResponse(result.User),
		Tokens: NewTokenResponse(result.Tokens),
	}
}

// NewSessionsResponse преобразует список сессий.
func NewSessionsResponse(sessions []*services.RefreshSession) []SessionResponse {
	out := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, SessionResponse{
			ID:        s.ID,
			UserAgent: s.Device.UserAgent,
			IPAddress: s.Device.IPAddress,
			CreatedAt: s.CreatedAt,
			ExpiresAt: s.ExpiresAt,
		})
	}
	return out
}
