// Package services предоставляет реализации сервисов аутентификации:
// кодек JWT, выпуск пар токенов и хэширование паролей.
package services

import (
	"time"

	"authkeeper/internal/auth/ports/services"
)

// ServiceFactory создает все необходимые сервисы для аутентификации.
type ServiceFactory struct {
	passwordService services.PasswordService
	codec           services.ClaimsCodec
	issuer          services.TokenIssuer
}

// NewServiceFactory создает фабрику сервисов. Секрет и сроки жизни неизменны после старта.
func NewServiceFactory(
	jwtSecretKey string,
	accessTokenTTL, refreshTokenTTL time.Duration,
	bcryptCost int,
	opts ...Option,
) *ServiceFactory {
	codec := NewJWT(jwtSecretKey, opts...)
	return &ServiceFactory{
		passwordService: NewBcrypt(bcryptCost),
		codec:           codec,
		issuer:          NewIssuer(codec, accessTokenTTL, refreshTokenTTL),
	}
}

// PasswordService возвращает сервис для работы с паролями.
func (f *ServiceFactory) PasswordService() services.PasswordService {
	return f.passwordService
}

// ClaimsCodec возвращает кодек токенов.
func (f *ServiceFactory) ClaimsCodec() services.ClaimsCodec {
	return f.codec
}

// TokenIssuer возвращает сервис выпуска токенов.
func (f *ServiceFactory) TokenIssuer() services.TokenIssuer {
	return f.issuer
}
