package services

import (
	"context"
	"time"

	"authkeeper/internal/auth/domain/services"
)

// ClaimsCodec подписывает и проверяет токены. Не обращается к хранилищу сессий.
type ClaimsCodec interface {
	Issue(ctx context.Context, claims services.JWTClaims, lifetime time.Duration) (string, time.Time, error)

	Verify(ctx context.Context, token string, expected services.TokenKind) (*services.JWTClaims, error)
}

// TokenIssuer выпускает access и refresh токены с настроенными сроками жизни.
type TokenIssuer interface {
	IssuePair(ctx context.Context, userID, email string) (*services.TokenPair, error)

	IssueAccess(ctx context.Context, userID, email string) (string, time.Time, error)

	// IssueRefresh принимает срок жизни явно, чтобы ротация сохраняла исходный дедлайн.
	IssueRefresh(ctx context.Context, userID, email string, lifetime time.Duration) (string, time.Time, error)

	RefreshTTL() time.Duration
}
