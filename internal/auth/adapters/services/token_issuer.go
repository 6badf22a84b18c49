package services

import (
	"context"
	"fmt"
	"time"

	"authkeeper/internal/auth/domain/services"
	svc "authkeeper/internal/auth/ports/services"
)

const (
	errCtxIssuingAccessToken  = "issuing access token"
	errCtxIssuingRefreshToken = "issuing refresh token"
)

// Issuer выпускает пары токенов поверх ClaimsCodec.
type Issuer struct {
	codec      svc.ClaimsCodec
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewIssuer создает выпускающий сервис с независимыми сроками жизни токенов.
func NewIssuer(codec svc.ClaimsCodec, accessTTL, refreshTTL time.Duration) svc.TokenIssuer {
	return &Issuer{
		codec:      codec,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssuePair выпускает access и refresh токены с настроенными сроками.
func (i *Issuer) IssuePair(ctx context.Context, userID, email string) (*services.TokenPair, error) {
	accessToken, accessExpires, err := i.IssueAccess(ctx, userID, email)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshExpires, err := i.IssueRefresh(ctx, userID, email, i.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &services.TokenPair{
		UserID:                userID,
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  accessExpires,
		RefreshTokenExpiresAt: refreshExpires,
	}, nil
}

// IssueAccess выпускает access токен.
func (i *Issuer) IssueAccess(ctx context.Context, userID, email string) (string, time.Time, error) {
	token, expiresAt, err := i.codec.Issue(ctx, services.JWTClaims{
		UserID: userID,
		Email:  email,
		Kind:   services.TokenKindAccess,
	}, i.accessTTL)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", errCtxIssuingAccessToken, err)
	}
	return token, expiresAt, nil
}

// IssueRefresh выпускает refresh токен с явно заданным сроком жизни.
func (i *Issuer) IssueRefresh(ctx context.Context, userID, email string, lifetime time.Duration) (string, time.Time, error) {
	token, expiresAt, err := i.codec.Issue(ctx, services.JWTClaims{
		UserID: userID,
		Email:  email,
		Kind:   services.TokenKindRefresh,
	}, lifetime)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", errCtxIssuingRefreshToken, err)
	}
	return token, expiresAt, nil
}

// RefreshTTL возвращает настроенный срок жизни refresh токена.
func (i *Issuer) RefreshTTL() time.Duration {
	return i.refreshTTL
}
