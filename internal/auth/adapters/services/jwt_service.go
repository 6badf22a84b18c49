package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"authkeeper/internal/auth/domain/services"
	svc "authkeeper/internal/auth/ports/services"
	"authkeeper/pkg/logger"
)

// Константы для работы с JWT.
const (
	methodIssue  = "Issue"
	methodVerify = "Verify"

	msgIssuingToken      = "issuing token"
	msgVerifyingToken    = "verifying token"
	msgTokenIssued       = "token issued successfully"
	msgTokenVerified     = "token verified successfully"
	msgTokenExpired      = "token has expired"
	msgTokenMalformed    = "token is malformed"
	msgTokenKindMismatch = "token kind mismatch"
	msgEmptySecretKey    = "empty secret key provided"

	//nolint:gosec
	errSigningToken       = "error signing token"
	errCtxIssuingToken    = "issuing token"
	errCtxVerifyingToken  = "verifying token"
	errCtxInvalidLifetime = "invalid token lifetime"
)

// ErrInvalidAlgorithm - токен подписан неожиданным алгоритмом.
var ErrInvalidAlgorithm = errors.New("invalid signing algorithm")

// Claims - представление доменных claims для библиотеки JWT.
type Claims struct {
	UserID string             `json:"user_id"`
	Email  string             `json:"email"`
	Kind   services.TokenKind `json:"type"`
	jwt.RegisteredClaims
}

// ServiceJWT подписывает и проверяет токены по HS256.
type ServiceJWT struct {
	secretKey []byte
	now       func() time.Time
}

// Option настраивает ServiceJWT.
type Option func(*ServiceJWT)

// WithClock подменяет источник времени для выпуска и проверки.
func WithClock(now func() time.Time) Option {
	return func(s *ServiceJWT) {
		s.now = now
	}
}

// NewJWT создает кодек токенов.
func NewJWT(secretKey string, opts ...Option) svc.ClaimsCodec {
	s := &ServiceJWT{
		secretKey: []byte(secretKey),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func domainToJWTClaims(claims services.JWTClaims) Claims {
	return Claims{
		UserID: claims.UserID,
		Email:  claims.Email,
		Kind:   claims.Kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        claims.TokenID,
			Subject:   claims.UserID,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	}
}

func jwtToDomainClaims(claims *Claims) *services.JWTClaims {
	result := &services.JWTClaims{
		UserID:  claims.UserID,
		Email:   claims.Email,
		Kind:    claims.Kind,
		TokenID: claims.ID,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}
	return result
}

// Issue подписывает claims; iat, exp и jti заполняются здесь, значения вызывающего игнорируются.
// Возвращаемый срок совпадает с exp внутри токена с точностью до секунды.
func (s *ServiceJWT) Issue(ctx context.Context, claims services.JWTClaims, lifetime time.Duration) (string, time.Time, error) {
	log := logger.Log(ctx).With(
		zap.String("method", methodIssue),
		zap.String("userID", claims.UserID),
		zap.String("kind", string(claims.Kind)),
	)
	log.Debug(ctx, msgIssuingToken)

	if len(s.secretKey) == 0 {
		log.Error(ctx, msgEmptySecretKey)
		return "", time.Time{}, fmt.Errorf("%s: %w: empty secret key", errCtxIssuingToken, services.ErrGeneratingJWTToken)
	}
	if lifetime <= 0 {
		return "", time.Time{}, fmt.Errorf("%s: %w: %s", errCtxIssuingToken, services.ErrGeneratingJWTToken, errCtxInvalidLifetime)
	}
	if claims.UserID == "" || !claims.Kind.Valid() {
		return "", time.Time{}, fmt.Errorf("%s: %w: incomplete claims", errCtxIssuingToken, services.ErrGeneratingJWTToken)
	}

	now := s.now()
	claims.IssuedAt = jwt.NewNumericDate(now).Time
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(lifetime)).Time
	claims.TokenID = uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, domainToJWTClaims(claims))

	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		log.Error(ctx, errSigningToken, zap.Error(err))
		return "", time.Time{}, fmt.Errorf("%s: %w: %w", errCtxIssuingToken, services.ErrGeneratingJWTToken, err)
	}

	log.Debug(ctx, msgTokenIssued, zap.Time("expiresAt", claims.ExpiresAt))
	return signed, claims.ExpiresAt, nil
}

// Verify проверяет подпись, срок действия и вид токена.
func (s *ServiceJWT) Verify(ctx context.Context, tokenString string, expected services.TokenKind) (*services.JWTClaims, error) {
	log := logger.Log(ctx).With(zap.String("method", methodVerify), zap.String("expectedKind", string(expected)))
	log.Debug(ctx, msgVerifyingToken)

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug(ctx, msgTokenExpired)
			return nil, fmt.Errorf("%s: %w", errCtxVerifyingToken, services.ErrExpiredToken)
		}
		log.Debug(ctx, msgTokenMalformed, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", errCtxVerifyingToken, services.ErrMalformedToken, err)
	}

	if claims.UserID == "" || claims.Subject != claims.UserID || !claims.Kind.Valid() {
		log.Debug(ctx, msgTokenMalformed)
		return nil, fmt.Errorf("%s: %w: incomplete claims", errCtxVerifyingToken, services.ErrMalformedToken)
	}

	if claims.Kind != expected {
		log.Debug(ctx, msgTokenKindMismatch, zap.String("kind", string(claims.Kind)))
		return nil, fmt.Errorf("%s: %w: got %s", errCtxVerifyingToken, services.ErrTokenKindMismatch, claims.Kind)
	}

	log.Debug(ctx, msgTokenVerified, zap.String("userID", claims.UserID))
	return jwtToDomainClaims(&claims), nil
}

func (s *ServiceJWT) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAlgorithm, token.Header["alg"])
	}
	if len(s.secretKey) == 0 {
		return nil, fmt.Errorf("%w: empty secret key", services.ErrMalformedToken)
	}
	return s.secretKey, nil
}
