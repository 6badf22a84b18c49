package services

import (
	"errors"
	"time"
)

// Ошибки проверки и выпуска токенов.
var (
	ErrMalformedToken     = errors.New("malformed token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrTokenKindMismatch  = errors.New("unexpected token kind")
	ErrGeneratingJWTToken = errors.New("failed to generate JWT token")
)

// TokenKind различает access и refresh токены.
type TokenKind string

// Виды токенов.
const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Valid сообщает, является ли значение известным видом токена.
func (k TokenKind) Valid() bool {
	return k == TokenKindAccess || k == TokenKindRefresh
}

// JWTClaims - содержимое подписанного токена.
type JWTClaims struct {
	UserID    string
	Email     string
	Kind      TokenKind
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
