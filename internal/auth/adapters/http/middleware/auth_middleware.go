package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"authkeeper/internal/auth/ports/api"
	"authkeeper/pkg/logger"
)

// Константы для логирования.
const (
	LogAuthMiddleware = "auth middleware"

	ErrorNoAuthHeader       = "no authorization header provided"
	ErrorInvalidTokenFormat = "invalid token format"
	ErrorUnauthorized       = "unauthorized"

	bearerPrefix = "Bearer "
)

// BearerToken извлекает токен из заголовка Authorization.
func BearerToken(ctx fiber.Ctx) (string, bool) {
	header := ctx.Get(fiber.HeaderAuthorization)
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(bearerPrefix):]), true
}

// NewAuthMiddleware проверяет access токен и сохраняет пользователя в Locals.
func NewAuthMiddleware(authUseCase api.AuthUseCase) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := RequestContext(ctx)
		log := logger.Log(requestCtx).With(zap.String("middleware", "auth"))
		log.Debug(requestCtx, LogAuthMiddleware)

		if ctx.Get(fiber.HeaderAuthorization) == "" {
			log.Debug(requestCtx, ErrorNoAuthHeader)
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": ErrorNoAuthHeader})
		}

		token, ok := BearerToken(ctx)
		if !ok {
			log.Debug(requestCtx, ErrorInvalidTokenFormat)
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": ErrorInvalidTokenFormat})
		}

		claims, err := authUseCase.Authenticate(requestCtx, token)
		if err != nil {
			log.Debug(requestCtx, ErrorUnauthorized, zap.Error(err))
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": ErrorUnauthorized})
		}

		ctx.Locals(LocalsUserID, claims.UserID)
		ctx.Locals(LocalsAccessToken, token)

		return ctx.Next()
	}
}
