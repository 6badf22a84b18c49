// Package middleware содержит промежуточное ПО для HTTP обработчиков.
package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"authkeeper/pkg/logger"
)

// Ключи fiber.Locals и заголовки.
const (
	HeaderRequestID = "X-Request-ID"

	LocalsRequestID   = "requestID"
	LocalsUserID      = "userID"
	LocalsAccessToken = "accessToken"
)

// NewRequestIDMiddleware принимает X-Request-ID клиента или генерирует новый.
func NewRequestIDMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestID := ctx.Get(HeaderRequestID)
		if requestID == "" {
			requestID = logger.GenerateRequestID()
		}

		ctx.Locals(LocalsRequestID, requestID)
		ctx.Set(HeaderRequestID, requestID)

		return ctx.Next()
	}
}

// RequestContext возвращает контекст запроса с идентификатором запроса для логгера.
func RequestContext(ctx fiber.Ctx) context.Context {
	requestCtx := ctx.Context()
	if requestID, ok := ctx.Locals(LocalsRequestID).(string); ok && requestID != "" {
		return logger.NewRequestIDContext(requestCtx, requestID)
	}
	return requestCtx
}
