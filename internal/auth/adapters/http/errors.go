package http

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"authkeeper/internal/auth/adapters/http/dto"
	"authkeeper/internal/auth/adapters/http/middleware"
	"authkeeper/internal/auth/domain/entities"
	"authkeeper/internal/auth/domain/services"
	"authkeeper/pkg/logger"
)

const (
	errorUnauthorized   = "unauthorized"
	errorInternal       = "internal server error"
	errorInvalidRequest = "invalid request"
	errorNotFound       = "not found"
)

type errorMapping struct {
	target error
	status int
}

var clientErrors = []errorMapping{
	{target: services.ErrEmailAlreadyExists, status: fiber.StatusConflict},
	{target: services.ErrUsernameAlreadyExists, status: fiber.StatusConflict},
	{target: entities.ErrInvalidEmail, status: fiber.StatusBadRequest},
	{target: entities.ErrEmptyUsername, status: fiber.StatusBadRequest},
	{target: entities.ErrPasswordTooShort, status: fiber.StatusBadRequest},
	{target: entities.ErrPasswordTooWeak, status: fiber.StatusBadRequest},
	{target: entities.ErrEmptyUserID, status: fiber.StatusBadRequest},
	{target: entities.ErrEmptyUpdate, status: fiber.StatusBadRequest},
	{target: entities.ErrForbidden, status: fiber.StatusForbidden},
}

// writeError переводит ошибку use case в HTTP ответ. Причина отказа в аутентификации
// клиенту не сообщается.
func writeError(ctx fiber.Ctx, err error) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("path", ctx.Path()))

	if errors.Is(err, services.ErrUnauthorized) {
		log.Debug(requestCtx, errorUnauthorized, zap.Error(err))
		return ctx.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: errorUnauthorized})
	}

	for _, m := range clientErrors {
		if errors.Is(err, m.target) {
			log.Debug(requestCtx, "request rejected", zap.Error(err))
			return ctx.Status(m.status).JSON(dto.ErrorResponse{Error: m.target.Error()})
		}
	}

	if errors.Is(err, entities.ErrUserNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: errorNotFound})
	}

	if errors.Is(err, services.ErrSessionConflict) {
		log.Error(requestCtx, "refresh session token collision", zap.Error(err))
	} else {
		log.Error(requestCtx, "request failed", zap.Error(err))
	}

	return ctx.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: errorInternal})
}

func badRequest(ctx fiber.Ctx, message string) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: message})
}
