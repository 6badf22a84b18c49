package http

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"authkeeper/internal/auth/adapters/http/dto"
	"authkeeper/internal/auth/adapters/http/middleware"
	"authkeeper/internal/auth/domain/entities"
	"authkeeper/internal/auth/ports/api"
	"authkeeper/pkg/logger"
)

// Сообщения обработчиков пользователей.
const (
	LogHandlerGetProfile = "user handler: get profile"
	LogHandlerListUsers  = "user handler: list users"
	LogHandlerGetUser    = "user handler: get user"
	LogHandlerUpdateUser = "user handler: update user"
	LogHandlerDeleteUser = "user handler: delete user"

	errorInvalidPage = "limit and offset must be integers"
)

// UserHandler содержит HTTP обработчики профиля.
type UserHandler struct {
	userUseCase api.UserUseCase
}

// NewUserHandler создает новый экземпляр обработчика профиля.
func NewUserHandler(userUseCase api.UserUseCase) *UserHandler {
	return &UserHandler{userUseCase: userUseCase}
}

// GetProfile обрабатывает запрос на получение профиля пользователя.
func (h *UserHandler) GetProfile(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerGetProfile)

	userID, _ := ctx.Locals(middleware.LocalsUserID).(string)

	user, err := h.userUseCase.GetUserProfile(requestCtx, userID)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(dto.NewUserProfileResponse(user))
}

// ListUsers возвращает страницу пользователей (?limit=&offset=).
func (h *UserHandler) ListUsers(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerListUsers)

	limit, err := queryInt(ctx, "limit")
	if err != nil {
		return badRequest(ctx, errorInvalidPage)
	}
	offset, err := queryInt(ctx, "offset")
	if err != nil {
		return badRequest(ctx, errorInvalidPage)
	}

	users, err := h.userUseCase.ListUsers(requestCtx, limit, offset)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(dto.NewUsersResponse(users))
}

// GetUser возвращает профиль пользователя по ID.
func (h *UserHandler) GetUser(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerGetUser)

	user, err := h.userUseCase.GetUserProfile(requestCtx, ctx.Params("id"))
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(dto.NewUserProfileResponse(user))
}

// UpdateUser меняет поля собственного профиля.
func (h *UserHandler) UpdateUser(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerUpdateUser)

	var req dto.UpdateUserRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		return badRequest(ctx, errorInvalidRequest)
	}

	actorID, _ := ctx.Locals(middleware.LocalsUserID).(string)

	user, err := h.userUseCase.UpdateUser(requestCtx, actorID, ctx.Params("id"), entities.UserChanges{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(dto.NewUserProfileResponse(user))
}

// DeleteUser удаляет собственную учетную запись.
func (h *UserHandler) DeleteUser(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerDeleteUser)

	actorID, _ := ctx.Locals(middleware.LocalsUserID).(string)

	if err := h.userUseCase.DeleteUser(requestCtx, actorID, ctx.Params("id")); err != nil {
		return writeError(ctx, err)
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

// queryInt читает необязательный целочисленный параметр запроса, 0 если он не задан.
func queryInt(ctx fiber.Ctx, key string) (int, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
