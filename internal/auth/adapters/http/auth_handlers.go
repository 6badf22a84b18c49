package http

import (
	"github.com/gofiber/fiber/v3"

	"authkeeper/internal/auth/adapters/http/dto"
	"authkeeper/internal/auth/adapters/http/middleware"
	"authkeeper/internal/auth/domain/services"
	"authkeeper/internal/auth/ports/api"
	"authkeeper/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerRegister      = "auth handler: register"
	LogHandlerLogin         = "auth handler: login"
	LogHandlerRefreshTokens = "auth handler: refresh tokens" // #nosec G101 - not a credential
	LogHandlerLogout        = "auth handler: logout"
	LogHandlerLogoutAll     = "auth handler: logout all"
	LogHandlerSessions      = "auth handler: list sessions"
)

// AuthHandler содержит HTTP обработчики для авторизации.
type AuthHandler struct {
	authUseCase api.AuthUseCase
}

// NewAuthHandler создает новый экземпляр обработчика авторизации.
func NewAuthHandler(authUseCase api.AuthUseCase) *AuthHandler {
	return &AuthHandler{authUseCase: authUseCase}
}

func deviceInfo(ctx fiber.Ctx) services.DeviceInfo {
	return services.DeviceInfo{
		UserAgent: ctx.Get(fiber.HeaderUserAgent),
		IPAddress: ctx.IP(),
	}
}

// Register обрабатывает запрос на регистрацию нового пользователя.
func (h *AuthHandler) Register(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerRegister)

	var req dto.RegisterRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		return badRequest(ctx, errorInvalidRequest)
	}

	if req.Email == "" || req.Username == "" || req.Password == "" {
		return badRequest(ctx, "email, username and password are required")
	}

	result, err := h.authUseCase.Register(requestCtx, req.Email, req.Username, req.Password, deviceInfo(ctx))
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(dto.NewAuthResponse(result))
}

// Login обрабатывает запрос на вход пользователя.
func (h *AuthHandler) Login(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerLogin)

	var req dto.LoginRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		return badRequest(ctx, errorInvalidRequest)
	}

	if req.Email == "" || req.Password == "" {
		return badRequest(ctx, "email and password are required")
	}

	result, err := h.authUseCase.Login(requestCtx, req.Email, req.Password, deviceInfo(ctx))
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(dto.NewAuthResponse(result))
}

// RefreshTokens обрабатывает запрос на обновление токенов. Access токен в заголовке
// Authorization необязателен; если он есть, его владелец должен совпадать.
func (h *AuthHandler) RefreshTokens(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerRefreshTokens)

	var req dto.RefreshRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		return badRequest(ctx, errorInvalidRequest)
	}

	if req.RefreshToken == "" {
		return badRequest(ctx, "refresh token is required")
	}

	accessToken, _ := middleware.BearerToken(ctx)

	pair, err := h.authUseCase.RefreshTokens(requestCtx, req.RefreshToken, accessToken, deviceInfo(ctx))
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(dto.NewTokenResponse(pair))
}

// Logout закрывает сессию, к которой относится refresh токен.
func (h *AuthHandler) Logout(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerLogout)

	var req dto.LogoutRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		return badRequest(ctx, errorInvalidRequest)
	}

	if req.RefreshToken == "" {
		return badRequest(ctx, "refresh token is required")
	}

	accessToken, _ := ctx.Locals(middleware.LocalsAccessToken).(string)

	if err := h.authUseCase.Logout(requestCtx, accessToken, req.RefreshToken); err != nil {
		return writeError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"message": "logged out successfully"})
}

// LogoutAll закрывает все сессии пользователя.
func (h *AuthHandler) LogoutAll(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerLogoutAll)

	accessToken, _ := ctx.Locals(middleware.LocalsAccessToken).(string)

	removed, err := h.authUseCase.LogoutAll(requestCtx, accessToken)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(dto.LogoutAllResponse{Removed: removed})
}

// ListSessions возвращает активные сессии пользователя.
func (h *AuthHandler) ListSessions(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerSessions)

	accessToken, _ := ctx.Locals(middleware.LocalsAccessToken).(string)

	sessions, err := h.authUseCase.ListSessions(requestCtx, accessToken)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(dto.NewSessionsResponse(sessions))
}
