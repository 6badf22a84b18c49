// Package http содержит HTTP транспорт сервиса авторизации.
package http

import (
	"github.com/gofiber/fiber/v3"

	"authkeeper/internal/auth/adapters/http/middleware"
	"authkeeper/internal/auth/ports/api"
)

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, authUseCase api.AuthUseCase, userUseCase api.UserUseCase) {
	authHandler := NewAuthHandler(authUseCase)
	userHandler := NewUserHandler(userUseCase)
	requireAuth := middleware.NewAuthMiddleware(authUseCase)

	app.Use(middleware.NewRequestIDMiddleware())
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())

	apiV1 := app.Group("/api/v1")

	authRoutes := apiV1.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/refresh", authHandler.RefreshTokens)
	authRoutes.Post("/logout", requireAuth, authHandler.Logout)
	authRoutes.Post("/logout-all", requireAuth, authHandler.LogoutAll)
	authRoutes.Get("/sessions", requireAuth, authHandler.ListSessions)

	userRoutes := apiV1.Group("/user", requireAuth)
	userRoutes.Get("/profile", userHandler.GetProfile)

	usersRoutes := apiV1.Group("/users", requireAuth)
	usersRoutes.Get("/", userHandler.ListUsers)
	usersRoutes.Get("/:id", userHandler.GetUser)
	usersRoutes.Put("/:id", userHandler.UpdateUser)
	usersRoutes.Delete("/:id", userHandler.DeleteUser)

	app.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "route not found",
		})
	})
}
