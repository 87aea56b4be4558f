package router

import (
	"github.com/labstack/echo/v4"

	"baddelli/internal/adapter/api/handler"
	"baddelli/internal/adapter/api/middleware"
)

const (
	ActionLogin         = "login"
	ActionRegister      = "register"
	ActionPasswordReset = "password_reset"
)

// SetupAuthRouter initializes the public auth routes
func SetupAuthRouter(e *echo.Echo, limiter middleware.Limiter) {
	authHandler := handler.GetAuthHandler()

	e.POST("/v1/auth/register", authHandler.Register, middleware.RateLimit(limiter, ActionRegister))
	e.POST("/v1/auth/login", authHandler.Login, middleware.RateLimit(limiter, ActionLogin))
	e.POST("/v1/auth/password-reset", authHandler.RequestPasswordReset, middleware.RateLimit(limiter, ActionPasswordReset))
	e.POST("/v1/auth/password-reset/confirm", authHandler.ConfirmPasswordReset, middleware.RateLimit(limiter, ActionPasswordReset))
}
