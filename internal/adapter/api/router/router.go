package router

import (
	"github.com/labstack/echo/v4"

	"baddelli/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter middleware.Limiter) {
	SetupHealthRouter(e)
	SetupAuthRouter(e, limiter)
	SetupUserRouter(e, authMiddleware)
	SetupItemRouter(e, authMiddleware)
	SetupTradeRouter(e, authMiddleware)
	SetupChatRouter(e, authMiddleware)
	SetupBadgeRouter(e, authMiddleware)
}
