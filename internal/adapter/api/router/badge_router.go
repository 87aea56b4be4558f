package router

import (
	"github.com/labstack/echo/v4"

	"baddelli/internal/adapter/api/handler"
	"baddelli/internal/adapter/api/middleware"
)

func SetupBadgeRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	e.GET("/v1/badges", handler.GetBadgeHandler().GetBadges, authMiddleware.Authenticate)
}
