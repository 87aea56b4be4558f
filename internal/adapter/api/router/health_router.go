package router

import (
	"github.com/labstack/echo/v4"

	"baddelli/internal/adapter/api/handler"
)

func SetupHealthRouter(e *echo.Echo) {
	e.GET("/health", handler.GetHealthHandler().CheckHealth)
}
