package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func SetupMetricsRouter(e *echo.Echo, h http.Handler) {
	e.GET("/metrics", echo.WrapHandler(h))
}
