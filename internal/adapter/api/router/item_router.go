package router

import (
	"github.com/labstack/echo/v4"

	"baddelli/internal/adapter/api/handler"
	"baddelli/internal/adapter/api/middleware"
)

func SetupItemRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	itemHandler := handler.GetItemHandler()

	// Public market
	e.GET("/v1/items", itemHandler.Market)
	e.GET("/v1/items/:id", itemHandler.GetItem)

	items := e.Group("/v1/items")
	items.Use(authMiddleware.Authenticate)
	items.POST("", itemHandler.CreateItem)
	items.PATCH("/:id", itemHandler.UpdateItem)
	items.DELETE("/:id", itemHandler.DeleteItem)

	e.GET("/v1/me/items", itemHandler.ListMine, authMiddleware.Authenticate)
}
