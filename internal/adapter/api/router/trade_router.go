package router

import (
	"github.com/labstack/echo/v4"

	"baddelli/internal/adapter/api/handler"
	"baddelli/internal/adapter/api/middleware"
)

func SetupTradeRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	tradeHandler := handler.GetTradeHandler()

	trades := e.Group("/v1/trades")
	trades.Use(authMiddleware.Authenticate)

	trades.POST("", tradeHandler.Propose)
	trades.GET("/incoming", tradeHandler.ListIncoming)
	trades.GET("/outgoing", tradeHandler.ListOutgoing)
	trades.POST("/:id/accept", tradeHandler.Accept)
	trades.POST("/:id/reject", tradeHandler.Reject)
	trades.POST("/:id/hide", tradeHandler.Hide)
	trades.GET("/:id/chat", tradeHandler.Chat)
}
