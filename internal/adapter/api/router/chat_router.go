package router

import (
	"github.com/labstack/echo/v4"

	"baddelli/internal/adapter/api/handler"
	"baddelli/internal/adapter/api/middleware"
)

// SetupChatRouter sets up all chat-related routes (excluding WebSocket)
func SetupChatRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	chatHandler := handler.GetChatHandler()

	chatGroup := e.Group("/v1/chats")
	chatGroup.Use(authMiddleware.Authenticate)

	chatGroup.GET("", chatHandler.ListChats)
	chatGroup.GET("/:id", chatHandler.GetChat)
	chatGroup.POST("/:id/messages", chatHandler.SendMessage)
	chatGroup.PUT("/:id/read", chatHandler.MarkAsRead)
}
