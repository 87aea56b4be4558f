package handler

import (
	"github.com/labstack/echo/v4"

	"baddelli/internal/usecase"
)

var (
	authHandler   *AuthHandler
	userHandler   *UserHandler
	itemHandler   *ItemHandler
	tradeHandler  *TradeHandler
	chatHandler   *ChatHandler
	badgeHandler  *BadgeHandler
	healthHandler *HealthHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	userUseCase *usecase.UserUseCase,
	itemUseCase *usecase.ItemUseCase,
	tradeUseCase *usecase.TradeUseCase,
	chatUseCase *usecase.ChatUseCase,
	badgeUseCase *usecase.BadgeUseCase,
	names usecase.NameResolver,
) {
	authHandler = NewAuthHandler(authUseCase)
	userHandler = NewUserHandler(userUseCase)
	itemHandler = NewItemHandler(itemUseCase, names)
	tradeHandler = NewTradeHandler(tradeUseCase, names)
	chatHandler = NewChatHandler(chatUseCase)
	badgeHandler = NewBadgeHandler(badgeUseCase)
	healthHandler = NewHealthHandler()
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetItemHandler() *ItemHandler {
	return itemHandler
}

func GetTradeHandler() *TradeHandler {
	return tradeHandler
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}

func GetBadgeHandler() *BadgeHandler {
	return badgeHandler
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

// currentUserID returns the uid set by the auth middleware.
func currentUserID(c echo.Context) string {
	uid, _ := c.Get("uid").(string)
	return uid
}
