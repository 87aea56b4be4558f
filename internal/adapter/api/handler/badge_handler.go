package handler

import (
	"github.com/labstack/echo/v4"

	"baddelli/internal/usecase"
	"baddelli/pkg/response"
)

type BadgeHandler struct {
	badgeUseCase *usecase.BadgeUseCase
}

func NewBadgeHandler(badgeUseCase *usecase.BadgeUseCase) *BadgeHandler {
	return &BadgeHandler{
		badgeUseCase: badgeUseCase,
	}
}

func (h *BadgeHandler) GetBadges(c echo.Context) error {
	badges, err := h.badgeUseCase.Counts(c.Request().Context(), currentUserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, badges)
}
