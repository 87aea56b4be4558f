package handler

import (
	"github.com/labstack/echo/v4"

	"baddelli/internal/domain/entity"
	"baddelli/internal/usecase"
	"baddelli/pkg/response"
)

type TradeHandler struct {
	tradeUseCase *usecase.TradeUseCase
	names        usecase.NameResolver
}

func NewTradeHandler(tradeUseCase *usecase.TradeUseCase, names usecase.NameResolver) *TradeHandler {
	return &TradeHandler{
		tradeUseCase: tradeUseCase,
		names:        names,
	}
}

type proposeTradeRequest struct {
	RequestedItemID string `json:"requested_item_id" validate:"required"`
	OfferedItemID   string `json:"offered_item_id" validate:"required"`
}

func (h *TradeHandler) Propose(c echo.Context) error {
	var req proposeTradeRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	ctx := c.Request().Context()
	userID := currentUserID(c)

	trade, err := h.tradeUseCase.Propose(ctx, userID, h.names.DisplayName(ctx, userID), req.RequestedItemID, req.OfferedItemID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, trade)
}

func (h *TradeHandler) ListIncoming(c echo.Context) error {
	trades, err := h.tradeUseCase.ListIncoming(c.Request().Context(), currentUserID(c), entity.TradeStatus(c.QueryParam("status")))
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, trades, len(trades))
}

func (h *TradeHandler) ListOutgoing(c echo.Context) error {
	trades, err := h.tradeUseCase.ListOutgoing(c.Request().Context(), currentUserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, trades, len(trades))
}

func (h *TradeHandler) Accept(c echo.Context) error {
	trade, err := h.tradeUseCase.Accept(c.Request().Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, trade)
}

func (h *TradeHandler) Reject(c echo.Context) error {
	trade, err := h.tradeUseCase.Reject(c.Request().Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, trade)
}

func (h *TradeHandler) Hide(c echo.Context) error {
	if err := h.tradeUseCase.HideForUser(c.Request().Context(), c.Param("id"), currentUserID(c)); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{
		"message": "Trade hidden",
	})
}

func (h *TradeHandler) Chat(c echo.Context) error {
	chatID, err := h.tradeUseCase.ChatFor(c.Request().Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{
		"chat_id": chatID,
	})
}
