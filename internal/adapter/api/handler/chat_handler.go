package handler

import (
	"github.com/labstack/echo/v4"

	"baddelli/internal/usecase"
	"baddelli/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type sendMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// ListChats returns the user's threads, most recent first.
func (h *ChatHandler) ListChats(c echo.Context) error {
	threads, err := h.chatUseCase.Threads(c.Request().Context(), currentUserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, threads, len(threads))
}

func (h *ChatHandler) GetChat(c echo.Context) error {
	view, err := h.chatUseCase.Thread(c.Request().Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, view)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), c.Param("id"), currentUserID(c), req.Text)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ChatHandler) MarkAsRead(c echo.Context) error {
	marked, err := h.chatUseCase.MarkThreadRead(c.Request().Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int{
		"marked": marked,
	})
}
