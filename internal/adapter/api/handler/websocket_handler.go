package handler

import (
	"context"
	"net/http"
	"strings"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	ws "baddelli/internal/infrastructure/websocket"
	"baddelli/internal/usecase"
	"baddelli/pkg/errors"
	"baddelli/pkg/logger"
	"baddelli/pkg/response"
)

// SessionFactory builds the live session for a newly connected user.
type SessionFactory func(userID string, sink usecase.Sink) *usecase.LiveSession

type WebSocketHandler struct {
	wsManager  *ws.Manager
	newSession SessionFactory
	upgrader   gorillaws.Upgrader
	bufferSize int
	baseCtx    context.Context
}

// NewWebSocketHandler serves live sessions. Sessions outlive the upgrade
// request, so they hang off baseCtx instead.
func NewWebSocketHandler(baseCtx context.Context, wsManager *ws.Manager, newSession SessionFactory, allowedOrigins string, bufferSize int) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:  wsManager,
		newSession: newSession,
		bufferSize: bufferSize,
		baseCtx:    baseCtx,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID := currentUserID(c)
	if userID == "" {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed for %s: %v", userID, err)
		return nil
	}

	client := ws.NewClient(userID, conn, h.bufferSize)
	session := h.newSession(userID, client)
	client.Session = session

	if err := session.Start(h.baseCtx); err != nil {
		logger.Error("Failed to start live session for %s: %v", userID, err)
		conn.WriteJSON(ws.WSMessage{
			Type: usecase.EventError,
			Data: usecase.ErrorPayload{Code: errors.CodePersistence, Message: "Live updates are unavailable"},
		})
		session.Close()
		conn.Close()
		return nil
	}

	go h.wsManager.Serve(h.baseCtx, client)
	return nil
}

func originChecker(allowedOrigins string) func(r *http.Request) bool {
	if allowedOrigins == "" || allowedOrigins == "*" {
		return func(r *http.Request) bool { return true }
	}

	allowed := make(map[string]struct{})
	for _, origin := range strings.Split(allowedOrigins, ",") {
		allowed[strings.TrimSpace(origin)] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
