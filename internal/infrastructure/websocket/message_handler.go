package websocket

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"baddelli/internal/usecase"
	"baddelli/pkg/errors"
	"baddelli/pkg/logger"
)

// Client to server message types
const (
	MessageTypePing        = "ping"
	MessageTypeOpenChat    = "open_chat"
	MessageTypeCloseChat   = "close_chat"
	MessageTypeSendMessage = "send_message"
)

// WSMessage is the envelope for server events.
type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type ChatData struct {
	ChatID string `json:"chat_id"`
}

type SendMessageData struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// HandleClientMessage processes incoming WebSocket messages
func (m *Manager) HandleClientMessage(ctx context.Context, client *Client, messageBytes []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		logger.Warn("WebSocket: Failed to unmarshal message from client %s: %v", client.UserID, err)
		sendError(client, errors.Validation("Invalid message format", err))
		return
	}

	logger.Debug("WebSocket: Received message type '%s' from client %s", msg.Type, client.UserID)

	switch msg.Type {
	case MessageTypePing:
		client.Send(usecase.EventPong, map[string]string{"status": "alive"})

	case MessageTypeOpenChat:
		var data ChatData
		if err := decodeData(msg.Data, &data); err != nil || data.ChatID == "" {
			sendError(client, errors.Validation("chat_id is required", err))
			return
		}
		if err := client.Session.OpenChat(ctx, data.ChatID); err != nil {
			sendError(client, err)
		}

	case MessageTypeCloseChat:
		client.Session.CloseChat()

	case MessageTypeSendMessage:
		var data SendMessageData
		if err := decodeData(msg.Data, &data); err != nil || data.ChatID == "" {
			sendError(client, errors.Validation("chat_id and text are required", err))
			return
		}
		message, err := client.Session.SendMessage(ctx, data.ChatID, data.Text)
		if err != nil {
			sendError(client, err)
			return
		}
		client.Send(usecase.EventMessage, message)

	default:
		logger.Warn("WebSocket: Unknown message type '%s' from client %s", msg.Type, client.UserID)
		sendError(client, errors.Validation("Unknown message type", nil))
	}
}

func decodeData(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return stderrors.New("missing data")
	}
	return json.Unmarshal(raw, v)
}

func sendError(client *Client, err error) {
	payload := usecase.ErrorPayload{Code: errors.CodeInternal, Message: "An unexpected error occurred"}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		payload.Code = appErr.Code
		payload.Message = appErr.Message
	}
	if sendErr := client.Send(usecase.EventError, payload); sendErr != nil {
		logger.Debug("WebSocket: dropping error for %s: %v", client.UserID, sendErr)
	}
}
