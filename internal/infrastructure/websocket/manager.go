package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"baddelli/internal/domain/entity"
	"baddelli/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

var (
	ErrClientClosed   = errors.New("websocket client closed")
	ErrSendBufferFull = errors.New("websocket send buffer full")
)

// Session is the live state behind one connection.
type Session interface {
	OpenChat(ctx context.Context, chatID string) error
	CloseChat()
	SendMessage(ctx context.Context, chatID, text string) (*entity.Message, error)
	Close()
}

// Client represents a WebSocket connection client
type Client struct {
	UserID  string
	Conn    *websocket.Conn
	Session Session

	send   chan []byte
	mu     sync.Mutex
	closed bool
}

func NewClient(userID string, conn *websocket.Conn, bufferSize int) *Client {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Client{
		UserID: userID,
		Conn:   conn,
		send:   make(chan []byte, bufferSize),
	}
}

// Send queues an event for the write pump. It never blocks; a slow client
// loses the event and gets ErrSendBufferFull.
func (c *Client) Send(event string, payload interface{}) error {
	data, err := json.Marshal(WSMessage{
		Type:      event,
		Data:      payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Manager manages all active WebSocket connections. A user may hold several.
type Manager struct {
	clients    map[string]map[*Client]struct{}
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]map[*Client]struct{}),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Start runs the manager's main loop in a goroutine. When ctx ends every
// client is closed.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		defer close(m.done)
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				if m.clients[client.UserID] == nil {
					m.clients[client.UserID] = make(map[*Client]struct{})
				}
				m.clients[client.UserID][client] = struct{}{}
				m.mutex.Unlock()
				logger.Info("Client registered: %s", client.UserID)

			case client := <-m.Unregister:
				m.remove(client)
				logger.Info("Client unregistered: %s", client.UserID)

			case <-ctx.Done():
				m.closeAll()
				return
			}
		}
	}()
}

func (m *Manager) register(c *Client) bool {
	select {
	case m.Register <- c:
		return true
	case <-m.done:
		return false
	}
}

func (m *Manager) unregister(c *Client) {
	select {
	case m.Unregister <- c:
	case <-m.done:
		c.close()
	}
}

func (m *Manager) remove(c *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if set, ok := m.clients[c.UserID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(m.clients, c.UserID)
		}
	}
	c.close()
}

func (m *Manager) closeAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for userID, set := range m.clients {
		for c := range set {
			c.close()
		}
		delete(m.clients, userID)
	}
}

// ConnectionCount returns how many connections the user has open.
func (m *Manager) ConnectionCount(userID string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients[userID])
}

// TotalConnections counts open connections across all users.
func (m *Manager) TotalConnections() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	total := 0
	for _, set := range m.clients {
		total += len(set)
	}
	return total
}

// Serve registers the client and runs both pumps. It returns once the
// connection is gone and the session has been closed.
func (m *Manager) Serve(ctx context.Context, c *Client) {
	if !m.register(c) {
		c.Session.Close()
		c.Conn.Close()
		return
	}
	go c.writePump()
	c.readPump(ctx, m)
}

// readPump reads messages from the WebSocket connection
func (c *Client) readPump(ctx context.Context, m *Manager) {
	defer func() {
		c.Session.Close()
		m.unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket read error for %s: %v", c.UserID, err)
			}
			return
		}

		m.HandleClientMessage(ctx, c, message)
	}
}

// writePump sends messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("WebSocket write error for %s: %v", c.UserID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
