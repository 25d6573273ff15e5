// Package ws pushes chat events to connected clients over WebSocket.
// Delivery is best-effort: an offline user simply fetches via REST later.
package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventType identifies a pushed event.
type EventType string

const (
	EventNewMessage  EventType = "message.new"
	EventMessageRead EventType = "message.read"
)

// Event is the frame sent to clients.
type Event struct {
	Type           EventType       `json:"type"`
	ConversationID string          `json:"conversation_id,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

// Manager tracks every live connection, grouped by user. A user may hold
// several connections (multiple devices).
type Manager struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[uuid.UUID]*Client // userID -> clientID -> client
	log     *zap.Logger
}

// NewManager creates an empty connection registry.
func NewManager(log *zap.Logger) *Manager {
	return &Manager{
		clients: make(map[uuid.UUID]map[uuid.UUID]*Client),
		log:     log,
	}
}

func (m *Manager) addClient(c *Client) {
	m.mu.Lock()
	if _, ok := m.clients[c.UserID]; !ok {
		m.clients[c.UserID] = make(map[uuid.UUID]*Client)
	}
	m.clients[c.UserID][c.ID] = c
	m.mu.Unlock()

	m.log.Info("websocket client connected",
		zap.String("client_id", c.ID.String()),
		zap.String("user_id", c.UserID.String()))
}

func (m *Manager) removeClient(c *Client) {
	m.mu.Lock()
	if clients, ok := m.clients[c.UserID]; ok {
		delete(clients, c.ID)
		if len(clients) == 0 {
			delete(m.clients, c.UserID)
		}
	}
	m.mu.Unlock()

	m.log.Info("websocket client disconnected",
		zap.String("client_id", c.ID.String()),
		zap.String("user_id", c.UserID.String()))
}

// SendToUser delivers an event to every connection of one user. A client
// whose send queue is full is dropped rather than allowed to stall others.
func (m *Manager) SendToUser(userID uuid.UUID, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	frame, err := json.Marshal(event)
	if err != nil {
		m.log.Warn("marshaling websocket event failed", zap.Error(err))
		return
	}

	m.mu.RLock()
	targets := make([]*Client, 0, len(m.clients[userID]))
	for _, c := range m.clients[userID] {
		targets = append(targets, c)
	}
	m.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- frame:
		default:
			m.log.Warn("websocket send queue full, dropping client",
				zap.String("client_id", c.ID.String()))
			c.close()
			m.removeClient(c)
		}
	}
}

// Shutdown closes every live connection.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, clients := range m.clients {
		for _, c := range clients {
			c.close()
		}
	}
	m.clients = make(map[uuid.UUID]map[uuid.UUID]*Client)
}
