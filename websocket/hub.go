package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Message is a payload pushed to a connected user
type Message struct {
	Type      string      `json:"type"`
	SenderID  uint        `json:"sender_id,omitempty"`
	Content   string      `json:"content,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub tracks the open connection per user and pushes chat messages to them.
// It is delivery-only; the REST layer owns the message log.
type Hub struct {
	Clients    map[uint]*Client
	Register   chan *Client
	Unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[uint]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client.UserID] = client
			h.mu.Unlock()
			log.Printf("Chat client connected: user=%d", client.UserID)

		case client := <-h.Unregister:
			h.mu.Lock()
			if current, ok := h.Clients[client.UserID]; ok && current == client {
				delete(h.Clients, client.UserID)
				close(client.Send)
			}
			h.mu.Unlock()
			log.Printf("Chat client disconnected: user=%d", client.UserID)
		}
	}
}

// SendToUser pushes a message to a user's open connection, if any. Users
// without a connection just miss the push; the message is already persisted.
func (h *Hub) SendToUser(userID uint, message *Message) {
	h.mu.RLock()
	client, exists := h.Clients[userID]
	h.mu.RUnlock()

	if !exists {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling websocket message: %v", err)
		return
	}

	select {
	case client.Send <- data:
	default:
		log.Printf("User %d's send buffer is full, dropping push", userID)
	}
}
