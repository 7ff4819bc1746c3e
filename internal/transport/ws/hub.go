package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/wonderless/Test-autoestima-sub000/internal/metrics"
	"github.com/wonderless/Test-autoestima-sub000/internal/model"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgResultsSaved MessageType = model.LiveEventResultsSaved
	MsgTestReset    MessageType = model.LiveEventTestReset
	MsgWelcome      MessageType = "welcome"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans live events out to connected admins
type Hub struct {
	conns map[*Connection]struct{}
	mu    sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan []byte
	done       chan struct{}

	logger *zap.Logger
}

// Connection represents an admin WebSocket connection
type Connection struct {
	UserID string
	Send   chan []byte
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	h := &Hub{
		conns:      make(map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for conn := range h.conns {
				delete(h.conns, conn)
				close(conn.Send)
			}
			metrics.LiveConnections.Set(0)
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.conns[conn] = struct{}{}
			metrics.LiveConnections.Set(float64(len(h.conns)))
			h.mu.Unlock()
			h.logger.Info("admin connected to live feed", zap.String("uid", conn.UserID))

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.conns[conn]; ok {
				delete(h.conns, conn)
				close(conn.Send)
				metrics.LiveConnections.Set(float64(len(h.conns)))
				h.logger.Info("admin disconnected from live feed", zap.String("uid", conn.UserID))
			}
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.conns {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Connections reports how many admins are listening
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close disconnects every admin and stops the hub
func (h *Hub) Close() {
	close(h.done)
}

// BroadcastToAdmins sends an event to every connected admin (implements service.Broadcaster)
func (h *Hub) BroadcastToAdmins(event model.LiveEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("failed to encode live event", zap.String("type", event.Type), zap.Error(err))
		return
	}
	data, _ := json.Marshal(&Message{Type: MessageType(event.Type), Payload: payload})
	select {
	case h.broadcast <- data:
	case <-h.done:
	default:
		h.logger.Warn("live feed backlog full, dropping event", zap.String("type", event.Type))
	}
}
